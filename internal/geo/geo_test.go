package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmaster/studio/internal/model/core"
)

func TestOverlayWKT_Empty(t *testing.T) {
	assert.Equal(t, "", OverlayWKT(nil))
	assert.Equal(t, "", OverlayWKT([]core.Annotation{}))
}

func TestOverlayWKT_Points(t *testing.T) {
	annotations := []core.Annotation{
		{X: 10, Y: 20, Kind: core.MarkerCity, Label: "Rivertown"},
		{X: 30.5, Y: 40.5, Kind: core.MarkerLair, Label: "Wyrm Cave"},
	}

	wkt := OverlayWKT(annotations)
	assert.Contains(t, wkt, "MULTIPOINT")
	assert.Contains(t, wkt, "10 20")
	assert.Contains(t, wkt, "30.5 40.5")
}

func TestOverlayWKT_DuplicateCoordinatesStayDistinct(t *testing.T) {
	annotations := []core.Annotation{
		{X: 5, Y: 5, Kind: core.MarkerTavern, Label: "Inn"},
		{X: 5, Y: 5, Kind: core.MarkerTavern, Label: "Inn again"},
	}

	overlay := AnnotationOverlay(annotations)
	assert.Equal(t, 2, overlay.NumPoints())
}

func TestParseRoute_Valid(t *testing.T) {
	route, err := ParseRoute("[[0,0],[10,5],[20,15]]")
	require.NoError(t, err)

	seq := route.Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.Equal(t, 10.0, seq.GetXY(1).X)
	assert.Equal(t, 15.0, seq.GetXY(2).Y)
}

func TestParseRoute_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"not json", "route from a to b"},
		{"single point", "[[1,2]]"},
		{"missing y", "[[1,2],[3]]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRoute(tc.input)
			assert.Error(t, err)
		})
	}
}
