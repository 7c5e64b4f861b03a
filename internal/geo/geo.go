// Package geo builds geometry overlays for the map layer of exported
// documents. Annotation coordinates are planar scene coordinates, not
// geodetic ones, so no CRS transformation is involved.
package geo

import (
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/questmaster/studio/internal/model/core"
)

// AnnotationOverlay collects a quest's annotations into a MultiPoint
// geometry for the map layer. Annotations with identical coordinates
// stay distinct points; the overlay mirrors the log exactly.
func AnnotationOverlay(annotations []core.Annotation) geom.MultiPoint {
	points := make([]geom.Point, 0, len(annotations))
	for _, a := range annotations {
		points = append(points, geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: a.X, Y: a.Y},
			Type: geom.DimXY,
		}))
	}
	return geom.NewMultiPoint(points)
}

// OverlayWKT renders a quest's annotations as WKT for embedding in
// templates. Returns the empty string when there are no annotations.
func OverlayWKT(annotations []core.Annotation) string {
	if len(annotations) == 0 {
		return ""
	}
	return AnnotationOverlay(annotations).AsText()
}
