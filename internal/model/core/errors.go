// internal/model/core/errors.go
package core

import "errors"

// ErrQuestNotFound is returned when an operation references a quest id
// that does not exist.
var ErrQuestNotFound = errors.New("quest not found")

// ErrInvalidField is returned when a field update is not one of the
// recognized FieldUpdate variants.
var ErrInvalidField = errors.New("invalid quest field")

// ErrInvalidDifficulty is returned when a difficulty update carries a
// value outside the fixed tier set.
var ErrInvalidDifficulty = errors.New("invalid difficulty tier")
