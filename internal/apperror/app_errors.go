package apperror

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors below wrap exactly one of them.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidMove = errors.New("invalid move")
	ErrValidation  = errors.New("validation failed")
)

var (
	ErrGameNotFound       = fmt.Errorf("game %w", ErrNotFound)
	ErrGameCompleted      = fmt.Errorf("%w: game already completed", ErrInvalidMove)
	ErrCellOccupied       = fmt.Errorf("%w: cell occupied", ErrInvalidMove)
	ErrPositionOutOfRange = fmt.Errorf("%w: position must be between 0 and 8", ErrValidation)
)

// Validation wraps a request-shape error so that it classifies as ErrValidation.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
