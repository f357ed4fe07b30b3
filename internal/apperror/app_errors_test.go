package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "game not found", err: ErrGameNotFound, kind: ErrNotFound},
		{name: "game completed", err: ErrGameCompleted, kind: ErrInvalidMove},
		{name: "cell occupied", err: ErrCellOccupied, kind: ErrInvalidMove},
		{name: "position out of range", err: ErrPositionOutOfRange, kind: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "game not found", ErrGameNotFound.Error())
	assert.Equal(t, "invalid move: cell occupied", ErrCellOccupied.Error())
}

func TestValidation(t *testing.T) {
	t.Run("wraps the cause", func(t *testing.T) {
		cause := errors.New("position is required")

		err := Validation(cause)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Validation(nil))
	})
}
