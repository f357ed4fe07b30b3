package response

import (
	"ctchen222/tictactoe-service/internal/apperror"
	"errors"
	"net/http"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// FromError classifies err into an HTTP error. Unclassified errors are
// reported as 500 without their message.
func FromError(err error) Error {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return NewError(false, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrNotFound):
		return NewError(false, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrInvalidMove):
		return NewError(false, http.StatusConflict, err.Error())
	default:
		return NewError(false, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
