package handler

import (
	"errors"
	"net/http"

	"mealportal/internal/model"
)

// httpStatusFor maps domain errors to HTTP status codes so every handler
// reports token, validation and transition failures the same way.
func httpStatusFor(err error) int {
	var vErr *model.ValidationError
	var tErr *model.TransitionError

	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrTokenInvalid):
		return http.StatusNotFound
	case errors.Is(err, model.ErrTokenExpired):
		return http.StatusGone
	case errors.Is(err, model.ErrTokenAlreadyUsed):
		return http.StatusConflict
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &tErr):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
