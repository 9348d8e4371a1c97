package utils

import (
	"errors"
	"net/http"

	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"

	"github.com/labstack/echo/v4"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse maps the service error taxonomy to HTTP codes:
// not-found 404, illegal transition / bad input 422, inactive actor
// 403, concurrency conflict 409, dependency blocked 409, everything
// else 500.
func ErrorResponse(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := err.Error()
	var body interface{}

	var httpErr *echo.HTTPError
	var illegal *apperrors.IllegalTransitionError
	var blocked *apperrors.DependencyBlockedError
	var invalid *apperrors.InvalidInputError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUserInactive):
		code = http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict):
		code = http.StatusConflict
	case errors.As(err, &illegal):
		code = http.StatusUnprocessableEntity
		body = map[string]string{
			"currentStatus":  illegal.CurrentStatus,
			"expectedStatus": illegal.ExpectedStatus,
		}
	case errors.As(err, &blocked):
		code = http.StatusConflict
		body = map[string]interface{}{
			"reason":          blocked.Reason,
			"requiredActions": blocked.RequiredActions,
		}
	case errors.As(err, &invalid):
		code = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrBadRequest):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    body,
		Message: message,
	})
}
