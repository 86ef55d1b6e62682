package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wedora/wedding-marketplace/booking-service/internal/dto"
	"github.com/wedora/wedding-marketplace/booking-service/internal/policy"
)

// ErrorHandler renders every error a handler returns. Guard rejections keep
// their machine-readable code; integrity violations render as server errors
// because rows owned by another vendor must never be the client's fault.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var accessErr *policy.AccessError
	if errors.As(err, &accessErr) {
		status := http.StatusForbidden
		if accessErr.Reason == policy.ReasonIntegrityViolation {
			status = http.StatusInternalServerError
		}
		_ = c.JSON(status, dto.AccessDeniedResponse{
			Code:    string(accessErr.Reason),
			Message: accessErr.Message,
		})
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
