package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Details []string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes via domain.KindOf.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, ErrorResponse) {
	// Echo's own errors (router 404/405, body too large, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Error: http.StatusText(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		var ve *domain.ValidationError
		errors.As(err, &ve)
		return http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: ve.Details}

	case domain.KindUnauthorized:
		return http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Message: unauthorizedMessage(err)}

	case domain.KindForbidden:
		var fe *domain.ForbiddenError
		errors.As(err, &fe)
		return http.StatusForbidden, ErrorResponse{Error: "Forbidden", Message: fe.Message, Reason: string(fe.Reason)}

	case domain.KindNotFound:
		return http.StatusNotFound, ErrorResponse{Error: "User not found"}

	case domain.KindConflict:
		return http.StatusConflict, ErrorResponse{Error: "Email already exists"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "Access token is required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password"
	default:
		return "Invalid or expired token"
	}
}
