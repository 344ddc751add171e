package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: code, Message: message}
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// returned as opaque 500s so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "validation_failed", Message: ve.Reason, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, errorBody("invalid_quantity", err.Error()))
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, errorBody("empty_cart", err.Error()))
	case errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, errorBody("not_authenticated", "sign in to continue"))
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody("invalid_credentials", "email or password is incorrect"))
	case errors.Is(err, customersvc.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, errorBody("invalid_refresh_token", "refresh token is invalid or expired"))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "resource not found"))
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, errorBody("already_exists", "resource already exists"))
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, errorBody("invalid_transition", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}
