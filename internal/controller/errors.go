package controller

import (
	"errors"
	"net/http"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps service errors onto the wire taxonomy. Unknown errors are
// internal: logged with context, surfaced as a generic server_error.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrInvalidClient):
		return http.StatusNotFound, "invalid_client", "Unknown or inactive application"
	case errors.Is(err, service.ErrInvalidRedirectURI):
		return http.StatusBadRequest, "invalid_redirect_uri", "Redirect URI is not on the application's allow-list"
	case errors.Is(err, service.ErrInvalidScope):
		return http.StatusBadRequest, "invalid_scope", "Requested scope contains unknown or unapproved fields"
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", "Request parameters are out of bounds"
	case errors.Is(err, service.ErrInvalidGrant):
		return http.StatusUnauthorized, "invalid_grant", "Code or refresh token is invalid or expired"
	case errors.Is(err, service.ErrGrantReplayed):
		return http.StatusBadRequest, "invalid_grant", "Code or refresh token has already been used"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token", "Access token is missing, invalid, revoked or expired"
	case errors.Is(err, service.ErrPermissionRevoked):
		return http.StatusForbidden, "permission_revoked", "The permission backing this token has been revoked"
	case errors.Is(err, service.ErrPermissionExpired):
		return http.StatusForbidden, "token_expired", "The permission backing this token has expired"
	case errors.Is(err, service.ErrMaxAccessExceeded):
		return http.StatusForbidden, "max_access_exceeded", "The permission's access quota is exhausted"
	case errors.Is(err, service.ErrAddressNotFound):
		return http.StatusNotFound, "not_found", "No address on file for this user"
	case errors.Is(err, service.ErrAddressNotVerified):
		return http.StatusForbidden, "address_not_verified", "The address on file has not been verified"
	case errors.Is(err, service.ErrPermissionNotFound):
		return http.StatusNotFound, "not_found", "Unknown permission"
	}
	return http.StatusInternalServerError, "server_error", "Something went wrong"
}

func respondServiceError(c *gin.Context, err error) {
	status, code, message := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Internal error")
	}
	api.Error(c, status, code, message)
}
