package service

import "errors"

// Error values map onto the wire error codes the controllers return.
// Anything else surfaces as server_error.
var (
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidRedirectURI = errors.New("invalid_redirect_uri")
	ErrInvalidScope       = errors.New("invalid_scope")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrGrantReplayed      = errors.New("grant_replayed")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrPermissionRevoked  = errors.New("permission_revoked")
	ErrPermissionExpired  = errors.New("token_expired")
	ErrMaxAccessExceeded  = errors.New("max_access_exceeded")
	ErrAddressNotFound    = errors.New("not_found")
	ErrAddressNotVerified = errors.New("address_not_verified")
	ErrPermissionNotFound = errors.New("permission_not_found")
)
