package service_test

import (
	"testing"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"gotest.tools/v3/assert"
)

func TestRevokeToken(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	code, _ := services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})

	token, err := services.tokens.ExchangeAuthorizationCode(code, "shop-app", "https://shop.example.com/callback")
	assert.NilError(t, err)

	// Revoking by access value kills the whole pair
	assert.NilError(t, services.revocation.RevokeToken(token.AccessValue, "shop-app"))

	_, err = services.tokens.GetByAccessValue(token.AccessValue)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = services.tokens.ExchangeRefreshToken(token.RefreshValue, "shop-app")
	assert.ErrorIs(t, err, service.ErrInvalidGrant)

	// Idempotent: a second revocation and an unknown value both succeed
	assert.NilError(t, services.revocation.RevokeToken(token.AccessValue, "shop-app"))
	assert.NilError(t, services.revocation.RevokeToken("no-such-token", "shop-app"))
}

func TestRevokeTokenByRefreshValue(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	code, _ := services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})

	token, err := services.tokens.ExchangeAuthorizationCode(code, "shop-app", "https://shop.example.com/callback")
	assert.NilError(t, err)

	assert.NilError(t, services.revocation.RevokeToken(token.RefreshValue, "shop-app"))

	_, err = services.tokens.GetByAccessValue(token.AccessValue)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRevokeTokenScopedToClient(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	code, _ := services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})

	token, err := services.tokens.ExchangeAuthorizationCode(code, "shop-app", "https://shop.example.com/callback")
	assert.NilError(t, err)

	// Another app cannot revoke a token it does not own, and learns nothing
	assert.NilError(t, services.revocation.RevokeToken(token.AccessValue, "other-app"))

	resolved, err := services.tokens.GetByAccessValue(token.AccessValue)
	assert.NilError(t, err)
	assert.Assert(t, !resolved.Revoked)
}

func TestRevokePermission(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	_, permission := services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})

	revoked, err := services.revocation.RevokePermission(permission.ID, "user-1", "no longer needed")
	assert.NilError(t, err)
	assert.Assert(t, revoked.Revoked)
	assert.Assert(t, revoked.RevokedAt != nil)
	assert.Equal(t, "no longer needed", revoked.RevocationReason)

	// Terminal: a second revocation keeps the original reason and timestamp
	again, err := services.revocation.RevokePermission(permission.ID, "user-1", "different reason")
	assert.NilError(t, err)
	assert.Assert(t, again.Revoked)
	assert.Equal(t, "no longer needed", again.RevocationReason)
	assert.Equal(t, *revoked.RevokedAt, *again.RevokedAt)

	var stored model.Permission
	assert.NilError(t, services.database.Where("id = ?", permission.ID).First(&stored).Error)
	assert.Assert(t, stored.Revoked)
	assert.Equal(t, "no longer needed", stored.RevocationReason)
}

func TestRevokePermissionOwnership(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	_, permission := services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})

	// Another user's revocation attempt looks like a missing permission
	_, err := services.revocation.RevokePermission(permission.ID, "user-2", "")
	assert.ErrorIs(t, err, service.ErrPermissionNotFound)

	_, err = services.revocation.RevokePermission("no-such-permission", "user-1", "")
	assert.ErrorIs(t, err, service.ErrPermissionNotFound)
}
