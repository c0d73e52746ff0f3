package service_test

import (
	"testing"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"gotest.tools/v3/assert"
)

func TestValidateConsentRequest(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	// Happy path
	request, err := services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street city postal_code", 30, 10)
	assert.NilError(t, err)
	assert.Equal(t, "shop-app", request.ClientID)
	assert.Equal(t, "Test App", request.AppName)
	assert.DeepEqual(t, request.RequestedFields, []string{"street", "city", "postal_code"})

	// Unknown scope field
	_, err = services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street phone", 0, 0)
	assert.ErrorIs(t, err, service.ErrInvalidScope)

	// Empty scope
	_, err = services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "", 0, 0)
	assert.ErrorIs(t, err, service.ErrInvalidScope)

	// Expiry out of bounds
	_, err = services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street", 366, 0)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	// Access count out of bounds
	_, err = services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street", 0, 1001)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	// Zero means unbounded, not out of bounds
	_, err = services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street", 0, 0)
	assert.NilError(t, err)
}

func TestIssueGrant(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	request, err := services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "street city postal_code country", 30, 5)
	assert.NilError(t, err)

	// The user narrows the request to a subset
	code, permission, err := services.grants.IssueGrant(request, &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city", "postal_code"},
		ExpiresInDays:  30,
		MaxAccessCount: 5,
		NotifyOnAccess: true,
	})
	assert.NilError(t, err)
	assert.Assert(t, code != "")

	assert.DeepEqual(t, permission.SharedFields(), []string{"city", "postal_code"})
	assert.Assert(t, !permission.ShareStreet)
	assert.Assert(t, permission.ExpiresAt != nil)
	assert.Assert(t, permission.MaxAccessCount != nil)
	assert.Equal(t, int64(5), *permission.MaxAccessCount)
	assert.Equal(t, int64(0), permission.AccessCount)
	assert.Assert(t, permission.NotifyOnAccess)

	// The code is bound to the client, redirect URI and narrowed scope
	var stored model.AuthorizationCode
	assert.NilError(t, services.database.Where("code = ?", code).First(&stored).Error)
	assert.Equal(t, "shop-app", stored.ClientID)
	assert.Equal(t, "https://shop.example.com/callback", stored.RedirectURI)
	assert.Equal(t, "city postal_code", stored.Scope)
	assert.Equal(t, permission.ID, stored.PermissionID)
	assert.Assert(t, !stored.Used)

	// The permission round-trips through the store
	fetched, err := services.grants.GetPermission(permission.ID)
	assert.NilError(t, err)
	assert.Equal(t, "user-1", fetched.UserID)

	_, err = services.grants.GetPermission("no-such-permission")
	assert.ErrorIs(t, err, service.ErrPermissionNotFound)
}

func TestIssueGrantRejectsWidening(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	request, err := services.grants.ValidateConsentRequest("shop-app", "https://shop.example.com/callback", "city", 0, 0)
	assert.NilError(t, err)

	// Approving a field the app never asked for is invalid_scope
	_, _, err = services.grants.IssueGrant(request, &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city", "street"},
	})
	assert.ErrorIs(t, err, service.ErrInvalidScope)

	// So is approving nothing at all
	_, _, err = services.grants.IssueGrant(request, &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{},
	})
	assert.ErrorIs(t, err, service.ErrInvalidScope)
}

func TestIssueGrantShippingExtension(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "courier-app", []string{"https://courier.example.com/callback"}, config.AppStatusActive)

	request, err := services.grants.ValidateConsentRequest("courier-app", "https://courier.example.com/callback", "street city postal_code country", 0, 0)
	assert.NilError(t, err)

	_, permission, err := services.grants.IssueGrant(request, &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"street", "city", "postal_code", "country"},
		Shipping: &config.ShippingConsent{
			Carriers:            []string{"dhl", "ups"},
			Methods:             []string{"express"},
			RequireConfirmation: true,
		},
	})
	assert.NilError(t, err)

	extension, err := services.grants.GetShippingExtension(permission.ID)
	assert.NilError(t, err)
	assert.Assert(t, extension != nil)
	assert.Equal(t, `["dhl","ups"]`, extension.Carriers)
	assert.Equal(t, `["express"]`, extension.Methods)
	assert.Assert(t, extension.RequireConfirmation)

	// Grants without shipping consent have no extension
	request, err = services.grants.ValidateConsentRequest("courier-app", "https://courier.example.com/callback", "city", 0, 0)
	assert.NilError(t, err)

	_, plain, err := services.grants.IssueGrant(request, &config.ConsentDecision{
		UserID:         "user-2",
		ApprovedFields: []string{"city"},
	})
	assert.NilError(t, err)

	extension, err = services.grants.GetShippingExtension(plain.ID)
	assert.NilError(t, err)
	assert.Assert(t, extension == nil)
}

func TestListPermissions(t *testing.T) {
	services := setupServices(t)
	services.createApp(t, "shop-app", []string{"https://shop.example.com/callback"}, config.AppStatusActive)

	services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "city", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"city"},
	})
	services.issueGrant(t, "shop-app", "https://shop.example.com/callback", "street", &config.ConsentDecision{
		UserID:         "user-1",
		ApprovedFields: []string{"street"},
	})

	permissions, err := services.grants.ListPermissions("user-1")
	assert.NilError(t, err)
	assert.Equal(t, 2, len(permissions))

	permissions, err = services.grants.ListPermissions("user-2")
	assert.NilError(t, err)
	assert.Equal(t, 0, len(permissions))
}
