package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"gorm.io/gorm"
	"gotest.tools/v3/assert"
)

type testServices struct {
	database      *gorm.DB
	apps          *service.AppService
	rateLimit     *service.RateLimitService
	grants        *service.GrantService
	tokens        *service.TokenService
	audit         *service.AuditService
	notifications *service.NotificationService
	revocation    *service.RevocationService
	addresses     *service.AddressService
	sessions      *service.SessionService
}

func setupServices(t *testing.T) *testServices {
	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: ":memory:",
	})

	err := databaseService.Init()
	assert.NilError(t, err)

	database := databaseService.GetDatabase()

	apps := service.NewAppService(service.AppServiceConfig{
		Database: database,
	})
	assert.NilError(t, apps.Init())

	rateLimit := service.NewRateLimitService(service.RateLimitServiceConfig{
		Window: 100 * time.Millisecond,
	}, service.NewMemoryRateLimitStore())
	assert.NilError(t, rateLimit.Init())

	grants := service.NewGrantService(service.GrantServiceConfig{
		CodeExpiry: time.Minute,
		Database:   database,
	}, apps)
	assert.NilError(t, grants.Init())

	tokens := service.NewTokenService(service.TokenServiceConfig{
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Database:           database,
	})
	assert.NilError(t, tokens.Init())

	audit := service.NewAuditService(service.AuditServiceConfig{
		Database: database,
	})
	assert.NilError(t, audit.Init())

	notifications := service.NewNotificationService(service.NotificationServiceConfig{
		Enabled:   false,
		QueueSize: 16,
		Timeout:   time.Second,
		Database:  database,
	})
	assert.NilError(t, notifications.Init())

	revocation := service.NewRevocationService(service.RevocationServiceConfig{
		Database: database,
	}, audit, notifications)
	assert.NilError(t, revocation.Init())

	addresses := service.NewAddressService(service.AddressServiceConfig{
		Database: database,
	}, tokens, audit, notifications)
	assert.NilError(t, addresses.Init())

	sessions := service.NewSessionService(service.SessionServiceConfig{
		Database: database,
	})
	assert.NilError(t, sessions.Init())

	return &testServices{
		database:      database,
		apps:          apps,
		rateLimit:     rateLimit,
		grants:        grants,
		tokens:        tokens,
		audit:         audit,
		notifications: notifications,
		revocation:    revocation,
		addresses:     addresses,
		sessions:      sessions,
	}
}

func (ts *testServices) createApp(t *testing.T, clientID string, redirectURIs []string, status string) *model.DeveloperApp {
	uris, err := json.Marshal(redirectURIs)
	assert.NilError(t, err)

	app := &model.DeveloperApp{
		ClientID:     clientID,
		Name:         "Test App",
		RedirectURIs: string(uris),
		Status:       status,
		CreatedAt:    time.Now().Unix(),
		UpdatedAt:    time.Now().Unix(),
	}

	assert.NilError(t, ts.database.Create(app).Error)
	return app
}

func (ts *testServices) createAddress(t *testing.T, userID string, status string) *model.VerifiedAddress {
	address := &model.VerifiedAddress{
		UserID:     userID,
		Street:     "221B Baker Street",
		City:       "London",
		State:      "Greater London",
		PostalCode: "NW1 6XE",
		Country:    "GB",
		Status:     status,
		CreatedAt:  time.Now().Unix(),
		UpdatedAt:  time.Now().Unix(),
	}

	assert.NilError(t, ts.database.Create(address).Error)
	return address
}

// issueGrant runs the full consent path and returns the minted code and
// permission.
func (ts *testServices) issueGrant(t *testing.T, clientID string, redirectURI string, scope string, decision *config.ConsentDecision) (string, *model.Permission) {
	request, err := ts.grants.ValidateConsentRequest(clientID, redirectURI, scope, decision.ExpiresInDays, decision.MaxAccessCount)
	assert.NilError(t, err)

	code, permission, err := ts.grants.IssueGrant(request, decision)
	assert.NilError(t, err)

	return code, permission
}
