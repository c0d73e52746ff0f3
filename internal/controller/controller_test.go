package controller_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gotest.tools/v3/assert"
)

type testEnv struct {
	database      *gorm.DB
	apps          *service.AppService
	grants        *service.GrantService
	tokens        *service.TokenService
	audit         *service.AuditService
	notifications *service.NotificationService
	revocation    *service.RevocationService
	addresses     *service.AddressService
	sessions      *service.SessionService
}

func setupEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: ":memory:",
	})
	assert.NilError(t, databaseService.Init())

	database := databaseService.GetDatabase()

	apps := service.NewAppService(service.AppServiceConfig{
		Database: database,
	})
	assert.NilError(t, apps.Init())

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

	return &testEnv{
		database:      database,
		apps:          apps,
		grants:        grants,
		tokens:        tokens,
		audit:         audit,
		notifications: notifications,
		revocation:    revocation,
		addresses:     addresses,
		sessions:      sessions,
	}
}

func (env *testEnv) createApp(t *testing.T, clientID string, redirectURIs []string) *model.DeveloperApp {
	uris, err := json.Marshal(redirectURIs)
	assert.NilError(t, err)

	app := &model.DeveloperApp{
		ClientID:     clientID,
		Name:         "Test App",
		RedirectURIs: string(uris),
		Status:       config.AppStatusActive,
		CreatedAt:    time.Now().Unix(),
		UpdatedAt:    time.Now().Unix(),
	}

	assert.NilError(t, env.database.Create(app).Error)
	return app
}

func (env *testEnv) createAddress(t *testing.T, userID string) *model.VerifiedAddress {
	address := &model.VerifiedAddress{
		UserID:     userID,
		Street:     "221B Baker Street",
		City:       "London",
		State:      "Greater London",
		PostalCode: "NW1 6XE",
		Country:    "GB",
		Status:     config.VerificationVerified,
		CreatedAt:  time.Now().Unix(),
		UpdatedAt:  time.Now().Unix(),
	}

	assert.NilError(t, env.database.Create(address).Error)
	return address
}

func (env *testEnv) createSession(t *testing.T, userID string) string {
	session, err := env.sessions.CreateSession(userID, time.Hour)
	assert.NilError(t, err)
	return session.UUID
}

func (env *testEnv) issueGrant(t *testing.T, clientID string, redirectURI string, scope string, decision *config.ConsentDecision) (string, *model.Permission) {
	request, err := env.grants.ValidateConsentRequest(clientID, redirectURI, scope, decision.ExpiresInDays, decision.MaxAccessCount)
	assert.NilError(t, err)

	code, permission, err := env.grants.IssueGrant(request, decision)
	assert.NilError(t, err)

	return code, permission
}

// decodeData unpacks the success envelope's data object.
func decodeData(t *testing.T, body []byte) map[string]any {
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	assert.NilError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

// decodeError unpacks the error envelope's code.
func decodeError(t *testing.T, body []byte) string {
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NilError(t, json.Unmarshal(body, &envelope))
	return envelope.Error.Code
}
