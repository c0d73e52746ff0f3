package service

import (
	"encoding/json"
	"errors"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AppServiceConfig struct {
	Database *gorm.DB
}

// AppService is the client registry gate. It fronts every entry point: no
// code or token is issued for an app that is unknown, suspended, or asking
// for a redirect target outside its allow-list.
type AppService struct {
	config AppServiceConfig
}

func NewAppService(config AppServiceConfig) *AppService {
	return &AppService{
		config: config,
	}
}

func (apps *AppService) Init() error {
	return nil
}

func (apps *AppService) GetApp(clientID string) (*model.DeveloperApp, error) {
	var app model.DeveloperApp
	err := apps.config.Database.Where("client_id = ?", clientID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}
	return &app, nil
}

// AuthorizeClient validates that the app exists, is active and that
// redirectURI is byte-for-byte on its allow-list. This is the sole
// anti-phishing control against open-redirect abuse. Apps still in
// development (or suspended) cannot issue grants.
func (apps *AppService) AuthorizeClient(clientID string, redirectURI string) (*model.DeveloperApp, error) {
	app, err := apps.GetApp(clientID)
	if err != nil {
		return nil, err
	}

	if app.Status != config.AppStatusActive {
		log.Warn().Str("client_id", clientID).Str("status", app.Status).Msg("Inactive app attempted authorization")
		return nil, ErrInvalidClient
	}

	if !apps.ValidateRedirectURI(app, redirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	return app, nil
}

func (apps *AppService) ValidateRedirectURI(app *model.DeveloperApp, redirectURI string) bool {
	var redirectURIs []string
	if err := json.Unmarshal([]byte(app.RedirectURIs), &redirectURIs); err != nil {
		log.Error().Err(err).Str("client_id", app.ClientID).Msg("Failed to unmarshal redirect URIs")
		return false
	}

	for _, uri := range redirectURIs {
		if uri == redirectURI {
			return true
		}
	}
	return false
}

// VerifyClientSecret checks the app's secret when one is registered. Apps
// without a stored hash are public clients and pass with an empty secret.
func (apps *AppService) VerifyClientSecret(app *model.DeveloperApp, secret string) bool {
	if app.ClientSecretHash == "" {
		return true
	}
	err := bcrypt.CompareHashAndPassword([]byte(app.ClientSecretHash), []byte(secret))
	return err == nil
}
