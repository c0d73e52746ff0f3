package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type GrantServiceConfig struct {
	CodeExpiry time.Duration
	Database   *gorm.DB
}

// GrantService is the grant issuer: it validates consent requests and turns
// the user's decision into a Permission plus a single-use authorization code.
type GrantService struct {
	config GrantServiceConfig
	apps   *AppService
}

func NewGrantService(config GrantServiceConfig, apps *AppService) *GrantService {
	return &GrantService{
		config: config,
		apps:   apps,
	}
}

func (gs *GrantService) Init() error {
	return nil
}

// ValidateConsentRequest runs the registry gate and the parameter checks
// that must all pass before anything is persisted or any redirect happens.
func (gs *GrantService) ValidateConsentRequest(clientID string, redirectURI string, scope string, expiresInDays int, maxAccessCount int) (*config.ConsentRequest, error) {
	app, err := gs.apps.AuthorizeClient(clientID, redirectURI)
	if err != nil {
		return nil, err
	}

	requestedFields := utils.SplitScopes(scope)
	if len(requestedFields) == 0 {
		return nil, ErrInvalidScope
	}
	for _, field := range requestedFields {
		if !slices.Contains(config.AddressFields, field) {
			return nil, ErrInvalidScope
		}
	}

	if expiresInDays != 0 && (expiresInDays < config.MinExpiryDays || expiresInDays > config.MaxExpiryDays) {
		return nil, ErrInvalidRequest
	}

	if maxAccessCount != 0 && (maxAccessCount < config.MinAccessCount || maxAccessCount > config.MaxAccessCountCap) {
		return nil, ErrInvalidRequest
	}

	return &config.ConsentRequest{
		ClientID:        app.ClientID,
		AppName:         app.Name,
		RedirectURI:     redirectURI,
		RequestedFields: requestedFields,
		ExpiresInDays:   expiresInDays,
		MaxAccessCount:  maxAccessCount,
	}, nil
}

// IssueGrant persists the Permission with the user-approved flags and mints
// the bound single-use code. The user may narrow the requested fields but
// never widen them; a widened approval is rejected as invalid_scope.
func (gs *GrantService) IssueGrant(request *config.ConsentRequest, decision *config.ConsentDecision) (string, *model.Permission, error) {
	if len(decision.ApprovedFields) == 0 {
		return "", nil, ErrInvalidScope
	}
	for _, field := range decision.ApprovedFields {
		if !slices.Contains(request.RequestedFields, field) {
			return "", nil, ErrInvalidScope
		}
	}

	now := time.Now()

	permission := &model.Permission{
		ID:             uuid.New().String(),
		UserID:         decision.UserID,
		ClientID:       request.ClientID,
		AppName:        request.AppName,
		NotifyOnAccess: decision.NotifyOnAccess,
		CreatedAt:      now.Unix(),
	}

	for _, field := range decision.ApprovedFields {
		switch field {
		case config.FieldStreet:
			permission.ShareStreet = true
		case config.FieldCity:
			permission.ShareCity = true
		case config.FieldState:
			permission.ShareState = true
		case config.FieldPostalCode:
			permission.SharePostalCode = true
		case config.FieldCountry:
			permission.ShareCountry = true
		}
	}

	if decision.ExpiresInDays != 0 {
		expiresAt := now.AddDate(0, 0, decision.ExpiresInDays).Unix()
		permission.ExpiresAt = &expiresAt
	}

	if decision.MaxAccessCount != 0 {
		maxCount := int64(decision.MaxAccessCount)
		permission.MaxAccessCount = &maxCount
	}

	codeValue, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate authorization code: %w", err)
	}

	code := &model.AuthorizationCode{
		Code:         codeValue,
		ClientID:     request.ClientID,
		UserID:       decision.UserID,
		PermissionID: permission.ID,
		RedirectURI:  request.RedirectURI,
		Scope:        utils.JoinScopes(decision.ApprovedFields),
		ExpiresAt:    now.Add(gs.config.CodeExpiry).Unix(),
		CreatedAt:    now.Unix(),
	}

	err = gs.config.Database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(permission).Error; err != nil {
			return err
		}

		if decision.Shipping != nil {
			extension, err := gs.buildShippingExtension(permission.ID, decision.Shipping, now)
			if err != nil {
				return err
			}
			if err := tx.Create(extension).Error; err != nil {
				return err
			}
		}

		return tx.Create(code).Error
	})

	if err != nil {
		return "", nil, fmt.Errorf("failed to persist grant: %w", err)
	}

	log.Info().Str("permission_id", permission.ID).Str("client_id", request.ClientID).Str("user_id", decision.UserID).Strs("fields", decision.ApprovedFields).Msg("Issued permission grant")

	return codeValue, permission, nil
}

func (gs *GrantService) buildShippingExtension(permissionID string, shipping *config.ShippingConsent, now time.Time) (*model.PermissionShippingExtension, error) {
	carriers, err := json.Marshal(shipping.Carriers)
	if err != nil {
		return nil, err
	}
	methods, err := json.Marshal(shipping.Methods)
	if err != nil {
		return nil, err
	}
	return &model.PermissionShippingExtension{
		PermissionID:        permissionID,
		Carriers:            string(carriers),
		Methods:             string(methods),
		RequireConfirmation: shipping.RequireConfirmation,
		CreatedAt:           now.Unix(),
	}, nil
}

func (gs *GrantService) GetPermission(permissionID string) (*model.Permission, error) {
	var permission model.Permission
	err := gs.config.Database.Where("id = ?", permissionID).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &permission, nil
}

func (gs *GrantService) GetShippingExtension(permissionID string) (*model.PermissionShippingExtension, error) {
	var extension model.PermissionShippingExtension
	err := gs.config.Database.Where("permission_id = ?", permissionID).First(&extension).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &extension, nil
}

func (gs *GrantService) ListPermissions(userID string) ([]model.Permission, error) {
	var permissions []model.Permission
	err := gs.config.Database.Where("user_id = ?", userID).Order("created_at DESC").Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}
