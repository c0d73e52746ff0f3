package service

import (
	"errors"
	"slices"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AddressServiceConfig struct {
	Database *gorm.DB
}

// AddressService is the scoped access resolver. Every read re-validates the
// permission's live state; a token alone is never enough.
type AddressService struct {
	config        AddressServiceConfig
	tokens        *TokenService
	audit         *AuditService
	notifications *NotificationService
}

// AddressProjection is the outcome of a successful scoped read.
type AddressProjection struct {
	Fields          map[string]string
	DisclosedFields []string
	Permission      *model.Permission
	RemainingAccess *int64
}

func NewAddressService(config AddressServiceConfig, tokens *TokenService, audit *AuditService, notifications *NotificationService) *AddressService {
	return &AddressService{
		config:        config,
		tokens:        tokens,
		audit:         audit,
		notifications: notifications,
	}
}

func (as *AddressService) Init() error {
	return nil
}

// Resolve performs a scoped read for the bearer access value. An empty
// requestedFields means "everything the permission covers". The quota
// increment is a conditional update, so two racing reads can never push
// access_count past max_access_count.
func (as *AddressService) Resolve(accessValue string, clientID string, requestedFields []string, callerIP string) (*AddressProjection, error) {
	token, err := as.tokens.GetByAccessValue(accessValue)
	if err != nil {
		return nil, err
	}

	if token.ClientID != clientID {
		return nil, ErrInvalidToken
	}

	var permission model.Permission
	err = as.config.Database.Where("id = ?", token.PermissionID).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	now := time.Now()

	// Liveness re-checks, all three on every read. A permission can expire
	// or be revoked long after the token was minted.
	if permission.Revoked {
		return nil, ErrPermissionRevoked
	}
	if permission.ExpiresAt != nil && now.Unix() > *permission.ExpiresAt {
		return nil, ErrPermissionExpired
	}
	if permission.MaxAccessCount != nil && permission.AccessCount >= *permission.MaxAccessCount {
		return nil, ErrMaxAccessExceeded
	}

	var address model.VerifiedAddress
	err = as.config.Database.Where("user_id = ?", permission.UserID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	if address.Status != config.VerificationVerified {
		return nil, ErrAddressNotVerified
	}

	fields, disclosed := as.project(&permission, &address, requestedFields)

	result := as.config.Database.Model(&model.Permission{}).
		Where("id = ? AND revoked = ? AND (max_access_count IS NULL OR access_count < max_access_count)", permission.ID, false).
		Updates(map[string]any{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": now.Unix(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		// Lost the race: someone revoked the permission or spent the last
		// quota slot between our check and the update.
		var current model.Permission
		if err := as.config.Database.Where("id = ?", permission.ID).First(&current).Error; err == nil && current.Revoked {
			return nil, ErrPermissionRevoked
		}
		return nil, ErrMaxAccessExceeded
	}

	permission.AccessCount++
	lastAccessed := now.Unix()
	permission.LastAccessedAt = &lastAccessed

	if err := as.audit.RecordAccess(AccessEvent{Permission: &permission, Fields: disclosed, CallerIP: callerIP}); err != nil {
		log.Error().Err(err).Str("permission_id", permission.ID).Msg("Access log append failed")
	}

	if permission.NotifyOnAccess {
		as.notifications.EnqueueAccess(&permission, disclosed)
	}

	projection := &AddressProjection{
		Fields:          fields,
		DisclosedFields: disclosed,
		Permission:      &permission,
	}

	if permission.MaxAccessCount != nil {
		remaining := *permission.MaxAccessCount - permission.AccessCount
		if remaining < 0 {
			remaining = 0
		}
		projection.RemainingAccess = &remaining
	}

	return projection, nil
}

// project computes the disclosed field set: a field is included only if the
// permission covers it and the caller asked for it (or asked for nothing in
// particular). Fields failing either side are omitted entirely, never
// returned as null placeholders.
func (as *AddressService) project(permission *model.Permission, address *model.VerifiedAddress, requestedFields []string) (map[string]string, []string) {
	values := map[string]string{
		config.FieldStreet:     address.Street,
		config.FieldCity:       address.City,
		config.FieldState:      address.State,
		config.FieldPostalCode: address.PostalCode,
		config.FieldCountry:    address.Country,
	}

	fields := make(map[string]string)
	disclosed := make([]string, 0, len(config.AddressFields))

	for _, field := range config.AddressFields {
		if !permission.Shares(field) {
			continue
		}
		if len(requestedFields) > 0 && !slices.Contains(requestedFields, field) {
			continue
		}
		fields[field] = values[field]
		disclosed = append(disclosed, field)
	}

	return fields, disclosed
}
