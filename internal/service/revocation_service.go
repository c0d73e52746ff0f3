package service

import (
	"errors"
	"time"

	"github.com/addrgate/addrgate/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RevocationServiceConfig struct {
	Database *gorm.DB
}

// RevocationService terminates tokens (app-initiated) and permissions
// (user-initiated). Token revocation is deliberately idempotent: revoking an
// unknown or already-revoked value succeeds, so a caller probing blindly
// learns nothing about prior state.
type RevocationService struct {
	config        RevocationServiceConfig
	audit         *AuditService
	notifications *NotificationService
}

func NewRevocationService(config RevocationServiceConfig, audit *AuditService, notifications *NotificationService) *RevocationService {
	return &RevocationService{
		config:        config,
		audit:         audit,
		notifications: notifications,
	}
}

func (rs *RevocationService) Init() error {
	return nil
}

// RevokeToken revokes the pair matching value as either an access or a
// refresh token, scoped to the calling app. Always succeeds unless the
// store itself fails.
func (rs *RevocationService) RevokeToken(value string, clientID string) error {
	var token model.Token
	err := rs.config.Database.
		Where("client_id = ? AND (access_value = ? OR refresh_value = ?)", clientID, value, value).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if token.Revoked {
		return nil
	}

	now := time.Now().Unix()
	result := rs.config.Database.Model(&model.Token{}).
		Where("id = ? AND revoked = ?", token.ID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now})
	if result.Error != nil {
		return result.Error
	}

	log.Info().Str("token_id", token.ID).Str("client_id", clientID).Msg("Token revoked")
	rs.audit.RecordRevocation("token_revoked", token.ID, "")
	rs.notifications.EnqueueTokenRevoked(&token)
	return nil
}

// RevokePermission is terminal: the revoked flag is monotonic and nothing
// un-revokes a permission. Already-issued tokens are left untouched at the
// storage level; every read re-checks permission state, so access is cut off
// immediately regardless.
func (rs *RevocationService) RevokePermission(permissionID string, userID string, reason string) (*model.Permission, error) {
	var permission model.Permission
	err := rs.config.Database.Where("id = ? AND user_id = ?", permissionID, userID).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}

	if permission.Revoked {
		return &permission, nil
	}

	now := time.Now().Unix()
	result := rs.config.Database.Model(&model.Permission{}).
		Where("id = ? AND revoked = ?", permissionID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": now, "revocation_reason": reason})
	if result.Error != nil {
		return nil, result.Error
	}

	permission.Revoked = true
	permission.RevokedAt = &now
	permission.RevocationReason = reason

	log.Info().Str("permission_id", permissionID).Str("user_id", userID).Str("reason", reason).Msg("Permission revoked")
	rs.audit.RecordRevocation("permission_revoked", permissionID, reason)
	rs.notifications.EnqueuePermissionRevoked(&permission)
	return &permission, nil
}
