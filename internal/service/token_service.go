package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TokenServiceConfig struct {
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Database           *gorm.DB
}

// TokenService redeems authorization codes and refresh tokens for token
// pairs. Both redemption paths rely on conditional updates so that a racing
// replay loses: a code is spent exactly once and a refresh token rotates
// exactly once.
type TokenService struct {
	config TokenServiceConfig
}

func NewTokenService(config TokenServiceConfig) *TokenService {
	return &TokenService{
		config: config,
	}
}

func (ts *TokenService) Init() error {
	return nil
}

// ExchangeAuthorizationCode redeems a single-use code. The redirect URI must
// match what the code was bound to byte-for-byte.
func (ts *TokenService) ExchangeAuthorizationCode(codeValue string, clientID string, redirectURI string) (*model.Token, error) {
	var code model.AuthorizationCode
	err := ts.config.Database.Where("code = ?", codeValue).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	if code.ClientID != clientID || code.RedirectURI != redirectURI {
		return nil, ErrInvalidGrant
	}

	if code.Used {
		return nil, ErrGrantReplayed
	}

	if time.Now().Unix() > code.ExpiresAt {
		return nil, ErrInvalidGrant
	}

	// Single check-and-set; a concurrent replay of the same code finds
	// used=1 and gets zero rows.
	result := ts.config.Database.Model(&model.AuthorizationCode{}).
		Where("code = ? AND used = ?", codeValue, false).
		Update("used", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		log.Warn().Str("client_id", clientID).Msg("Authorization code replay detected")
		return nil, ErrGrantReplayed
	}

	token, err := ts.mintToken(code.UserID, code.ClientID, code.PermissionID, code.Scope, "")
	if err != nil {
		return nil, err
	}

	log.Debug().Str("token_id", token.ID).Str("client_id", clientID).Msg("Exchanged authorization code for token pair")
	return token, nil
}

// ExchangeRefreshToken rotates a token pair: the redeemed refresh value is
// burned first, then a brand-new pair is minted carrying the same scope,
// user and permission, with a back-reference for the audit chain. A leaked
// refresh token is therefore good for at most one use. Rotation touches only
// the refresh side: the outgoing pair's access value keeps resolving until
// its own expiry.
func (ts *TokenService) ExchangeRefreshToken(refreshValue string, clientID string) (*model.Token, error) {
	var token model.Token
	err := ts.config.Database.Where("refresh_value = ?", refreshValue).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	if token.ClientID != clientID || token.Revoked || time.Now().Unix() > token.RefreshExpiry {
		return nil, ErrInvalidGrant
	}

	if token.RefreshRevoked {
		return nil, ErrGrantReplayed
	}

	result := ts.config.Database.Model(&model.Token{}).
		Where("id = ? AND revoked = ? AND refresh_revoked = ?", token.ID, false, false).
		Update("refresh_revoked", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		log.Warn().Str("client_id", clientID).Str("token_id", token.ID).Msg("Refresh token replay detected")
		return nil, ErrGrantReplayed
	}

	replacement, err := ts.mintToken(token.UserID, token.ClientID, token.PermissionID, token.Scope, token.ID)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("token_id", replacement.ID).Str("rotated_from", token.ID).Msg("Rotated token pair")
	return replacement, nil
}

func (ts *TokenService) mintToken(userID string, clientID string, permissionID string, scope string, rotatedFrom string) (*model.Token, error) {
	accessValue, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshValue, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()

	token := &model.Token{
		ID:            uuid.New().String(),
		AccessValue:   accessValue,
		RefreshValue:  refreshValue,
		UserID:        userID,
		ClientID:      clientID,
		PermissionID:  permissionID,
		Scope:         scope,
		AccessExpiry:  now.Add(ts.config.AccessTokenExpiry).Unix(),
		RefreshExpiry: now.Add(ts.config.RefreshTokenExpiry).Unix(),
		RotatedFrom:   rotatedFrom,
		CreatedAt:     now.Unix(),
	}

	if err := ts.config.Database.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	return token, nil
}

// GetByAccessValue resolves a bearer access value to a live token. Revoked
// or expired tokens are indistinguishable from unknown ones.
func (ts *TokenService) GetByAccessValue(accessValue string) (*model.Token, error) {
	var token model.Token
	err := ts.config.Database.Where("access_value = ?", accessValue).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if token.Revoked || time.Now().Unix() > token.AccessExpiry {
		return nil, ErrInvalidToken
	}

	return &token, nil
}

func (ts *TokenService) AccessTokenExpirySeconds() int64 {
	return int64(ts.config.AccessTokenExpiry.Seconds())
}
