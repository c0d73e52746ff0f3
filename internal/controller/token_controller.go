package controller

import (
	"net/http"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type TokenRequest struct {
	GrantType    string `form:"grant_type" binding:"required"`
	Code         string `form:"code"`
	RedirectURI  string `form:"redirect_uri"`
	RefreshToken string `form:"refresh_token"`
	ClientID     string `form:"client_id" binding:"required"`
	ClientSecret string `form:"client_secret"`
}

type RevokeRequest struct {
	Token        string `form:"token" binding:"required"`
	ClientID     string `form:"client_id" binding:"required"`
	ClientSecret string `form:"client_secret"`
}

type TokenControllerConfig struct{}

type TokenController struct {
	config     TokenControllerConfig
	router     *gin.RouterGroup
	apps       *service.AppService
	tokens     *service.TokenService
	revocation *service.RevocationService
}

func NewTokenController(config TokenControllerConfig, router *gin.RouterGroup, apps *service.AppService, tokens *service.TokenService, revocation *service.RevocationService) *TokenController {
	return &TokenController{
		config:     config,
		router:     router,
		apps:       apps,
		tokens:     tokens,
		revocation: revocation,
	}
}

func (controller *TokenController) SetupRoutes() {
	controller.router.POST("/token", controller.tokenHandler)
}

// SetupRevokeRoutes registers the revocation endpoint on its own group so
// it can carry a separate rate limit class.
func (controller *TokenController) SetupRevokeRoutes(router *gin.RouterGroup) {
	router.POST("/revoke", controller.revokeHandler)
}

func (controller *TokenController) tokenHandler(c *gin.Context) {
	var req TokenRequest

	err := c.ShouldBind(&req)
	if err != nil {
		log.Debug().Err(err).Msg("Malformed token request")
		api.Error(c, http.StatusBadRequest, "invalid_request", "Missing or malformed parameters")
		return
	}

	app := controller.authenticateApp(c, req.ClientID, req.ClientSecret)
	if app == nil {
		return
	}

	var token *model.Token

	switch req.GrantType {
	case config.GrantTypeAuthorizationCode:
		if req.Code == "" || req.RedirectURI == "" {
			api.ErrorWithDetails(c, http.StatusBadRequest, "invalid_request", "Missing required parameters", gin.H{
				"required": []string{"code", "redirect_uri"},
			})
			return
		}
		token, err = controller.tokens.ExchangeAuthorizationCode(req.Code, req.ClientID, req.RedirectURI)
	case config.GrantTypeRefreshToken:
		if req.RefreshToken == "" {
			api.ErrorWithDetails(c, http.StatusBadRequest, "invalid_request", "Missing required parameters", gin.H{
				"required": []string{"refresh_token"},
			})
			return
		}
		token, err = controller.tokens.ExchangeRefreshToken(req.RefreshToken, req.ClientID)
	default:
		api.Error(c, http.StatusBadRequest, "unsupported_grant_type", "Unknown grant type")
		return
	}

	if err != nil {
		respondServiceError(c, err)
		return
	}

	api.Data(c, http.StatusOK, gin.H{
		"access_token":  token.AccessValue,
		"token_type":    "Bearer",
		"expires_in":    controller.tokens.AccessTokenExpirySeconds(),
		"refresh_token": token.RefreshValue,
		"scope":         token.Scope,
	})
}

func (controller *TokenController) revokeHandler(c *gin.Context) {
	var req RevokeRequest

	err := c.ShouldBind(&req)
	if err != nil {
		log.Debug().Err(err).Msg("Malformed revoke request")
		api.Error(c, http.StatusBadRequest, "invalid_request", "Missing or malformed parameters")
		return
	}

	app := controller.authenticateApp(c, req.ClientID, req.ClientSecret)
	if app == nil {
		return
	}

	err = controller.revocation.RevokeToken(req.Token, req.ClientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Idempotent by design: unknown and already-revoked tokens look the
	// same as fresh revocations.
	api.Data(c, http.StatusOK, gin.H{
		"revoked": true,
	})
}

func (controller *TokenController) authenticateApp(c *gin.Context, clientID string, clientSecret string) *model.DeveloperApp {
	app, err := controller.apps.GetApp(clientID)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}

	if !controller.apps.VerifyClientSecret(app, clientSecret) {
		log.Warn().Str("client_id", clientID).Msg("Client secret mismatch")
		api.Error(c, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
		return nil
	}

	return app
}
