package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"
)

type AuthorizeRequest struct {
	ClientID       string `form:"client_id" binding:"required"`
	RedirectURI    string `form:"redirect_uri" binding:"required"`
	Scope          string `form:"scope" binding:"required"`
	State          string `form:"state"`
	ExpiresInDays  int    `form:"expires_in_days"`
	MaxAccessCount int    `form:"max_access_count"`
	NotifyOnAccess bool   `form:"notify_on_access"`
}

type ShippingConsentRequest struct {
	Carriers            []string `json:"carriers"`
	Methods             []string `json:"methods"`
	RequireConfirmation bool     `json:"require_confirmation"`
}

type ConsentDecisionRequest struct {
	ClientID       string                  `json:"client_id" binding:"required"`
	RedirectURI    string                  `json:"redirect_uri" binding:"required"`
	Scope          string                  `json:"scope" binding:"required"`
	State          string                  `json:"state"`
	ExpiresInDays  int                     `json:"expires_in_days"`
	MaxAccessCount int                     `json:"max_access_count"`
	NotifyOnAccess bool                    `json:"notify_on_access"`
	Approve        bool                    `json:"approve"`
	ApprovedFields []string                `json:"approved_fields"`
	Shipping       *ShippingConsentRequest `json:"shipping,omitempty"`
}

type AuthorizeControllerConfig struct{}

// AuthorizeController drives the consent flow: GET validates the request
// and hands the consent prompt to the external UI, POST takes the user's
// decision and finishes with a code (or error) redirect.
type AuthorizeController struct {
	config   AuthorizeControllerConfig
	router   *gin.RouterGroup
	grants   *service.GrantService
	sessions *service.SessionService
}

func NewAuthorizeController(config AuthorizeControllerConfig, router *gin.RouterGroup, grants *service.GrantService, sessions *service.SessionService) *AuthorizeController {
	return &AuthorizeController{
		config:   config,
		router:   router,
		grants:   grants,
		sessions: sessions,
	}
}

func (controller *AuthorizeController) SetupRoutes() {
	controller.router.GET("/authorize", controller.authorizeHandler)
	controller.router.POST("/authorize", controller.consentHandler)
}

func (controller *AuthorizeController) authorizeHandler(c *gin.Context) {
	var req AuthorizeRequest

	err := c.ShouldBindQuery(&req)
	if err != nil {
		log.Debug().Err(err).Msg("Malformed authorize request")
		api.Error(c, http.StatusBadRequest, "invalid_request", "Missing or malformed parameters")
		return
	}

	user := controller.requireUser(c)
	if user == nil {
		return
	}

	request, err := controller.grants.ValidateConsentRequest(req.ClientID, req.RedirectURI, req.Scope, req.ExpiresInDays, req.MaxAccessCount)
	if err != nil {
		// The redirect target is not trusted until the gate passes, so
		// everything fails inline here, never via redirect.
		respondServiceError(c, err)
		return
	}

	api.Data(c, http.StatusOK, gin.H{
		"client_id":        request.ClientID,
		"app_name":         request.AppName,
		"requested_fields": request.RequestedFields,
		"expires_in_days":  req.ExpiresInDays,
		"max_access_count": req.MaxAccessCount,
		"notify_on_access": req.NotifyOnAccess,
		"state":            req.State,
	})
}

func (controller *AuthorizeController) consentHandler(c *gin.Context) {
	var req ConsentDecisionRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Debug().Err(err).Msg("Malformed consent decision")
		api.Error(c, http.StatusBadRequest, "invalid_request", "Missing or malformed parameters")
		return
	}

	user := controller.requireUser(c)
	if user == nil {
		return
	}

	request, err := controller.grants.ValidateConsentRequest(req.ClientID, req.RedirectURI, req.Scope, req.ExpiresInDays, req.MaxAccessCount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Past the gate the redirect target is trusted: failures travel back to
	// the app as error redirects, per the flow contract.
	if !req.Approve {
		controller.errorRedirect(c, request.RedirectURI, "access_denied", "The user declined the request", req.State)
		return
	}

	decision := &config.ConsentDecision{
		UserID:         user.UserID,
		ApprovedFields: req.ApprovedFields,
		ExpiresInDays:  req.ExpiresInDays,
		MaxAccessCount: req.MaxAccessCount,
		NotifyOnAccess: req.NotifyOnAccess,
	}

	if req.Shipping != nil {
		decision.Shipping = &config.ShippingConsent{
			Carriers:            req.Shipping.Carriers,
			Methods:             req.Shipping.Methods,
			RequireConfirmation: req.Shipping.RequireConfirmation,
		}
	}

	code, _, err := controller.grants.IssueGrant(request, decision)
	if err != nil {
		if errors.Is(err, service.ErrInvalidScope) {
			controller.errorRedirect(c, request.RedirectURI, "invalid_scope", "Approved fields must narrow the requested scope", req.State)
			return
		}
		log.Error().Err(err).Str("client_id", req.ClientID).Msg("Failed to issue grant")
		controller.errorRedirect(c, request.RedirectURI, "server_error", "Failed to issue grant", req.State)
		return
	}

	queries, err := query.Values(config.CodeRedirectQuery{
		Code:  code,
		State: req.State,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode code redirect query")
		controller.errorRedirect(c, request.RedirectURI, "server_error", "Failed to issue grant", req.State)
		return
	}

	c.Redirect(http.StatusFound, redirectWithQuery(request.RedirectURI, queries.Encode()))
}

func (controller *AuthorizeController) requireUser(c *gin.Context) *config.UserContext {
	user, err := controller.sessions.ResolveUser(c)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}
	if !user.IsLoggedIn {
		api.Error(c, http.StatusUnauthorized, "unauthorized", "Sign in to review this request")
		return nil
	}
	return user
}

func (controller *AuthorizeController) errorRedirect(c *gin.Context, redirectURI string, code string, description string, state string) {
	queries, err := query.Values(config.ErrorRedirectQuery{
		Error:            code,
		ErrorDescription: description,
		State:            state,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode error redirect query")
		api.Error(c, http.StatusInternalServerError, "server_error", "Something went wrong")
		return
	}

	c.Redirect(http.StatusFound, redirectWithQuery(redirectURI, queries.Encode()))
}

func redirectWithQuery(redirectURI string, encoded string) string {
	separator := "?"
	if strings.Contains(redirectURI, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s%s", redirectURI, separator, encoded)
}
