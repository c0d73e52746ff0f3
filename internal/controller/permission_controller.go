package controller

import (
	"encoding/json"
	"net/http"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PermissionRevokeRequest struct {
	Reason string `json:"reason"`
}

type PermissionControllerConfig struct{}

// PermissionController is the user-facing side of consent management:
// listing grants and revoking them. All routes require a session.
type PermissionController struct {
	config     PermissionControllerConfig
	router     *gin.RouterGroup
	grants     *service.GrantService
	revocation *service.RevocationService
	sessions   *service.SessionService
}

func NewPermissionController(config PermissionControllerConfig, router *gin.RouterGroup, grants *service.GrantService, revocation *service.RevocationService, sessions *service.SessionService) *PermissionController {
	return &PermissionController{
		config:     config,
		router:     router,
		grants:     grants,
		revocation: revocation,
		sessions:   sessions,
	}
}

func (controller *PermissionController) SetupRoutes() {
	permissionGroup := controller.router.Group("/permissions")
	permissionGroup.GET("", controller.listHandler)
	permissionGroup.POST("/:id/revoke", controller.revokeHandler)
}

func (controller *PermissionController) listHandler(c *gin.Context) {
	user := controller.requireUser(c)
	if user == nil {
		return
	}

	permissions, err := controller.grants.ListPermissions(user.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summaries := make([]gin.H, 0, len(permissions))
	for i := range permissions {
		summaries = append(summaries, controller.summarize(&permissions[i]))
	}

	api.Data(c, http.StatusOK, gin.H{
		"permissions": summaries,
	})
}

func (controller *PermissionController) revokeHandler(c *gin.Context) {
	user := controller.requireUser(c)
	if user == nil {
		return
	}

	var req PermissionRevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	permission, err := controller.revocation.RevokePermission(c.Param("id"), user.UserID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	api.Data(c, http.StatusOK, controller.summarize(permission))
}

func (controller *PermissionController) summarize(permission *model.Permission) gin.H {
	summary := gin.H{
		"id":               permission.ID,
		"client_id":        permission.ClientID,
		"app_name":         permission.AppName,
		"shared_fields":    permission.SharedFields(),
		"access_count":     permission.AccessCount,
		"revoked":          permission.Revoked,
		"notify_on_access": permission.NotifyOnAccess,
		"created_at":       permission.CreatedAt,
	}

	if permission.ExpiresAt != nil {
		summary["expires_at"] = *permission.ExpiresAt
	}
	if permission.MaxAccessCount != nil {
		summary["max_access_count"] = *permission.MaxAccessCount
	}
	if permission.LastAccessedAt != nil {
		summary["last_accessed_at"] = *permission.LastAccessedAt
	}
	if permission.Revoked {
		summary["revocation_reason"] = permission.RevocationReason
		if permission.RevokedAt != nil {
			summary["revoked_at"] = *permission.RevokedAt
		}
	}

	if extension, err := controller.grants.GetShippingExtension(permission.ID); err == nil && extension != nil {
		var carriers, methods []string
		if err := json.Unmarshal([]byte(extension.Carriers), &carriers); err != nil {
			log.Error().Err(err).Str("permission_id", permission.ID).Msg("Failed to unmarshal shipping carriers")
		}
		if err := json.Unmarshal([]byte(extension.Methods), &methods); err != nil {
			log.Error().Err(err).Str("permission_id", permission.ID).Msg("Failed to unmarshal shipping methods")
		}
		summary["shipping"] = gin.H{
			"carriers":             carriers,
			"methods":              methods,
			"require_confirmation": extension.RequireConfirmation,
		}
	}

	return summary
}

func (controller *PermissionController) requireUser(c *gin.Context) *config.UserContext {
	user, err := controller.sessions.ResolveUser(c)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}
	if !user.IsLoggedIn {
		api.Error(c, http.StatusUnauthorized, "unauthorized", "Sign in to manage permissions")
		return nil
	}
	return user
}
