package controller

import (
	"net/http"
	"strings"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/service"
	"github.com/addrgate/addrgate/internal/utils"

	"github.com/gin-gonic/gin"
)

type AddressControllerConfig struct {
	AppURL string
}

// AddressController serves the scoped resource reads. Both endpoints run
// the full resolver: permission liveness, projection, quota, audit.
type AddressController struct {
	config    AddressControllerConfig
	router    *gin.RouterGroup
	addresses *service.AddressService
}

func NewAddressController(config AddressControllerConfig, router *gin.RouterGroup, addresses *service.AddressService) *AddressController {
	return &AddressController{
		config:    config,
		router:    router,
		addresses: addresses,
	}
}

func (controller *AddressController) SetupRoutes() {
	controller.router.GET("/address", controller.addressHandler)
	controller.router.GET("/userinfo", controller.userinfoHandler)
}

func (controller *AddressController) addressHandler(c *gin.Context) {
	projection := controller.resolve(c)
	if projection == nil {
		return
	}

	api.Data(c, http.StatusOK, gin.H{
		"address":    projection.Fields,
		"permission": permissionMeta(projection),
	})
}

func (controller *AddressController) userinfoHandler(c *gin.Context) {
	projection := controller.resolve(c)
	if projection == nil {
		return
	}

	// OpenID-style response: issuer and subject plus the address claim,
	// restricted to the disclosed projection.
	api.Data(c, http.StatusOK, gin.H{
		"iss":        controller.config.AppURL,
		"sub":        projection.Permission.UserID,
		"address":    projection.Fields,
		"permission": permissionMeta(projection),
	})
}

func (controller *AddressController) resolve(c *gin.Context) *service.AddressProjection {
	accessValue := bearerToken(c)
	if accessValue == "" {
		api.Error(c, http.StatusUnauthorized, "invalid_token", "Missing bearer token")
		return nil
	}

	clientID := c.GetHeader("X-Client-ID")
	if clientID == "" {
		api.Error(c, http.StatusBadRequest, "invalid_request", "Missing X-Client-ID header")
		return nil
	}

	requestedFields := utils.ParseCommaString(c.Query("fields"))

	projection, err := controller.addresses.Resolve(accessValue, clientID, requestedFields, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return nil
	}

	return projection
}

func permissionMeta(projection *service.AddressProjection) gin.H {
	meta := gin.H{
		"id":           projection.Permission.ID,
		"access_count": projection.Permission.AccessCount,
	}

	if projection.RemainingAccess != nil {
		meta["remaining_access"] = *projection.RemainingAccess
	}
	if projection.Permission.ExpiresAt != nil {
		meta["expires_at"] = *projection.Permission.ExpiresAt
	}

	return meta
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
