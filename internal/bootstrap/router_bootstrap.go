package bootstrap

import (
	"fmt"
	"strings"

	"github.com/addrgate/addrgate/internal/controller"
	"github.com/addrgate/addrgate/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (app *BootstrapApp) setupRouter() (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(app.config.TrustedProxies) > 0 {
		err := engine.SetTrustedProxies(strings.Split(app.config.TrustedProxies, ","))

		if err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	requestIDMiddleware := middleware.NewRequestIDMiddleware()

	if err := requestIDMiddleware.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize request id middleware: %w", err)
	}

	engine.Use(requestIDMiddleware.Middleware())

	zerologMiddleware := middleware.NewZerologMiddleware()

	if err := zerologMiddleware.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize zerolog middleware: %w", err)
	}

	engine.Use(zerologMiddleware.Middleware())

	// One group per rate limit class so every entry point is fronted by
	// its own window.
	authorizeGroup, err := app.limitedGroup(engine, "authorize", app.config.AuthorizeRateLimit)
	if err != nil {
		return nil, err
	}

	tokenGroup, err := app.limitedGroup(engine, "token", app.config.TokenRateLimit)
	if err != nil {
		return nil, err
	}

	resourceGroup, err := app.limitedGroup(engine, "resource", app.config.ResourceRateLimit)
	if err != nil {
		return nil, err
	}

	revokeGroup, err := app.limitedGroup(engine, "revoke", app.config.RevokeRateLimit)
	if err != nil {
		return nil, err
	}

	authorizeController := controller.NewAuthorizeController(controller.AuthorizeControllerConfig{}, authorizeGroup, app.services.grantService, app.services.sessionService)
	authorizeController.SetupRoutes()

	tokenController := controller.NewTokenController(controller.TokenControllerConfig{}, tokenGroup, app.services.appService, app.services.tokenService, app.services.revocationService)
	tokenController.SetupRoutes()
	tokenController.SetupRevokeRoutes(revokeGroup)

	addressController := controller.NewAddressController(controller.AddressControllerConfig{
		AppURL: app.config.AppURL,
	}, resourceGroup, app.services.addressService)
	addressController.SetupRoutes()

	permissionController := controller.NewPermissionController(controller.PermissionControllerConfig{}, revokeGroup, app.services.grantService, app.services.revocationService, app.services.sessionService)
	permissionController.SetupRoutes()

	healthController := controller.NewHealthController(engine.Group(""))
	healthController.SetupRoutes()

	return engine, nil
}

func (app *BootstrapApp) limitedGroup(engine *gin.Engine, class string, limit int) (*gin.RouterGroup, error) {
	group := engine.Group("")

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(middleware.RateLimitMiddlewareConfig{
		Class: class,
		Limit: int64(limit),
	}, app.services.rateLimitService)

	if err := rateLimitMiddleware.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s rate limit middleware: %w", class, err)
	}

	group.Use(rateLimitMiddleware.Middleware())
	return group, nil
}
