package bootstrap

import (
	"time"

	"github.com/addrgate/addrgate/internal/service"
)

type Services struct {
	databaseService     *service.DatabaseService
	appService          *service.AppService
	rateLimitService    *service.RateLimitService
	grantService        *service.GrantService
	tokenService        *service.TokenService
	revocationService   *service.RevocationService
	auditService        *service.AuditService
	notificationService *service.NotificationService
	addressService      *service.AddressService
	sessionService      *service.SessionService
}

func (app *BootstrapApp) initServices() (Services, error) {
	services := Services{}

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: app.config.DatabasePath,
	})

	if err := databaseService.Init(); err != nil {
		return Services{}, err
	}

	services.databaseService = databaseService
	database := databaseService.GetDatabase()

	appService := service.NewAppService(service.AppServiceConfig{
		Database: database,
	})

	if err := appService.Init(); err != nil {
		return Services{}, err
	}

	services.appService = appService

	rateLimitService := service.NewRateLimitService(service.RateLimitServiceConfig{
		Window: time.Duration(app.config.RateLimitWindow) * time.Second,
	}, service.NewMemoryRateLimitStore())

	if err := rateLimitService.Init(); err != nil {
		return Services{}, err
	}

	services.rateLimitService = rateLimitService

	grantService := service.NewGrantService(service.GrantServiceConfig{
		CodeExpiry: time.Duration(app.config.CodeExpiry) * time.Second,
		Database:   database,
	}, appService)

	if err := grantService.Init(); err != nil {
		return Services{}, err
	}

	services.grantService = grantService

	tokenService := service.NewTokenService(service.TokenServiceConfig{
		AccessTokenExpiry:  time.Duration(app.config.AccessTokenExpiry) * time.Second,
		RefreshTokenExpiry: time.Duration(app.config.RefreshTokenExpiry) * time.Second,
		Database:           database,
	})

	if err := tokenService.Init(); err != nil {
		return Services{}, err
	}

	services.tokenService = tokenService

	auditService := service.NewAuditService(service.AuditServiceConfig{
		LogFile:  app.config.AuditLogFile,
		LogJSON:  app.config.AuditLogJSON,
		Database: database,
	})

	if err := auditService.Init(); err != nil {
		return Services{}, err
	}

	services.auditService = auditService

	notificationService := service.NewNotificationService(service.NotificationServiceConfig{
		Enabled:   !app.config.DisableNotifications,
		QueueSize: app.config.WebhookQueueSize,
		Timeout:   time.Duration(app.config.WebhookTimeout) * time.Second,
		Database:  database,
	})

	if err := notificationService.Init(); err != nil {
		return Services{}, err
	}

	services.notificationService = notificationService

	revocationService := service.NewRevocationService(service.RevocationServiceConfig{
		Database: database,
	}, auditService, notificationService)

	if err := revocationService.Init(); err != nil {
		return Services{}, err
	}

	services.revocationService = revocationService

	addressService := service.NewAddressService(service.AddressServiceConfig{
		Database: database,
	}, tokenService, auditService, notificationService)

	if err := addressService.Init(); err != nil {
		return Services{}, err
	}

	services.addressService = addressService

	sessionService := service.NewSessionService(service.SessionServiceConfig{
		Database: database,
	})

	if err := sessionService.Init(); err != nil {
		return Services{}, err
	}

	services.sessionService = sessionService

	return services, nil
}
