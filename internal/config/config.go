package config

// Version information, set at build time

var Version = "development"
var CommitHash = "development"
var BuildTimestamp = "0000-00-00T00:00:00Z"

// Cookie names

var SessionCookieName = "addrgate-session"

// Main app config

type Config struct {
	Port                 int    `mapstructure:"port" validate:"required"`
	Address              string `validate:"required,ip4_addr" mapstructure:"address"`
	AppURL               string `validate:"required,url" mapstructure:"app-url"`
	DatabasePath         string `mapstructure:"database-path" validate:"required"`
	LogLevel             string `mapstructure:"log-level" validate:"oneof=trace debug info warn error fatal panic"`
	TrustedProxies       string `mapstructure:"trusted-proxies"`
	AuditLogFile         string `mapstructure:"audit-log-file"`
	AuditLogJSON         bool   `mapstructure:"audit-log-json"`
	AccessTokenExpiry    int    `mapstructure:"access-token-expiry" validate:"required,min=60"`
	RefreshTokenExpiry   int    `mapstructure:"refresh-token-expiry" validate:"required,min=3600"`
	CodeExpiry           int    `mapstructure:"code-expiry" validate:"required,min=30"`
	AuthorizeRateLimit   int    `mapstructure:"authorize-rate-limit" validate:"min=0"`
	TokenRateLimit       int    `mapstructure:"token-rate-limit" validate:"min=0"`
	ResourceRateLimit    int    `mapstructure:"resource-rate-limit" validate:"min=0"`
	RevokeRateLimit      int    `mapstructure:"revoke-rate-limit" validate:"min=0"`
	RateLimitWindow      int    `mapstructure:"rate-limit-window" validate:"min=1"`
	WebhookTimeout       int    `mapstructure:"webhook-timeout" validate:"min=1"`
	WebhookQueueSize     int    `mapstructure:"webhook-queue-size" validate:"min=1"`
	DisableNotifications bool   `mapstructure:"disable-notifications"`
}

// Address fields an app can be granted. The set is closed: a scope request
// containing anything else is rejected as invalid_scope.

const (
	FieldStreet     = "street"
	FieldCity       = "city"
	FieldState      = "state"
	FieldPostalCode = "postal_code"
	FieldCountry    = "country"
)

var AddressFields = []string{
	FieldStreet,
	FieldCity,
	FieldState,
	FieldPostalCode,
	FieldCountry,
}

// Grant bounds

const (
	MinExpiryDays     = 1
	MaxExpiryDays     = 365
	MinAccessCount    = 1
	MaxAccessCountCap = 1000
)

// Developer app lifecycle status

const (
	AppStatusDevelopment = "development"
	AppStatusActive      = "active"
	AppStatusSuspended   = "suspended"
)

// Address verification status

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Grant types accepted by the token endpoint

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// Webhook event types

const (
	EventAddressAccessed   = "address.accessed"
	EventPermissionRevoked = "permission.revoked"
	EventTokenRevoked      = "token.revoked"
)

// UserContext is the authenticated user resolved from the session store for
// the consent and permission management endpoints.
type UserContext struct {
	UserID     string
	IsLoggedIn bool
}

// ConsentRequest is a validated authorize request waiting for the user's
// per-field decision. The consent UI may narrow RequestedFields, never widen.
type ConsentRequest struct {
	ClientID        string
	AppName         string
	RedirectURI     string
	RequestedFields []string
	ExpiresInDays   int
	MaxAccessCount  int
	NotifyOnAccess  bool
}

// ConsentDecision carries the user's approval back into the grant issuer.
type ConsentDecision struct {
	UserID         string
	ApprovedFields []string
	ExpiresInDays  int
	MaxAccessCount int
	NotifyOnAccess bool
	Shipping       *ShippingConsent
}

// ShippingConsent is the optional shipping-carrier extension approved with
// the grant, modeled as a typed variant instead of a metadata blob.
type ShippingConsent struct {
	Carriers            []string
	Methods             []string
	RequireConfirmation bool
}

// Redirect queries

type CodeRedirectQuery struct {
	Code  string `url:"code"`
	State string `url:"state,omitempty"`
}

type ErrorRedirectQuery struct {
	Error            string `url:"error"`
	ErrorDescription string `url:"error_description"`
	State            string `url:"state,omitempty"`
}
