package service

import (
	"errors"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionServiceConfig struct {
	Database *gorm.DB
}

// SessionService is the boundary to the user/session store: it answers "who
// is the authenticated user approving consent". Login and identity issuance
// live outside this service.
type SessionService struct {
	config SessionServiceConfig
}

func NewSessionService(config SessionServiceConfig) *SessionService {
	return &SessionService{
		config: config,
	}
}

func (ss *SessionService) Init() error {
	return nil
}

// ResolveUser maps the session cookie to a user context. Missing or expired
// sessions resolve to a logged-out context rather than an error.
func (ss *SessionService) ResolveUser(c *gin.Context) (*config.UserContext, error) {
	cookie, err := c.Cookie(config.SessionCookieName)
	if err != nil || cookie == "" {
		return &config.UserContext{}, nil
	}

	var session model.Session
	err = ss.config.Database.Where("uuid = ?", cookie).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &config.UserContext{}, nil
		}
		return nil, err
	}

	if time.Now().Unix() > session.Expiry {
		return &config.UserContext{}, nil
	}

	return &config.UserContext{
		UserID:     session.UserID,
		IsLoggedIn: true,
	}, nil
}

// CreateSession stores a session for a user. Used by the external login
// flow and by tests; this service never authenticates anyone itself.
func (ss *SessionService) CreateSession(userID string, expiry time.Duration) (*model.Session, error) {
	session := &model.Session{
		UUID:      uuid.New().String(),
		UserID:    userID,
		Expiry:    time.Now().Add(expiry).Unix(),
		CreatedAt: time.Now().Unix(),
	}

	if err := ss.config.Database.Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}
