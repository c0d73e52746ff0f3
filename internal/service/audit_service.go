package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/addrgate/addrgate/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AccessEvent describes one resource read for the audit trail.
type AccessEvent struct {
	Permission *model.Permission
	Fields     []string
	CallerIP   string
}

type AuditServiceConfig struct {
	LogFile  string
	LogJSON  bool
	Database *gorm.DB
}

// AuditService appends immutable access log rows and mirrors them to a
// structured audit logger. The row is part of the read's contract; the log
// line is operator convenience.
type AuditService struct {
	config AuditServiceConfig
	logger zerolog.Logger
}

func NewAuditService(config AuditServiceConfig) *AuditService {
	return &AuditService{
		config: config,
	}
}

func (as *AuditService) Init() error {
	writers := make([]io.Writer, 0)

	if as.config.LogFile != "" {
		// Not closed here, we keep writing until the process exits
		file, err := os.OpenFile(as.config.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
		if err != nil {
			return err
		}
		writer := zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true}
		writer.FormatLevel = func(i any) string {
			return strings.ToUpper(fmt.Sprintf("[ %s ]", i))
		}
		writers = append(writers, writer)
	}

	if !as.config.LogJSON {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, os.Stdout)
	}

	as.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	return nil
}

// RecordAccess appends the access log entry. Failing to persist the row is
// an error for the caller to handle; the read already happened.
func (as *AuditService) RecordAccess(event AccessEvent) error {
	fields, err := json.Marshal(event.Fields)
	if err != nil {
		return err
	}

	entry := &model.AccessLogEntry{
		ID:             uuid.New().String(),
		PermissionID:   event.Permission.ID,
		ClientID:       event.Permission.ClientID,
		UserID:         event.Permission.UserID,
		FieldsAccessed: string(fields),
		CallerIP:       event.CallerIP,
		CreatedAt:      time.Now().Unix(),
	}

	if err := as.config.Database.Create(entry).Error; err != nil {
		log.Error().Err(err).Str("permission_id", event.Permission.ID).Msg("Failed to persist access log entry")
		return err
	}

	as.logger.Info().
		Str("event", "address_access").
		Str("permission_id", event.Permission.ID).
		Str("client_id", event.Permission.ClientID).
		Str("user_id", event.Permission.UserID).
		Strs("fields", event.Fields).
		Str("caller_ip", event.CallerIP).
		Msg("Address accessed")

	return nil
}

// RecordRevocation mirrors a lifecycle event to the audit log.
func (as *AuditService) RecordRevocation(kind string, id string, reason string) {
	as.logger.Warn().
		Str("event", kind).
		Str("id", id).
		Str("reason", reason).
		Msg("Revocation")
}

func (as *AuditService) ListEntries(permissionID string) ([]model.AccessLogEntry, error) {
	var entries []model.AccessLogEntry
	err := as.config.Database.Where("permission_id = ?", permissionID).Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
