package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/addrgate/addrgate/internal/config"
	"github.com/addrgate/addrgate/internal/model"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WebhookEvent is what gets POSTed to an app's webhook URL.
type WebhookEvent struct {
	Type         string   `json:"type"`
	PermissionID string   `json:"permission_id"`
	ClientID     string   `json:"client_id"`
	Fields       []string `json:"fields,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Timestamp    string   `json:"timestamp"`
}

type NotificationServiceConfig struct {
	Enabled   bool
	QueueSize int
	Timeout   time.Duration
	Database  *gorm.DB
}

// NotificationService is the fire-and-forget event sink. The read path
// enqueues and moves on; a worker goroutine delivers with retries. A full
// queue drops the event rather than blocking a resource read.
type NotificationService struct {
	config NotificationServiceConfig
	client *http.Client
	queue  chan WebhookEvent
	done   chan struct{}
}

func NewNotificationService(config NotificationServiceConfig) *NotificationService {
	return &NotificationService{
		config: config,
	}
}

func (ns *NotificationService) Init() error {
	ns.client = &http.Client{Timeout: ns.config.Timeout}
	ns.queue = make(chan WebhookEvent, ns.config.QueueSize)
	ns.done = make(chan struct{})

	if ns.config.Enabled {
		go ns.worker()
	}

	return nil
}

func (ns *NotificationService) Stop() {
	close(ns.done)
}

func (ns *NotificationService) EnqueueAccess(permission *model.Permission, fields []string) {
	ns.enqueue(WebhookEvent{
		Type:         config.EventAddressAccessed,
		PermissionID: permission.ID,
		ClientID:     permission.ClientID,
		Fields:       fields,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (ns *NotificationService) EnqueuePermissionRevoked(permission *model.Permission) {
	ns.enqueue(WebhookEvent{
		Type:         config.EventPermissionRevoked,
		PermissionID: permission.ID,
		ClientID:     permission.ClientID,
		Reason:       permission.RevocationReason,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (ns *NotificationService) EnqueueTokenRevoked(token *model.Token) {
	ns.enqueue(WebhookEvent{
		Type:         config.EventTokenRevoked,
		PermissionID: token.PermissionID,
		ClientID:     token.ClientID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (ns *NotificationService) enqueue(event WebhookEvent) {
	if !ns.config.Enabled {
		return
	}

	select {
	case ns.queue <- event:
	default:
		log.Warn().Str("type", event.Type).Str("client_id", event.ClientID).Msg("Notification queue full, dropping event")
	}
}

func (ns *NotificationService) worker() {
	for {
		select {
		case event := <-ns.queue:
			ns.deliver(event)
		case <-ns.done:
			return
		}
	}
}

func (ns *NotificationService) deliver(event WebhookEvent) {
	var app model.DeveloperApp
	err := ns.config.Database.Where("client_id = ?", event.ClientID).First(&app).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("client_id", event.ClientID).Msg("Failed to look up app for webhook")
		}
		return
	}

	if app.WebhookURL == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal webhook event")
		return
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.RandomizationFactor = 0.1
	exp.Multiplier = 2

	operation := func() (struct{}, error) {
		return struct{}{}, ns.post(app.WebhookURL, payload)
	}

	_, err = backoff.Retry(context.TODO(), operation, backoff.WithBackOff(exp), backoff.WithMaxTries(3))

	if err != nil {
		log.Warn().Err(err).Str("client_id", event.ClientID).Str("type", event.Type).Msg("Webhook delivery failed, giving up")
		return
	}

	log.Debug().Str("client_id", event.ClientID).Str("type", event.Type).Msg("Webhook delivered")
}

func (ns *NotificationService) post(url string, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ns.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
