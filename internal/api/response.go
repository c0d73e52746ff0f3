package api

import (
	"time"

	"github.com/addrgate/addrgate/internal/config"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request id middleware stores the per-request id.
const RequestIDKey = "request_id"

type Meta struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

type SuccessEnvelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Data writes the uniform success envelope.
func Data(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessEnvelope{
		Data: data,
		Meta: Meta{
			Version:   config.Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: c.GetString(RequestIDKey),
		},
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, status int, code string, message string) {
	c.JSON(status, ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorWithDetails writes the uniform error envelope with extra detail.
func ErrorWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
