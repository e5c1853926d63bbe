package http

import (
	"time"

	"github.com/gin-gonic/gin"
)

type meta struct {
	Timestamp string `json:"timestamp"`
}

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Meta    meta   `json:"meta"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
	Meta    meta      `json:"meta"`
}

type errorBody struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, successEnvelope{Success: true, Data: data, Message: message, Meta: newMeta()})
}

func respondError(c *gin.Context, httpErr *HTTPError) {
	c.JSON(httpErr.Status, errorEnvelope{
		Error: errorBody{
			Code:       httpErr.Code,
			Message:    httpErr.Message,
			Violations: httpErr.Violations,
		},
		Meta: newMeta(),
	})
}

func newMeta() meta {
	return meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}
