package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
)

const genericServerMessage = "Internal server error"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status     int
	Code       string
	Message    string
	Violations []string
	Err        error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if appErr, ok := apperrors.As(err); ok {
		status := statusForCode(appErr.Code)
		message := appErr.Message
		if status >= http.StatusInternalServerError {
			message = genericServerMessage
		}
		return &HTTPError{
			Status:     status,
			Code:       appErr.Code,
			Message:    message,
			Violations: appErr.Violations,
			Err:        err,
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: genericServerMessage,
		Err:     err,
	}
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeUnauthorized, apperrors.CodeInvalidCredentials,
		apperrors.CodeInvalidToken, apperrors.CodeTokenExpired:
		return http.StatusUnauthorized
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
