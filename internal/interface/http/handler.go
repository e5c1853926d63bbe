package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/lifeboard/internal/domain/auth"
	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/internal/infra/config"
)

const apiVersion = "1.0.0"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc  auth.Service
	goalsSvc goals.Service
	env      string
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, goalsSvc goals.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:  authSvc,
		goalsSvc: goalsSvc,
		env:      cfg.Env,
		logger:   logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "LifeBoard API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"version":     apiVersion,
	})
}

// Register creates an account and returns its first token pair.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, result, "User registered successfully")
}

// Login exchanges credentials for tokens.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, result, "Login successful")
}

// Refresh mints a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authSvc.Refresh(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, result, "Token refreshed successfully")
}

// Logout always succeeds; the caller may or may not be authenticated.
func (h *Handler) Logout(c *gin.Context) {
	var identity *auth.Identity
	if id, ok := getIdentity(c); ok {
		identity = &id
	}
	if err := h.authSvc.Logout(c.Request.Context(), identity); err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Logout successful")
}

// Profile returns the authenticated user.
func (h *Handler) Profile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	user, err := h.authSvc.Profile(c.Request.Context(), identity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, user, "")
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req auth.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authSvc.ChangePassword(c.Request.Context(), identity, req); err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Password changed successfully")
}

// bindJSON treats an empty body as {} so the service reports missing fields.
func bindJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "Invalid JSON payload", err))
		return false
	}
	return true
}
