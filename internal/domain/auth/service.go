package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
	"github.com/yanqian/lifeboard/pkg/validation"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)
	Refresh(ctx context.Context, req RefreshRequest) (RefreshResult, error)
	Logout(ctx context.Context, identity *Identity) error
	ChangePassword(ctx context.Context, identity Identity, req ChangePasswordRequest) error
	Profile(ctx context.Context, identity Identity) (UserView, error)
}

type service struct {
	repo      Repository
	hasher    *PasswordHasher
	tokens    *TokenService
	validator *validation.Validator
	logger    *slog.Logger

	decoyMu   sync.Mutex
	decoyHash string
}

var requestMessages = validation.Messages{
	"email.required":           "Email is required",
	"email.email":              "Invalid email format",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 8 characters",
	"refreshToken.required":    "Refresh token is required",
	"currentPassword.required": "Current password is required",
	"newPassword.required":     "New password is required",
	"newPassword.min":          "New password must be at least 8 characters",
}

// NewService constructs a Service instance.
func NewService(repo Repository, hasher *PasswordHasher, tokens *TokenService, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validation.New(),
		logger:    logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	if err := s.validate(req); err != nil {
		return AuthResult{}, err
	}
	if strength := ValidateStrength(req.Password); !strength.Valid {
		return AuthResult{}, apperrors.Validation(strength.Violations)
	}
	email := normalizeEmail(req.Email)
	_, exists, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, errInternal("failed to check user", err)
	}
	if exists {
		return AuthResult{}, apperrors.Wrap(apperrors.CodeConflict, "Email already exists", nil)
	}
	hashed, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return AuthResult{}, err
	}
	user, err := s.repo.Create(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return AuthResult{}, apperrors.Wrap(apperrors.CodeConflict, "Email already exists", err)
		}
		return AuthResult{}, errInternal("failed to create user", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return s.buildAuthResult(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	if err := s.validate(req); err != nil {
		return AuthResult{}, err
	}
	user, found, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return AuthResult{}, errInternal("failed to fetch user", err)
	}
	if !found {
		// Spend the same bcrypt work as a real check so response timing
		// does not reveal whether the email is registered.
		_, _ = s.hasher.Verify(ctx, req.Password, s.decoy())
		return AuthResult{}, errInvalidCredentials()
	}
	ok, err := s.hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, errInvalidCredentials()
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}
	return s.buildAuthResult(user)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (RefreshResult, error) {
	if err := s.validate(req); err != nil {
		return RefreshResult{}, err
	}
	identity, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return RefreshResult{}, err
	}
	user, found, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return RefreshResult{}, errInternal("failed to load user", err)
	}
	if !found {
		// Same answer as a bad token: account existence is never revealed.
		return RefreshResult{}, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid refresh token", nil)
	}
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{AccessToken: access}, nil
}

// Logout has nothing to revoke; clients drop their tokens.
func (s *service) Logout(_ context.Context, identity *Identity) error {
	if identity != nil {
		s.logger.Debug("user logged out", "user_id", identity.UserID)
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, identity Identity, req ChangePasswordRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	user, found, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return errInternal("failed to load user", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "User not found", nil)
	}
	ok, err := s.hasher.Verify(ctx, req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Wrap(apperrors.CodeUnauthorized, "Current password is incorrect", nil)
	}
	if strength := ValidateStrength(req.NewPassword); !strength.Valid {
		return apperrors.Validation(strength.Violations)
	}
	hashed, err := s.hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperrors.Wrap(apperrors.CodeNotFound, "User not found", err)
		}
		return errInternal("failed to update password", err)
	}
	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (s *service) Profile(ctx context.Context, identity Identity) (UserView, error) {
	user, found, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return UserView{}, errInternal("failed to load profile", err)
	}
	if !found {
		return UserView{}, apperrors.Wrap(apperrors.CodeNotFound, "User not found", nil)
	}
	return toView(user), nil
}

func (s *service) buildAuthResult(user User) (AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User:   toView(user),
		Tokens: Tokens{AccessToken: access, RefreshToken: refresh},
	}, nil
}

func (s *service) upgradeHash(ctx context.Context, userID, password string) {
	hashed, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", userID, "error", err)
		return
	}
	if _, err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		s.logger.Warn("failed to store rehashed password", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "user_id", userID, "cost", s.hasher.Cost())
}

// decoy builds the timing hash on first use and retries until one exists.
// It ignores the request context so a cancelled login cannot leave it empty.
func (s *service) decoy() string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyHash != "" {
		return s.decoyHash
	}
	hashed, err := s.hasher.Hash(context.Background(), "decoy-password-for-timing")
	if err != nil {
		s.logger.Warn("failed to build decoy hash", "error", err)
		return ""
	}
	s.decoyHash = hashed
	return s.decoyHash
}

func (s *service) validate(req any) error {
	violations, err := s.validator.Violations(req, requestMessages)
	if err != nil {
		return errInternal("failed to validate request", err)
	}
	if len(violations) > 0 {
		return apperrors.Validation(violations)
	}
	return nil
}

func toView(user User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		LastLogin: user.LastLogin,
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
