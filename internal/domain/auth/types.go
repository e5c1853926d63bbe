package auth

import "time"

// Defaults for the token and hashing configuration.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultIssuer          = "lifeboard-api"
	DefaultAudience        = "lifeboard-client"
	DefaultHashCost        = 12
	MinSecretLength        = 32
)

// Config drives authentication behavior.
type Config struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
	// Leeway tolerated on exp checks. Zero unless configured.
	Leeway          time.Duration
	HashCost        int
	HashConcurrency int
}

// User represents a persisted account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Identity is the verified caller attached to a request.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ChangePasswordRequest carries the current and desired password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Tokens is the pair handed out on register and login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User   UserView `json:"user"`
	Tokens Tokens   `json:"tokens"`
}

// RefreshResult carries a freshly minted access token.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
}
