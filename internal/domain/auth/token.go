package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
	"github.com/yanqian/lifeboard/pkg/util"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// TokenService issues and verifies stateless access and refresh tokens.
// Each token class is signed with its own secret.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
	leeway        time.Duration
	now           util.Clock
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(clock util.Clock) TokenOption {
	return func(s *TokenService) {
		if clock != nil {
			s.now = clock
		}
	}
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// NewTokenService validates the secrets and builds the service. Zero TTLs,
// issuer or audience fall back to the package defaults.
func NewTokenService(cfg Config, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.AccessSecret) < MinSecretLength {
		return nil, fmt.Errorf("access token secret must be at least %d characters", MinSecretLength)
	}
	if len(cfg.RefreshSecret) < MinSecretLength {
		return nil, fmt.Errorf("refresh token secret must be at least %d characters", MinSecretLength)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	svc := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		leeway:        cfg.Leeway,
		now:           util.NowUTC,
	}
	if svc.accessTTL <= 0 {
		svc.accessTTL = DefaultAccessTokenTTL
	}
	if svc.refreshTTL <= 0 {
		svc.refreshTTL = DefaultRefreshTokenTTL
	}
	if strings.TrimSpace(svc.issuer) == "" {
		svc.issuer = DefaultIssuer
	}
	if strings.TrimSpace(svc.audience) == "" {
		svc.audience = DefaultAudience
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IssueAccessToken signs a short-lived access token.
func (s *TokenService) IssueAccessToken(userID, email string) (string, error) {
	return s.issue(userID, email, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token.
func (s *TokenService) IssueRefreshToken(userID, email string) (string, error) {
	return s.issue(userID, email, s.refreshSecret, s.refreshTTL)
}

// VerifyAccessToken validates an access token and returns its identity.
func (s *TokenService) VerifyAccessToken(token string) (Identity, error) {
	return s.verify(token, s.accessSecret, tokenKindAccess)
}

// VerifyRefreshToken validates a refresh token and returns its identity.
func (s *TokenService) VerifyRefreshToken(token string) (Identity, error) {
	return s.verify(token, s.refreshSecret, tokenKindRefresh)
}

// PeekExpiry decodes the exp claim without checking the signature. The
// result must never drive an authorization decision.
func (s *TokenService) PeekExpiry(token string) (time.Time, bool) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether the token's exp has passed. Tokens without a
// readable expiry count as expired.
func (s *TokenService) IsExpired(token string) bool {
	expiresAt, ok := s.PeekExpiry(token)
	if !ok {
		return true
	}
	return !s.now().Before(expiresAt)
}

func (s *TokenService) issue(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{s.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errInternal("failed to sign token", err)
	}
	return signed, nil
}

func (s *TokenService) verify(token string, secret []byte, kind string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, kind+" token missing", nil)
	}
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
			return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid "+kind+" token", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, apperrors.Wrap(apperrors.CodeTokenExpired, kind+" token expired", err)
		default:
			return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid "+kind+" token", err)
		}
	}
	if !parsed.Valid || claims.UserID == "" {
		return Identity{}, apperrors.Wrap(apperrors.CodeInvalidToken, "invalid "+kind+" token", nil)
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
