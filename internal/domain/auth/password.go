package auth

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	// bcrypt ignores everything past this many bytes.
	bcryptMaxInput = 72
)

var commonPasswordPatterns = []string{"password", "123456", "qwerty", "admin", "letmein"}

// PasswordHasher hashes and verifies passwords with bcrypt. Concurrent
// hashing is bounded so CPU-heavy work cannot starve request handling.
type PasswordHasher struct {
	cost    int
	limiter *semaphore.Weighted
}

// NewPasswordHasher builds a hasher for the given bcrypt cost. A
// non-positive concurrency defaults to GOMAXPROCS.
func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = DefaultHashCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{cost: cost, limiter: semaphore.NewWeighted(int64(concurrency))}
}

// Cost reports the work factor applied to new hashes.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.limiter.Release(1)

	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeHashing, "failed to hash password", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is not an error.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.limiter.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperrors.Wrap(apperrors.CodeHashing, "failed to verify password", err)
	}
}

// NeedsRehash reports whether hash was produced with a lower cost than the
// one currently configured.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < h.cost
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeHashing, "password hashing interrupted", err)
	}
	if err := h.limiter.Acquire(ctx, 1); err != nil {
		return apperrors.Wrap(apperrors.CodeHashing, "password hashing interrupted", err)
	}
	return nil
}

// Truncation keeps hashes written by earlier deployments verifiable.
func bcryptInput(password string) []byte {
	raw := []byte(password)
	if len(raw) > bcryptMaxInput {
		raw = raw[:bcryptMaxInput]
	}
	return raw
}

// StrengthResult lists every rule a password breaks.
type StrengthResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

// ValidateStrength checks all password rules and reports every violation.
func ValidateStrength(password string) StrengthResult {
	violations := make([]string, 0, 4)

	length := utf8.RuneCountInString(password)
	if length < minPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}
	if length > maxPasswordLength {
		violations = append(violations, "Password must be less than 128 characters long")
	}
	if !strings.ContainsFunc(password, isASCIILower) {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(password, isASCIIUpper) {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, isASCIIDigit) {
		violations = append(violations, "Password must contain at least one number")
	}

	lowered := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lowered, pattern) {
			violations = append(violations, "Password contains common patterns and is not secure")
			break
		}
	}

	return StrengthResult{Valid: len(violations) == 0, Violations: violations}
}

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
