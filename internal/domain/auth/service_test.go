package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
)

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	repo := newMemoryRepo()
	svc, tokens := newTestService(t, repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "A@B.com", Password: "Abcdef12"})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", registered.User.Email)
	require.NotEmpty(t, registered.User.ID)
	require.NotEmpty(t, registered.Tokens.AccessToken)
	require.NotEmpty(t, registered.Tokens.RefreshToken)

	stored := repo.users[registered.User.ID]
	require.NotEqual(t, "Abcdef12", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, loggedIn.User.ID)
	require.Equal(t, 1, repo.lastLoginCalls)

	identity, err := tokens.VerifyAccessToken(loggedIn.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, Identity{UserID: registered.User.ID, Email: "a@b.com"}, identity)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: loggedIn.Tokens.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, loggedIn.Tokens.AccessToken, refreshed.AccessToken)
	_, err = tokens.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "A@b.com", Password: "Abcdef12"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	require.Len(t, repo.users, 1)
}

func TestService_RegisterRaceReportsConflict(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = ErrEmailExists
	svc, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestService_RegisterValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "short"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Equal(t, []string{"Invalid email format", "Password must be at least 8 characters"}, appErr.Violations)
	require.Zero(t, repo.lookups)
}

func TestService_RegisterWeakPasswordSkipsStorage(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "password1"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Equal(t, []string{
		"Password must contain at least one uppercase letter",
		"Password contains common patterns and is not secure",
	}, appErr.Violations)
	require.Zero(t, repo.lookups)
	require.Empty(t, repo.users)
}

func TestService_RegisterHashFailureCreatesNothing(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeHashing))
	require.Empty(t, repo.users)
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Abcdef13"})
	_, unknownEmail := svc.Login(ctx, LoginRequest{Email: "nobody@b.com", Password: "Abcdef12"})

	require.True(t, apperrors.IsCode(wrongPassword, apperrors.CodeInvalidCredentials))
	require.True(t, apperrors.IsCode(unknownEmail, apperrors.CodeInvalidCredentials))
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	require.Equal(t, "Invalid email or password", wrongPassword.Error())
	require.Zero(t, repo.lastLoginCalls)
}

func TestService_DecoyHashSurvivesCancelledLogin(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Login(cancelled, LoginRequest{Email: "ghost@x.com", Password: "Whatever1"})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@x.com", Password: "Whatever1"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))

	decoy := svc.(*service).decoy()
	require.NotEmpty(t, decoy)
	_, err = bcrypt.Cost([]byte(decoy))
	require.NoError(t, err)
}

func TestService_LoginValidation(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())

	_, err := svc.Login(context.Background(), LoginRequest{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, []string{"Email is required", "Password is required"}, appErr.Violations)
}

func TestService_LoginSurvivesLastLoginFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)
	repo.lastLoginErr = errors.New("database unavailable")

	result, err := svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Tokens.AccessToken)
}

func TestService_LoginUpgradesWeakHash(t *testing.T) {
	repo := newMemoryRepo()
	weak, err := bcrypt.GenerateFromPassword([]byte("Abcdef12"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), "a@b.com", string(weak))
	require.NoError(t, err)

	tokens, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)
	svc := NewService(repo, NewPasswordHasher(bcrypt.MinCost+1, 1), tokens, newTestLogger())

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(repo.users[user.ID].PasswordHash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost+1, cost)
}

func TestService_RefreshRejectsAccessToken(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: registered.Tokens.AccessToken})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RefreshForDeletedUser(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)
	delete(repo.users, registered.User.ID)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: registered.Tokens.RefreshToken})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RefreshValidation(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())

	_, err := svc.Refresh(context.Background(), RefreshRequest{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, []string{"Refresh token is required"}, appErr.Violations)
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())

	require.NoError(t, svc.Logout(context.Background(), nil))
	require.NoError(t, svc.Logout(context.Background(), &Identity{UserID: "u1"}))
}

func TestService_ChangePassword(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)
	identity := Identity{UserID: registered.User.ID, Email: registered.User.Email}

	err = svc.ChangePassword(ctx, identity, ChangePasswordRequest{CurrentPassword: "Wrong1234", NewPassword: "Ghijkl34"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	err = svc.ChangePassword(ctx, identity, ChangePasswordRequest{CurrentPassword: "Abcdef12", NewPassword: "letmein99"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Contains(t, appErr.Violations, "Password contains common patterns and is not secure")

	require.NoError(t, svc.ChangePassword(ctx, identity, ChangePasswordRequest{CurrentPassword: "Abcdef12", NewPassword: "Ghijkl34"}))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
	_, err = svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Ghijkl34"})
	require.NoError(t, err)
}

func TestService_ChangePasswordValidationAndMissingUser(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())
	ctx := context.Background()

	err := svc.ChangePassword(ctx, Identity{UserID: "missing"}, ChangePasswordRequest{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, []string{"Current password is required", "New password is required"}, appErr.Violations)

	err = svc.ChangePassword(ctx, Identity{UserID: "missing"}, ChangePasswordRequest{CurrentPassword: "Abcdef12", NewPassword: "Ghijkl34"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestService_Profile(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "Abcdef12"})
	require.NoError(t, err)

	view, err := svc.Profile(ctx, Identity{UserID: registered.User.ID})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", view.Email)

	_, err = svc.Profile(ctx, Identity{UserID: "missing"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func newTestService(t *testing.T, repo Repository) (Service, *TokenService) {
	t.Helper()
	tokens, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)
	return NewService(repo, NewPasswordHasher(bcrypt.MinCost, 2), tokens, newTestLogger()), tokens
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	mu             sync.Mutex
	users          map[string]User
	seq            int
	lookups        int
	lastLoginCalls int
	createErr      error
	lastLoginErr   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (m *memoryRepo) Create(_ context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return User{}, m.createErr
	}
	m.seq++
	now := time.Now().UTC()
	user := User{
		ID:           "user-" + strconv.Itoa(m.seq),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	m.users[id] = user
	return user, nil
}

func (m *memoryRepo) UpdateLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLoginCalls++
	if m.lastLoginErr != nil {
		return m.lastLoginErr
	}
	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	m.users[id] = user
	return nil
}
