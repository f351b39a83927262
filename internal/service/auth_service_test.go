package service_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/authform/authform/internal/bootstrap"
	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/repository"
	"github.com/authform/authform/internal/service"
	"github.com/authform/authform/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gotest.tools/v3/assert"
)

type fakeVerifier struct {
	claims config.Claims
	err    error
}

func (v *fakeVerifier) VerifyIDToken(_ context.Context, _ string) (config.Claims, error) {
	return v.claims, v.err
}

func setupAuthService(t *testing.T, clock *fakeClock, identity service.IdentityVerifier) (*service.AuthService, *repository.Queries) {
	db, err := bootstrap.SetupDatabase(":memory:")
	assert.NilError(t, err)
	t.Cleanup(func() { db.Close() })

	queries := repository.New(db)

	lockout := service.NewLockoutService(service.LockoutServiceConfig{
		MaxRetries: 10,
		Timeout:    5 * time.Minute,
		Now:        clock.Now,
	}, service.NewMemoryAttemptStore())

	auth := service.NewAuthService(service.AuthServiceConfig{
		SessionExpiry: 3600,
		BcryptCost:    bcrypt.MinCost,
		Now:           clock.Now,
	}, lockout, identity, queries)

	return auth, queries
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	auth, queries := setupAuthService(t, newClock(), nil)

	user, err := auth.SignUp(ctx, "new@x.com", "Abcdef12")
	assert.NilError(t, err)
	assert.Equal(t, "new", user.Username)
	assert.Equal(t, "new@x.com", user.Email)

	stored, err := queries.GetUserByEmail(ctx, "new@x.com")
	assert.NilError(t, err)
	assert.Equal(t, "new", stored.Username)
	assert.Assert(t, stored.PasswordHash != "Abcdef12")
	assert.Assert(t, !strings.Contains(stored.PasswordHash, "Abcdef12"))
	assert.Assert(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	assert.Assert(t, auth.CheckPassword(stored, "Abcdef12"))
}

func TestSignUpLongPassword(t *testing.T) {
	ctx := context.Background()
	auth, queries := setupAuthService(t, newClock(), nil)

	password := "Abcdef12" + strings.Repeat("x", 70)

	_, err := auth.SignUp(ctx, "long@x.com", password)
	assert.NilError(t, err)

	user, err := auth.Login(ctx, service.LoginRequest{Identifier: "long", Password: password})
	assert.NilError(t, err)
	assert.Equal(t, "long@x.com", user.Email)

	// Only the tail differs, past the 72 bytes bcrypt would read
	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "long", Password: password[:77] + "y"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	stored, err := queries.GetUserByUsername(ctx, "long")
	assert.NilError(t, err)
	assert.Assert(t, auth.CheckPassword(stored, password))
}

func TestSignUpErrors(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuthService(t, newClock(), nil)

	_, err := auth.SignUp(ctx, "  ", "Abcdef12")
	assert.ErrorIs(t, err, service.ErrMissingFields)

	_, err = auth.SignUp(ctx, "new@x.com", "")
	assert.ErrorIs(t, err, service.ErrMissingFields)

	_, err = auth.SignUp(ctx, "newuser", "Abcdef12")
	assert.ErrorIs(t, err, service.ErrInvalidEmail)

	_, err = auth.SignUp(ctx, "ab@x.com", "short")
	var validation *service.ValidationError
	assert.Assert(t, errors.As(err, &validation))
	assert.DeepEqual(t, []string{
		"Username must be at least 3 characters long",
		"Password must be at least 8 characters long",
		"Password must contain at least one uppercase letter",
		"Password must contain at least one number",
	}, validation.Violations)
	assert.Equal(t, strings.Join(validation.Violations, "\n"), err.Error())
}

func TestSignUpDuplicate(t *testing.T) {
	ctx := context.Background()
	auth, queries := setupAuthService(t, newClock(), nil)

	_, err := auth.SignUp(ctx, "new@x.com", "Abcdef12")
	assert.NilError(t, err)

	// Same email
	_, err = auth.SignUp(ctx, "new@x.com", "Abcdef12")
	assert.ErrorIs(t, err, service.ErrUserExists)

	// Local part collides with an existing username
	_, err = auth.SignUp(ctx, "new@other.org", "Abcdef12")
	assert.ErrorIs(t, err, service.ErrUserExists)

	_, err = queries.GetUserByEmail(ctx, "new@other.org")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuthService(t, newClock(), nil)

	_, err := auth.SignUp(ctx, "alice@example.com", "Abcdef12")
	assert.NilError(t, err)

	// By email
	user, err := auth.Login(ctx, service.LoginRequest{Identifier: "alice@example.com", Password: "Abcdef12"})
	assert.NilError(t, err)
	assert.Equal(t, "alice", user.Username)

	// By username, surrounding whitespace is ignored
	user, err = auth.Login(ctx, service.LoginRequest{Identifier: " alice ", Password: "Abcdef12 "})
	assert.NilError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	// Lookups are case sensitive
	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "Alice", Password: "Abcdef12"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "wrongpass"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "nobody", Password: "Abcdef12"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: ""})
	assert.ErrorIs(t, err, service.ErrMissingFields)
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	auth, _ := setupAuthService(t, clock, nil)

	_, err := auth.SignUp(ctx, "alice@example.com", "Abcdef12")
	assert.NilError(t, err)

	for range 9 {
		_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "wrongpass"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	}

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "wrongpass"})
	var locked *service.LockedError
	assert.Assert(t, errors.As(err, &locked))
	assert.Assert(t, locked.JustLocked)
	assert.Equal(t, "Account locked for 5 minutes due to too many failed attempts.", err.Error())

	// Correct credentials are not even compared while locked
	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "Abcdef12"})
	assert.Assert(t, errors.As(err, &locked))
	assert.Assert(t, !locked.JustLocked)
	assert.Equal(t, "Account is locked. Please try again in 5 minutes.", err.Error())

	clock.Advance(5 * time.Minute)

	user, err := auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "Abcdef12"})
	assert.NilError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Counter starts from zero again
	for range 9 {
		_, err = auth.Login(ctx, service.LoginRequest{Identifier: "alice", Password: "wrongpass"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	}
}

func TestLegacyHashUpgrade(t *testing.T) {
	ctx := context.Background()
	auth, queries := setupAuthService(t, newClock(), nil)

	imported, err := auth.ImportLegacyUsers(ctx, []utils.LegacyUser{
		{Username: "legacy", Email: "legacy@example.com", Password: utils.Digest("Abcdef12")},
		{Username: "legacy", Email: "other@example.com", Password: utils.Digest("Abcdef12")},
	})
	assert.NilError(t, err)
	assert.Equal(t, 1, imported)

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "legacy", Password: "abcdef12"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "legacy@example.com", Password: "Abcdef12"})
	assert.NilError(t, err)

	stored, err := queries.GetUserByUsername(ctx, "legacy")
	assert.NilError(t, err)
	assert.Assert(t, !utils.IsDigest(stored.PasswordHash))
	assert.Assert(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	assert.Assert(t, auth.CheckPassword(stored, "Abcdef12"))

	_, err = auth.Login(ctx, service.LoginRequest{Identifier: "legacy", Password: "Abcdef12"})
	assert.NilError(t, err)
}

func TestHashPassword(t *testing.T) {
	auth, _ := setupAuthService(t, newClock(), nil)

	first, err := auth.HashPassword("secret")
	assert.NilError(t, err)
	second, err := auth.HashPassword("secret")
	assert.NilError(t, err)

	assert.Assert(t, first != "secret")
	assert.Assert(t, first != second)
	assert.Assert(t, auth.CheckPassword(repository.User{PasswordHash: first}, "secret"))
	assert.Assert(t, !auth.CheckPassword(repository.User{PasswordHash: first}, "Secret"))
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	auth, queries := setupAuthService(t, clock, nil)

	data := service.SessionData{
		Username: "alice",
		Email:    "alice@example.com",
		Name:     "Alice",
		Provider: "local",
	}

	token, err := auth.CreateSession(ctx, data, "")
	assert.NilError(t, err)
	assert.Assert(t, token != "")

	session, err := auth.GetSession(ctx, token)
	assert.NilError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, utils.Digest(token), session.TokenHash)

	// Logging in again from the same browser replaces the session
	next, err := auth.CreateSession(ctx, data, token)
	assert.NilError(t, err)
	assert.Assert(t, next != token)

	_, err = auth.GetSession(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	count, err := queries.CountSessionsByUsername(ctx, "alice")
	assert.NilError(t, err)
	assert.Equal(t, int64(1), count)

	assert.NilError(t, auth.DeleteSession(ctx, next))
	assert.NilError(t, auth.DeleteSession(ctx, next))

	_, err = auth.GetSession(ctx, next)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	auth, queries := setupAuthService(t, clock, nil)

	first, err := auth.CreateSession(ctx, service.SessionData{Username: "alice", Provider: "local"}, "")
	assert.NilError(t, err)

	_, err = auth.CreateSession(ctx, service.SessionData{Username: "bob", Provider: "local"}, "")
	assert.NilError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = auth.GetSession(ctx, first)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	count, err := queries.CountSessionsByUsername(ctx, "alice")
	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)

	assert.NilError(t, auth.DeleteExpiredSessions(ctx))

	count, err = queries.CountSessionsByUsername(ctx, "bob")
	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFederatedLogin(t *testing.T) {
	ctx := context.Background()

	auth, _ := setupAuthService(t, newClock(), nil)
	_, err := auth.FederatedLogin(ctx, "token")
	assert.ErrorIs(t, err, service.ErrFederatedLogin)

	verifier := &fakeVerifier{
		claims: config.Claims{
			Subject: "1234",
			Email:   "alice@gmail.com",
			Name:    "Alice",
		},
	}

	auth, _ = setupAuthService(t, newClock(), verifier)

	claims, err := auth.FederatedLogin(ctx, "token")
	assert.NilError(t, err)
	assert.Equal(t, "alice@gmail.com", claims.Email)

	_, err = auth.FederatedLogin(ctx, "")
	assert.ErrorIs(t, err, service.ErrFederatedLogin)

	verifier.claims.Email = ""
	_, err = auth.FederatedLogin(ctx, "token")
	assert.ErrorIs(t, err, service.ErrFederatedLogin)

	verifier.err = errors.New("bad signature")
	_, err = auth.FederatedLogin(ctx, "token")
	assert.ErrorIs(t, err, service.ErrFederatedLogin)
}
