package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/repository"
	"github.com/authform/authform/internal/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("Please fill out all fields.")
	ErrInvalidEmail       = errors.New("Please enter a valid email address for sign up.")
	ErrInvalidCredentials = errors.New("Invalid username/email or password.")
	ErrUserExists         = errors.New("Email or username already exists.")
	ErrFederatedLogin     = errors.New("Google login failed. Please try again.")
	ErrSessionNotFound    = errors.New("session not found")
)

type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "\n")
}

type LockedError struct {
	Minutes    int
	JustLocked bool
}

func (e *LockedError) Error() string {
	if e.JustLocked {
		return fmt.Sprintf("Account locked for %d minutes due to too many failed attempts.", e.Minutes)
	}
	return fmt.Sprintf("Account is locked. Please try again in %d minutes.", e.Minutes)
}

// IdentityVerifier checks an ID token issued by a third party identity provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (config.Claims, error)
}

type LoginRequest struct {
	Identifier string
	Password   string
}

type SessionData struct {
	Username string
	Email    string
	Name     string
	Picture  string
	Provider string
}

type AuthServiceConfig struct {
	SessionExpiry int
	BcryptCost    int
	Now           func() time.Time
}

type AuthService struct {
	config   AuthServiceConfig
	lockout  *LockoutService
	identity IdentityVerifier
	queries  *repository.Queries
}

func NewAuthService(config AuthServiceConfig, lockout *LockoutService, identity IdentityVerifier, queries *repository.Queries) *AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &AuthService{
		config:   config,
		lockout:  lockout,
		identity: identity,
		queries:  queries,
	}
}

func (auth *AuthService) Login(ctx context.Context, req LoginRequest) (repository.User, error) {
	identifier := strings.TrimSpace(req.Identifier)
	password := strings.TrimSpace(req.Password)

	if identifier == "" || password == "" {
		return repository.User{}, ErrMissingFields
	}

	locked, minutes, err := auth.lockout.IsAccountLocked(ctx, identifier)

	if err != nil {
		return repository.User{}, fmt.Errorf("failed to check lockout: %w", err)
	}

	if locked {
		log.Warn().Str("identifier", identifier).Int("minutes", minutes).Msg("Identifier is locked, skipping credential check")
		return repository.User{}, &LockedError{Minutes: minutes}
	}

	user, err := auth.SearchUser(ctx, identifier)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return repository.User{}, fmt.Errorf("failed to search user: %w", err)
	}

	if err == nil && auth.CheckPassword(user, password) {
		if _, err := auth.lockout.RecordLoginAttempt(ctx, identifier, true); err != nil {
			log.Warn().Err(err).Str("identifier", identifier).Msg("Failed to reset login attempts")
		}
		auth.upgradeLegacyHash(ctx, user, password)
		log.Debug().Str("username", user.Username).Msg("Login successful")
		return user, nil
	}

	justLocked, err := auth.lockout.RecordLoginAttempt(ctx, identifier, false)

	if err != nil {
		return repository.User{}, fmt.Errorf("failed to record login attempt: %w", err)
	}

	if justLocked {
		return repository.User{}, &LockedError{Minutes: auth.lockout.LockoutMinutes(), JustLocked: true}
	}

	return repository.User{}, ErrInvalidCredentials
}

// SearchUser looks the identifier up by email when it is one, by username otherwise.
func (auth *AuthService) SearchUser(ctx context.Context, identifier string) (repository.User, error) {
	if utils.IsValidEmail(identifier) {
		log.Debug().Str("email", identifier).Msg("Searching user by email")
		return auth.queries.GetUserByEmail(ctx, identifier)
	}
	log.Debug().Str("username", identifier).Msg("Searching user by username")
	return auth.queries.GetUserByUsername(ctx, identifier)
}

func (auth *AuthService) SignUp(ctx context.Context, identifier string, password string) (repository.User, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)

	if identifier == "" || password == "" {
		return repository.User{}, ErrMissingFields
	}

	if !utils.IsValidEmail(identifier) {
		return repository.User{}, ErrInvalidEmail
	}

	return auth.RegisterUser(ctx, utils.EmailLocalPart(identifier), identifier, password)
}

// RegisterUser validates and stores a new user. The insert is atomic, a
// taken username or email yields ErrUserExists.
func (auth *AuthService) RegisterUser(ctx context.Context, username string, email string, password string) (repository.User, error) {
	if !utils.IsValidEmail(email) {
		return repository.User{}, ErrInvalidEmail
	}

	if violations := utils.ValidateCredentials(username, password); len(violations) > 0 {
		return repository.User{}, &ValidationError{Violations: violations}
	}

	hash, err := auth.HashPassword(password)

	if err != nil {
		return repository.User{}, err
	}

	params := repository.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    auth.config.Now().UnixMilli(),
	}

	created, err := auth.queries.CreateUserIfAbsent(ctx, params)

	if err != nil {
		return repository.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	if !created {
		log.Debug().Str("username", username).Str("email", email).Msg("Username or email already taken")
		return repository.User{}, ErrUserExists
	}

	log.Info().Str("username", username).Msg("User created")

	return repository.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
	}, nil
}

// ImportLegacyUsers stores users exported from the browser store as is. Their
// SHA-256 hashes are replaced with bcrypt on the first successful login.
func (auth *AuthService) ImportLegacyUsers(ctx context.Context, users []utils.LegacyUser) (int, error) {
	imported := 0

	for _, user := range users {
		created, err := auth.queries.CreateUserIfAbsent(ctx, repository.CreateUserParams{
			Username:     user.Username,
			Email:        user.Email,
			PasswordHash: user.Password,
			CreatedAt:    auth.config.Now().UnixMilli(),
		})

		if err != nil {
			return imported, fmt.Errorf("failed to import user %s: %w", user.Username, err)
		}

		if !created {
			log.Warn().Str("username", user.Username).Str("email", user.Email).Msg("Skipping user, username or email already exists")
			continue
		}

		imported++
	}

	return imported, nil
}

func (auth *AuthService) FederatedLogin(ctx context.Context, credential string) (config.Claims, error) {
	if auth.identity == nil {
		log.Warn().Msg("Federated login attempted but no identity provider is configured")
		return config.Claims{}, ErrFederatedLogin
	}

	if strings.TrimSpace(credential) == "" {
		log.Warn().Msg("Federated login attempted without a credential")
		return config.Claims{}, ErrFederatedLogin
	}

	claims, err := auth.identity.VerifyIDToken(ctx, credential)

	if err != nil {
		log.Error().Err(err).Msg("Failed to verify ID token")
		return config.Claims{}, ErrFederatedLogin
	}

	if claims.Email == "" {
		log.Error().Str("sub", claims.Subject).Msg("ID token has no email claim")
		return config.Claims{}, ErrFederatedLogin
	}

	return claims, nil
}

// passwordKey is what bcrypt actually sees: a 44 byte encoding of the
// password digest, since bcrypt refuses inputs over 72 bytes.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (auth *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), auth.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (auth *AuthService) CheckPassword(user repository.User, password string) bool {
	if utils.IsDigest(user.PasswordHash) {
		return utils.DigestEqual(utils.Digest(password), user.PasswordHash)
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(password)) == nil
}

func (auth *AuthService) upgradeLegacyHash(ctx context.Context, user repository.User, password string) {
	if !utils.IsDigest(user.PasswordHash) {
		return
	}

	hash, err := auth.HashPassword(password)

	if err != nil {
		log.Warn().Err(err).Str("username", user.Username).Msg("Failed to upgrade legacy password hash")
		return
	}

	err = auth.queries.UpdateUserPasswordHash(ctx, repository.UpdateUserPasswordHashParams{
		PasswordHash: hash,
		Username:     user.Username,
	})

	if err != nil {
		log.Warn().Err(err).Str("username", user.Username).Msg("Failed to upgrade legacy password hash")
		return
	}

	log.Info().Str("username", user.Username).Msg("Upgraded legacy password hash")
}

// CreateSession stores a new session and returns its token. The session
// referenced by previousToken, if any, is removed first.
func (auth *AuthService) CreateSession(ctx context.Context, data SessionData, previousToken string) (string, error) {
	if previousToken != "" {
		if err := auth.DeleteSession(ctx, previousToken); err != nil {
			return "", err
		}
	}

	token, err := utils.GetRandomString(32)

	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := auth.config.Now()

	_, err = auth.queries.CreateSession(ctx, repository.CreateSessionParams{
		TokenHash: utils.Digest(token),
		Username:  data.Username,
		Email:     data.Email,
		Name:      data.Name,
		Picture:   data.Picture,
		Provider:  data.Provider,
		CreatedAt: now.Unix(),
		Expiry:    now.Add(time.Duration(auth.config.SessionExpiry) * time.Second).Unix(),
	})

	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Debug().Str("username", data.Username).Str("provider", data.Provider).Msg("Session created")

	return token, nil
}

func (auth *AuthService) GetSession(ctx context.Context, token string) (repository.Session, error) {
	if token == "" {
		return repository.Session{}, ErrSessionNotFound
	}

	session, err := auth.queries.GetSession(ctx, utils.Digest(token))

	if errors.Is(err, sql.ErrNoRows) {
		return repository.Session{}, ErrSessionNotFound
	}

	if err != nil {
		return repository.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	if auth.config.Now().Unix() > session.Expiry {
		log.Debug().Str("username", session.Username).Msg("Session expired, deleting")
		if err := auth.queries.DeleteSession(ctx, session.TokenHash); err != nil {
			log.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return repository.Session{}, ErrSessionNotFound
	}

	return session, nil
}

func (auth *AuthService) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := auth.queries.DeleteSession(ctx, utils.Digest(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (auth *AuthService) DeleteExpiredSessions(ctx context.Context) error {
	if err := auth.queries.DeleteExpiredSessions(ctx, auth.config.Now().Unix()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

func (auth *AuthService) LockoutMinutes() int {
	return auth.lockout.LockoutMinutes()
}
