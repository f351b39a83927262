package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/repository"
	"github.com/authform/authform/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Services struct {
	authService           *service.AuthService
	lockoutService        *service.LockoutService
	googleIdentityService *service.GoogleIdentityService
	googleOAuthService    *service.GoogleOAuthService
}

func (app *BootstrapApp) initServices(db *sql.DB) (Services, error) {
	services := Services{}

	store, err := app.setupAttemptStore()

	if err != nil {
		return Services{}, err
	}

	lockoutService := service.NewLockoutService(service.LockoutServiceConfig{
		MaxRetries: app.config.Auth.LoginMaxRetries,
		Timeout:    time.Duration(app.config.Auth.LoginTimeout) * time.Second,
	}, store)

	services.lockoutService = lockoutService

	// Left as a nil interface when Google is not configured
	var identity service.IdentityVerifier

	if app.config.Google.ClientID != "" {
		certsURL := app.config.Google.CertsURL

		if certsURL == "" {
			certsURL = config.GoogleCertsURL
		}

		googleIdentityService := service.NewGoogleIdentityService(service.GoogleIdentityServiceConfig{
			ClientID: app.config.Google.ClientID,
			CertsURL: certsURL,
			Issuers:  config.GoogleIssuers,
		})

		err := googleIdentityService.Init()

		if err != nil {
			return Services{}, err
		}

		services.googleIdentityService = googleIdentityService
		identity = googleIdentityService
		log.Info().Msg("Google sign-in enabled")
	}

	if app.config.Google.ClientID != "" && app.context.googleClientSecret != "" {
		googleOAuthService := service.NewGoogleOAuthService(service.GoogleOAuthServiceConfig{
			ClientID:     app.config.Google.ClientID,
			ClientSecret: app.context.googleClientSecret,
			RedirectURL:  app.context.googleRedirectURL,
		})

		err := googleOAuthService.Init()

		if err != nil {
			return Services{}, err
		}

		services.googleOAuthService = googleOAuthService
		log.Info().Msg("Google redirect flow enabled")
	}

	authService := service.NewAuthService(service.AuthServiceConfig{
		SessionExpiry: app.config.Auth.SessionExpiry,
	}, lockoutService, identity, repository.New(db))

	services.authService = authService

	return services, nil
}

func (app *BootstrapApp) setupAttemptStore() (service.LoginAttemptStore, error) {
	if app.config.Redis.Address == "" {
		log.Debug().Msg("Keeping login attempts in memory")
		return service.NewMemoryAttemptStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.config.Redis.Address,
		Password: app.config.Redis.Password,
		DB:       app.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("address", app.config.Redis.Address).Msg("Keeping login attempts in redis")

	return service.NewRedisAttemptStore(client, "authform:"), nil
}
