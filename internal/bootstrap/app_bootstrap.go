package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type BootstrapApp struct {
	config  config.Config
	context struct {
		uuid                 string
		cookieDomain         string
		sessionCookieName    string
		rememberedCookieName string
		csrfCookieName       string
		googleClientSecret   string
		googleRedirectURL    string
	}
	db       *sql.DB
	services Services
	router   *gin.Engine
}

func NewBootstrapApp(config config.Config) *BootstrapApp {
	return &BootstrapApp{
		config: config,
	}
}

// Setup prepares the database, services and routes without serving.
func (app *BootstrapApp) Setup() error {
	// Get cookie domain
	cookieDomain, err := utils.GetCookieDomain(app.config.AppURL)

	if err != nil {
		return err
	}

	app.context.cookieDomain = cookieDomain

	// Cookie names
	appUrl, _ := url.Parse(app.config.AppURL) // Already validated
	app.context.uuid = utils.GenerateUUID(appUrl.Hostname())
	cookieId := utils.GenerateIdentifier(appUrl.Hostname())
	app.context.sessionCookieName = fmt.Sprintf("%s-%s", config.SessionCookieName, cookieId)
	app.context.rememberedCookieName = fmt.Sprintf("%s-%s", config.RememberedCookieName, cookieId)
	app.context.csrfCookieName = fmt.Sprintf("%s-%s", config.CSRFCookieName, cookieId)

	// Google
	app.context.googleClientSecret = utils.GetSecret(app.config.Google.ClientSecret, app.config.Google.ClientSecretFile)
	app.context.googleRedirectURL = app.config.Google.RedirectURL

	if app.context.googleRedirectURL == "" {
		app.context.googleRedirectURL = app.config.AppURL + "/api/oauth/callback/google"
	}

	if app.context.googleClientSecret != "" && app.config.Google.ClientID == "" {
		return errors.New("google client secret is set but the client id is missing")
	}

	// Landing page
	if app.config.Auth.LandingPath == "" {
		app.config.Auth.LandingPath = "/home"
	}

	if !strings.HasPrefix(app.config.Auth.LandingPath, "/") || app.config.Auth.LandingPath == "/" {
		return fmt.Errorf("invalid landing path %q, it must start with / and cannot be the form page", app.config.Auth.LandingPath)
	}

	for _, reserved := range []string{"/api", "/resources"} {
		if app.config.Auth.LandingPath == reserved || strings.HasPrefix(app.config.Auth.LandingPath, reserved+"/") {
			return fmt.Errorf("invalid landing path %q, %s is reserved", app.config.Auth.LandingPath, reserved)
		}
	}

	// Dumps
	log.Trace().Str("uuid", app.context.uuid).Msg("Instance id")
	log.Trace().Str("cookieDomain", app.context.cookieDomain).Msg("Cookie domain")
	log.Trace().Str("sessionCookieName", app.context.sessionCookieName).Msg("Session cookie name")
	log.Trace().Str("rememberedCookieName", app.context.rememberedCookieName).Msg("Remembered user cookie name")
	log.Trace().Str("csrfCookieName", app.context.csrfCookieName).Msg("CSRF cookie name")

	// Database
	db, err := SetupDatabase(app.config.DatabasePath)

	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}

	app.db = db

	// Services
	services, err := app.initServices(db)

	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	app.services = services

	// Setup router
	router, err := app.setupRouter()

	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	app.router = router

	return nil
}

// Start runs the background routines and serves until the listener fails.
func (app *BootstrapApp) Start() error {
	if app.router == nil {
		return errors.New("app is not set up")
	}

	// Start db cleanup routine
	log.Debug().Msg("Starting database cleanup routine")
	go app.dbCleanup()

	// If we have an socket path, bind to it
	if app.config.Server.SocketPath != "" {
		if _, err := os.Stat(app.config.Server.SocketPath); err == nil {
			log.Info().Msgf("Removing existing socket file %s", app.config.Server.SocketPath)
			err := os.Remove(app.config.Server.SocketPath)
			if err != nil {
				return fmt.Errorf("failed to remove existing socket file: %w", err)
			}
		}

		log.Info().Msgf("Starting server on unix socket %s", app.config.Server.SocketPath)
		if err := app.router.RunUnix(app.config.Server.SocketPath); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		return nil
	}

	// Start server
	address := fmt.Sprintf("%s:%d", app.config.Server.Address, app.config.Server.Port)
	log.Info().Msgf("Starting server on %s", address)
	if err := app.router.Run(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (app *BootstrapApp) dbCleanup() {
	ticker := time.NewTicker(time.Duration(30) * time.Minute)
	defer ticker.Stop()
	ctx := context.Background()

	for ; true; <-ticker.C {
		log.Debug().Msg("Cleaning up expired sessions")
		err := app.services.authService.DeleteExpiredSessions(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to clean up expired sessions")
		}
		deleted, err := app.services.lockoutService.DeleteExpiredAttempts(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to clean up expired login attempts")
		} else if deleted > 0 {
			log.Debug().Int("count", deleted).Msg("Cleaned up expired login attempts")
		}
	}
}
