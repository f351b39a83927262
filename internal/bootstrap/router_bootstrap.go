package bootstrap

import (
	"fmt"
	"html/template"

	"github.com/authform/authform/internal/assets"
	"github.com/authform/authform/internal/controller"
	"github.com/authform/authform/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (app *BootstrapApp) setupRouter() (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(app.config.Server.TrustedProxies) > 0 {
		err := engine.SetTrustedProxies(app.config.Server.TrustedProxies)

		if err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	templates, err := template.ParseFS(assets.Templates, "templates/*.html")

	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	engine.SetHTMLTemplate(templates)

	zerologMiddleware := middleware.NewZerologMiddleware()

	err = zerologMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize zerolog middleware: %w", err)
	}

	engine.Use(zerologMiddleware.Middleware())

	contextMiddleware := middleware.NewContextMiddleware(middleware.ContextMiddlewareConfig{
		SessionCookieName: app.context.sessionCookieName,
	}, app.services.authService)

	err = contextMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize context middleware: %w", err)
	}

	engine.Use(contextMiddleware.Middleware())

	cookies := controller.CookieConfig{
		Domain:               app.context.cookieDomain,
		Secure:               app.config.Auth.SecureCookie,
		SessionExpiry:        app.config.Auth.SessionExpiry,
		SessionCookieName:    app.context.sessionCookieName,
		RememberedCookieName: app.context.rememberedCookieName,
		CSRFCookieName:       app.context.csrfCookieName,
	}

	googleRedirect := app.services.googleOAuthService != nil

	formController := controller.NewFormController(controller.FormControllerConfig{
		Title:                app.config.UI.Title,
		GoogleClientID:       app.config.Google.ClientID,
		GoogleRedirect:       googleRedirect,
		RememberedCookieName: app.context.rememberedCookieName,
		LandingPath:          app.config.Auth.LandingPath,
	}, engine)

	formController.SetupRoutes()

	resourcesController, err := controller.NewResourcesController(controller.ResourcesControllerConfig{
		ResourcesDir: app.config.UI.ResourcesDir,
	}, engine)

	if err != nil {
		return nil, fmt.Errorf("failed to initialize resources controller: %w", err)
	}

	resourcesController.SetupRoutes()

	apiRouter := engine.Group("/api")

	contextController := controller.NewContextController(controller.ContextControllerConfig{
		Title:               app.config.UI.Title,
		GoogleClientID:      app.config.Google.ClientID,
		GoogleRedirect:      googleRedirect,
		LandingPath:         app.config.Auth.LandingPath,
		LoginRedirectDelay:  app.config.Auth.LoginRedirectDelay,
		SignupRedirectDelay: app.config.Auth.SignupRedirectDelay,
	}, apiRouter)

	contextController.SetupRoutes()

	userController := controller.NewUserController(controller.UserControllerConfig{
		Cookies:             cookies,
		LandingPath:         app.config.Auth.LandingPath,
		LoginRedirectDelay:  app.config.Auth.LoginRedirectDelay,
		SignupRedirectDelay: app.config.Auth.SignupRedirectDelay,
	}, apiRouter, app.services.authService)

	userController.SetupRoutes()

	oauthController := controller.NewOAuthController(controller.OAuthControllerConfig{
		Cookies:            cookies,
		AppURL:             app.config.AppURL,
		LandingPath:        app.config.Auth.LandingPath,
		LoginRedirectDelay: app.config.Auth.LoginRedirectDelay,
	}, apiRouter, app.services.authService, app.services.googleOAuthService)

	oauthController.SetupRoutes()

	healthController := controller.NewHealthController(apiRouter, app.db)

	healthController.SetupRoutes()

	return engine, nil
}
