package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/form"
	"github.com/authform/authform/internal/service"
	"github.com/authform/authform/internal/utils"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"
)

type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

type OAuthControllerConfig struct {
	Cookies            CookieConfig
	AppURL             string
	LandingPath        string
	LoginRedirectDelay int
}

type OAuthController struct {
	config OAuthControllerConfig
	router *gin.RouterGroup
	auth   *service.AuthService
	google *service.GoogleOAuthService
}

// NewOAuthController wires the Google routes. google may be nil, the code
// flow routes then answer 404.
func NewOAuthController(config OAuthControllerConfig, router *gin.RouterGroup, auth *service.AuthService, google *service.GoogleOAuthService) *OAuthController {
	return &OAuthController{
		config: config,
		router: router,
		auth:   auth,
		google: google,
	}
}

func (controller *OAuthController) SetupRoutes() {
	oauthGroup := controller.router.Group("/oauth")
	oauthGroup.POST("/google", controller.googleLoginHandler)
	oauthGroup.GET("/url/google", controller.oauthURLHandler)
	oauthGroup.GET("/callback/google", controller.oauthCallbackHandler)
}

func (controller *OAuthController) googleLoginHandler(c *gin.Context) {
	var req GoogleLoginRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	if err := controller.federatedLogin(c, req.Credential); err != nil {
		c.JSON(401, gin.H{
			"status":  401,
			"message": service.ErrFederatedLogin.Error(),
		})
		return
	}

	c.JSON(200, gin.H{
		"status":        200,
		"message":       "Google login successful!",
		"redirect":      controller.config.LandingPath,
		"redirectDelay": controller.config.LoginRedirectDelay,
	})
}

func (controller *OAuthController) oauthURLHandler(c *gin.Context) {
	if controller.google == nil {
		c.JSON(404, gin.H{
			"status":  404,
			"message": "Not Found",
		})
		return
	}

	state, err := controller.google.GenerateState()

	if err != nil {
		log.Error().Err(err).Msg("Failed to generate OAuth state")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
		return
	}

	verifier := controller.google.GenerateVerifier()
	authURL := controller.google.GetAuthURL(state, verifier)

	controller.config.Cookies.set(c, controller.config.Cookies.CSRFCookieName, state+":"+verifier, int(time.Hour.Seconds()))

	c.JSON(200, gin.H{
		"status":  200,
		"message": "OK",
		"url":     authURL,
	})
}

func (controller *OAuthController) oauthCallbackHandler(c *gin.Context) {
	if controller.google == nil {
		c.JSON(404, gin.H{
			"status":  404,
			"message": "Not Found",
		})
		return
	}

	csrfCookie, err := c.Cookie(controller.config.Cookies.CSRFCookieName)
	state, verifier, found := strings.Cut(csrfCookie, ":")

	if err != nil || !found || state == "" || c.Query("state") != state {
		log.Warn().Err(err).Msg("CSRF token mismatch or cookie missing")
		controller.redirectToForm(c)
		return
	}

	controller.config.Cookies.set(c, controller.config.Cookies.CSRFCookieName, "", -1)

	idToken, err := controller.google.ExchangeIDToken(c.Request.Context(), c.Query("code"), verifier)

	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange OAuth code")
		controller.redirectToForm(c)
		return
	}

	if err := controller.federatedLogin(c, idToken); err != nil {
		controller.redirectToForm(c)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, controller.config.AppURL+controller.config.LandingPath)
}

// federatedLogin verifies the credential and starts a session for it.
func (controller *OAuthController) federatedLogin(c *gin.Context, credential string) error {
	claims, err := controller.auth.FederatedLogin(c.Request.Context(), credential)

	if err != nil {
		tlog.AuditLoginFailure(c, "", "google")
		return err
	}

	token, err := controller.startSession(c.Request.Context(), claims, controller.config.Cookies.SessionToken(c))

	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		return err
	}

	controller.config.Cookies.SetSession(c, token)

	log.Info().Str("email", claims.Email).Msg("Google login successful")
	tlog.AuditLoginSuccess(c, claims.Email, "google")

	return nil
}

func (controller *OAuthController) startSession(ctx context.Context, claims config.Claims, previous string) (string, error) {
	name := claims.Name

	if name == "" {
		local, domain, _ := strings.Cut(claims.Email, "@")
		name = fmt.Sprintf("%s (%s)", utils.Capitalize(local), domain)
	}

	return controller.auth.CreateSession(ctx, service.SessionData{
		Username: claims.Email,
		Email:    claims.Email,
		Name:     name,
		Picture:  claims.Picture,
		Provider: "google",
	}, previous)
}

func (controller *OAuthController) redirectToForm(c *gin.Context) {
	queries, err := query.Values(config.FormQuery{
		Mode:  string(form.ModeLogin),
		Error: config.FormErrorGoogle,
	})

	if err != nil {
		log.Error().Err(err).Msg("Failed to encode form query")
		c.Redirect(http.StatusTemporaryRedirect, controller.config.AppURL+"/")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/?%s", controller.config.AppURL, queries.Encode()))
}
