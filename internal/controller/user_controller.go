package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/authform/authform/internal/form"
	"github.com/authform/authform/internal/service"
	"github.com/authform/authform/internal/utils"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type SignUpRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type UserControllerConfig struct {
	Cookies             CookieConfig
	LandingPath         string
	LoginRedirectDelay  int
	SignupRedirectDelay int
}

type UserController struct {
	config UserControllerConfig
	router *gin.RouterGroup
	auth   *service.AuthService
}

func NewUserController(config UserControllerConfig, router *gin.RouterGroup, auth *service.AuthService) *UserController {
	return &UserController{
		config: config,
		router: router,
		auth:   auth,
	}
}

func (controller *UserController) SetupRoutes() {
	userGroup := controller.router.Group("/user")
	userGroup.POST("/login", controller.loginHandler)
	userGroup.POST("/signup", controller.signUpHandler)
	userGroup.POST("/logout", controller.logoutHandler)
}

func (controller *UserController) loginHandler(c *gin.Context) {
	var req LoginRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	identifier := strings.TrimSpace(req.Identifier)

	log.Debug().Str("identifier", identifier).Msg("Login attempt")

	user, err := controller.auth.Login(c.Request.Context(), service.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
	})

	if err != nil {
		controller.handleLoginError(c, identifier, err)
		return
	}

	controller.config.Cookies.SetRemembered(c, identifier, req.RememberMe)

	token, err := controller.auth.CreateSession(c.Request.Context(), service.SessionData{
		Username: user.Username,
		Email:    user.Email,
		Name:     utils.Capitalize(user.Username),
		Provider: "local",
	}, controller.config.Cookies.SessionToken(c))

	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
		return
	}

	controller.config.Cookies.SetSession(c, token)

	log.Info().Str("username", user.Username).Msg("Login successful")
	tlog.AuditLoginSuccess(c, user.Username, "local")

	c.JSON(200, gin.H{
		"status":        200,
		"message":       "Login successful!",
		"redirect":      controller.config.LandingPath,
		"redirectDelay": controller.config.LoginRedirectDelay,
	})
}

func (controller *UserController) handleLoginError(c *gin.Context, identifier string, err error) {
	var locked *service.LockedError

	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(400, gin.H{
			"status":  400,
			"message": err.Error(),
		})
	case errors.As(err, &locked):
		if locked.JustLocked {
			log.Warn().Str("identifier", identifier).Msg("Too many failed login attempts, identifier locked")
			tlog.AuditLoginFailure(c, identifier, "local")
		}
		tlog.AuditLockout(c, identifier, locked.Minutes)
		c.Writer.Header().Add("x-authform-lock-locked", "true")
		c.Writer.Header().Add("x-authform-lock-reset", time.Now().Add(time.Duration(locked.Minutes)*time.Minute).Format(time.RFC3339))
		c.JSON(429, gin.H{
			"status":  429,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn().Str("identifier", identifier).Msg("Invalid credentials")
		tlog.AuditLoginFailure(c, identifier, "local")
		c.JSON(401, gin.H{
			"status":  401,
			"message": err.Error(),
		})
	default:
		log.Error().Err(err).Msg("Failed to log in")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
	}
}

func (controller *UserController) signUpHandler(c *gin.Context) {
	var req SignUpRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	user, err := controller.auth.SignUp(c.Request.Context(), req.Identifier, req.Password)

	var validation *service.ValidationError

	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidEmail), errors.As(err, &validation):
		c.JSON(400, gin.H{
			"status":  400,
			"message": err.Error(),
		})
		return
	case errors.Is(err, service.ErrUserExists):
		c.JSON(409, gin.H{
			"status":  409,
			"message": err.Error(),
		})
		return
	default:
		log.Error().Err(err).Msg("Failed to sign up")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
		return
	}

	tlog.AuditSignUp(c, user.Username, user.Email)

	c.JSON(201, gin.H{
		"status":        201,
		"message":       "Account created successfully! Please log in.",
		"mode":          form.ModeLogin,
		"redirectDelay": controller.config.SignupRedirectDelay,
	})
}

func (controller *UserController) logoutHandler(c *gin.Context) {
	log.Debug().Msg("Logout request received")

	token := controller.config.Cookies.SessionToken(c)

	if context, err := utils.GetContext(c); err == nil {
		tlog.AuditLogout(c, context.Username, context.Provider)
	}

	if err := controller.auth.DeleteSession(c.Request.Context(), token); err != nil {
		log.Error().Err(err).Msg("Failed to delete session")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
		return
	}

	controller.config.Cookies.ClearSession(c)

	c.JSON(200, gin.H{
		"status":   200,
		"message":  "Logout successful",
		"redirect": "/",
	})
}
