package controller

import (
	"github.com/authform/authform/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserContextResponse struct {
	Status     int    `json:"status"`
	Message    string `json:"message"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	Provider   string `json:"provider"`
	Oauth      bool   `json:"oauth"`
}

type AppContextResponse struct {
	Status              int    `json:"status"`
	Message             string `json:"message"`
	Title               string `json:"title"`
	GoogleClientID      string `json:"googleClientId"`
	GoogleRedirect      bool   `json:"googleRedirect"`
	LandingPath         string `json:"landingPath"`
	LoginRedirectDelay  int    `json:"loginRedirectDelay"`
	SignupRedirectDelay int    `json:"signupRedirectDelay"`
}

type ContextControllerConfig struct {
	Title               string
	GoogleClientID      string
	GoogleRedirect      bool
	LandingPath         string
	LoginRedirectDelay  int
	SignupRedirectDelay int
}

type ContextController struct {
	config ContextControllerConfig
	router *gin.RouterGroup
}

func NewContextController(config ContextControllerConfig, router *gin.RouterGroup) *ContextController {
	return &ContextController{
		config: config,
		router: router,
	}
}

func (controller *ContextController) SetupRoutes() {
	contextGroup := controller.router.Group("/context")
	contextGroup.GET("/user", controller.userContextHandler)
	contextGroup.GET("/app", controller.appContextHandler)
}

func (controller *ContextController) userContextHandler(c *gin.Context) {
	context, err := utils.GetContext(c)

	if err != nil {
		c.JSON(200, UserContextResponse{
			Status:  401,
			Message: "Unauthorized",
		})
		return
	}

	c.JSON(200, UserContextResponse{
		Status:     200,
		Message:    "Success",
		IsLoggedIn: context.IsLoggedIn,
		Username:   context.Username,
		Name:       context.Name,
		Email:      context.Email,
		Picture:    context.Picture,
		Provider:   context.Provider,
		Oauth:      context.OAuth,
	})
}

func (controller *ContextController) appContextHandler(c *gin.Context) {
	c.JSON(200, AppContextResponse{
		Status:              200,
		Message:             "Success",
		Title:               controller.config.Title,
		GoogleClientID:      controller.config.GoogleClientID,
		GoogleRedirect:      controller.config.GoogleRedirect,
		LandingPath:         controller.config.LandingPath,
		LoginRedirectDelay:  controller.config.LoginRedirectDelay,
		SignupRedirectDelay: controller.config.SignupRedirectDelay,
	})
}
