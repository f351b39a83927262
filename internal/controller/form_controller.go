package controller

import (
	"net/http"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/form"
	"github.com/authform/authform/internal/service"
	"github.com/authform/authform/internal/utils"

	"github.com/gin-gonic/gin"
)

// formErrors maps the codes other handlers put in the error query parameter
// to the message shown. Unknown codes show nothing.
var formErrors = map[string]error{
	config.FormErrorGoogle: service.ErrFederatedLogin,
}

type FormControllerConfig struct {
	Title                string
	GoogleClientID       string
	GoogleRedirect       bool
	RememberedCookieName string
	LandingPath          string
}

// FormController renders the login / sign-up page and the landing page.
// Templates must already be loaded on the engine.
type FormController struct {
	config FormControllerConfig
	router gin.IRoutes
}

func NewFormController(config FormControllerConfig, router gin.IRoutes) *FormController {
	return &FormController{
		config: config,
		router: router,
	}
}

func (controller *FormController) SetupRoutes() {
	controller.router.GET("/", controller.formHandler)
	controller.router.GET(controller.config.LandingPath, controller.landingHandler)
}

func (controller *FormController) formHandler(c *gin.Context) {
	state := form.NewState()

	if form.ParseMode(c.Query("mode")) != state.Mode {
		state = state.Toggle()
	}

	if err, ok := formErrors[c.Query("error")]; ok {
		state = state.WithError(err.Error())
	}

	remembered, _ := c.Cookie(controller.config.RememberedCookieName)

	c.HTML(http.StatusOK, "login.html", gin.H{
		"AppTitle":       controller.config.Title,
		"View":           state.View(),
		"RememberedUser": remembered,
		"GoogleClientID": controller.config.GoogleClientID,
		"GoogleRedirect": controller.config.GoogleRedirect,
	})
}

func (controller *FormController) landingHandler(c *gin.Context) {
	context, err := utils.GetContext(c)

	if err != nil || !context.IsLoggedIn {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"AppTitle": controller.config.Title,
		"User":     context,
	})
}
