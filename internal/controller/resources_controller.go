package controller

import (
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/authform/authform/internal/assets"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/gin-gonic/gin"
)

type ResourcesControllerConfig struct {
	// Files found here win over the embedded ones
	ResourcesDir string
}

type ResourcesController struct {
	config  ResourcesControllerConfig
	router  gin.IRoutes
	sources []fs.FS
}

func NewResourcesController(config ResourcesControllerConfig, router gin.IRoutes) (*ResourcesController, error) {
	static, err := fs.Sub(assets.Static, "static")

	if err != nil {
		return nil, err
	}

	sources := []fs.FS{static}

	if config.ResourcesDir != "" {
		tlog.App.Debug().Str("dir", config.ResourcesDir).Msg("Serving resources overrides")
		sources = append([]fs.FS{os.DirFS(config.ResourcesDir)}, sources...)
	}

	return &ResourcesController{
		config:  config,
		router:  router,
		sources: sources,
	}, nil
}

func (controller *ResourcesController) SetupRoutes() {
	controller.router.GET("/resources/*resource", controller.resourcesHandler)
}

func (controller *ResourcesController) resourcesHandler(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("resource"), "/")

	for _, source := range controller.sources {
		info, err := fs.Stat(source, name)

		// Invalid names, including any .. element, fail here
		if err != nil || info.IsDir() {
			continue
		}

		c.FileFromFS(name, http.FS(source))
		return
	}

	c.Status(http.StatusNotFound)
}
