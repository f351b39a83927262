package controller_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/authform/authform/internal/controller"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
)

func setupResources(t *testing.T, dir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	ctrl, err := controller.NewResourcesController(controller.ResourcesControllerConfig{
		ResourcesDir: dir,
	}, router)
	assert.NilError(t, err)
	ctrl.SetupRoutes()

	return router
}

func getResource(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestResourcesHandler(t *testing.T) {
	router := setupResources(t, "")

	recorder := getResource(router, "/resources/form.js")
	assert.Equal(t, 200, recorder.Code)
	assert.Assert(t, strings.Contains(recorder.Body.String(), "/api/user/login"))

	recorder = getResource(router, "/resources/authform.css")
	assert.Equal(t, 200, recorder.Code)
	assert.Assert(t, strings.HasPrefix(recorder.Header().Get("Content-Type"), "text/css"))

	recorder = getResource(router, "/resources/nonexistent.txt")
	assert.Equal(t, 404, recorder.Code)

	recorder = getResource(router, "/resources/")
	assert.Equal(t, 404, recorder.Code)

	recorder = getResource(router, "/resources/../etc/passwd")
	assert.Equal(t, 404, recorder.Code)
}

func TestResourcesOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "authform.css"), []byte("body { background: black; }"), 0644)
	assert.NilError(t, err)

	err = os.WriteFile(filepath.Join(dir, "logo.txt"), []byte("logo"), 0644)
	assert.NilError(t, err)

	router := setupResources(t, dir)

	recorder := getResource(router, "/resources/authform.css")
	assert.Equal(t, 200, recorder.Code)
	assert.Equal(t, "body { background: black; }", recorder.Body.String())

	recorder = getResource(router, "/resources/logo.txt")
	assert.Equal(t, 200, recorder.Code)
	assert.Equal(t, "logo", recorder.Body.String())

	// Falls back to the embedded files
	recorder = getResource(router, "/resources/home.js")
	assert.Equal(t, 200, recorder.Code)
	assert.Assert(t, strings.Contains(recorder.Body.String(), "/api/user/logout"))
}
