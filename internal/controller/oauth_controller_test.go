package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/controller"
	"github.com/authform/authform/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gotest.tools/v3/assert"
)

type fakeVerifier struct {
	tokens map[string]config.Claims
}

func (v *fakeVerifier) VerifyIDToken(_ context.Context, token string) (config.Claims, error) {
	claims, ok := v.tokens[token]
	if !ok {
		return config.Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

func setupOAuthController(t *testing.T, google *service.GoogleOAuthService) *testApp {
	auth, queries := setupAuth(t, &fakeVerifier{
		tokens: map[string]config.Claims{
			"valid-token": {
				Subject: "1234",
				Email:   "alice@gmail.com",
				Name:    "Alice",
				Picture: "https://example.com/alice.png",
			},
			"nameless-token": {
				Subject: "5678",
				Email:   "bob@gmail.com",
			},
		},
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api")

	ctrl := controller.NewOAuthController(controller.OAuthControllerConfig{
		Cookies:            testCookies,
		AppURL:             "http://localhost:3000",
		LandingPath:        "/home",
		LoginRedirectDelay: 1000,
	}, group, auth, google)
	ctrl.SetupRoutes()

	return &testApp{router: router, auth: auth, queries: queries}
}

func TestGoogleLoginHandler(t *testing.T) {
	app := setupOAuthController(t, nil)

	recorder := app.post(t, "/api/oauth/google", controller.GoogleLoginRequest{Credential: "valid-token"})

	assert.Equal(t, 200, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Google login successful!", body["message"])
	assert.Equal(t, "/home", body["redirect"])

	cookie := findCookie(recorder, "authform-session")
	assert.Assert(t, cookie != nil)

	session, err := app.auth.GetSession(context.Background(), cookie.Value)
	assert.NilError(t, err)
	assert.Equal(t, "alice@gmail.com", session.Username)
	assert.Equal(t, "Alice", session.Name)
	assert.Equal(t, "https://example.com/alice.png", session.Picture)
	assert.Equal(t, "google", session.Provider)

	// Missing name falls back to a pseudo name
	recorder = app.post(t, "/api/oauth/google", controller.GoogleLoginRequest{Credential: "nameless-token"})
	assert.Equal(t, 200, recorder.Code)

	session, err = app.auth.GetSession(context.Background(), findCookie(recorder, "authform-session").Value)
	assert.NilError(t, err)
	assert.Equal(t, "Bob (gmail.com)", session.Name)

	// Rejected token
	recorder = app.post(t, "/api/oauth/google", controller.GoogleLoginRequest{Credential: "forged-token"})

	assert.Equal(t, 401, recorder.Code)
	assert.Equal(t, "Google login failed. Please try again.", decodeBody(t, recorder)["message"])
	assert.Assert(t, findCookie(recorder, "authform-session") == nil)

	// Invalid json
	recorder = app.post(t, "/api/oauth/google", "{invalid json}")
	assert.Equal(t, 400, recorder.Code)
}

func TestOAuthCodeFlowDisabled(t *testing.T) {
	app := setupOAuthController(t, nil)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/oauth/url/google", nil)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, 404, recorder.Code)
}

func TestOAuthCodeFlow(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NilError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"id_token":     "valid-token",
		})
	}))
	defer tokenServer.Close()

	google := service.NewGoogleOAuthService(service.GoogleOAuthServiceConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/api/oauth/callback/google",
		Endpoint: oauth2.Endpoint{
			AuthURL:  tokenServer.URL + "/auth",
			TokenURL: tokenServer.URL + "/token",
		},
	})
	assert.NilError(t, google.Init())

	app := setupOAuthController(t, google)

	// Consent URL
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/oauth/url/google", nil)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)

	authURL, err := url.Parse(decodeBody(t, recorder)["url"].(string))
	assert.NilError(t, err)

	state := authURL.Query().Get("state")
	assert.Assert(t, state != "")

	csrf := findCookie(recorder, "authform-csrf")
	assert.Assert(t, csrf != nil)

	// State mismatch
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/oauth/callback/google?state=wrong&code=good-code", nil)
	req.AddCookie(csrf)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, 307, recorder.Code)
	assert.Equal(t, "http://localhost:3000/?error=google&mode=login", recorder.Header().Get("Location"))

	// Bad code
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/oauth/callback/google?state="+url.QueryEscape(state)+"&code=bad-code", nil)
	req.AddCookie(csrf)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, 307, recorder.Code)
	assert.Equal(t, "http://localhost:3000/?error=google&mode=login", recorder.Header().Get("Location"))

	// Success
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/oauth/callback/google?state="+url.QueryEscape(state)+"&code=good-code", nil)
	req.AddCookie(csrf)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, 307, recorder.Code)
	assert.Equal(t, "http://localhost:3000/home", recorder.Header().Get("Location"))

	session := findCookie(recorder, "authform-session")
	assert.Assert(t, session != nil)

	stored, err := app.auth.GetSession(context.Background(), session.Value)
	assert.NilError(t, err)
	assert.Equal(t, "alice@gmail.com", stored.Email)
}
