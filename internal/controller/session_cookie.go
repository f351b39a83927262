package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieConfig is shared by every controller that starts or ends a session.
type CookieConfig struct {
	Domain               string
	Secure               bool
	SessionExpiry        int
	SessionCookieName    string
	RememberedCookieName string
	CSRFCookieName       string
}

const rememberedCookieMaxAge = 60 * 60 * 24 * 30

func (cookies CookieConfig) set(c *gin.Context, name string, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", cookies.Domain, cookies.Secure, true)
}

func (cookies CookieConfig) SetSession(c *gin.Context, token string) {
	cookies.set(c, cookies.SessionCookieName, token, cookies.SessionExpiry)
}

func (cookies CookieConfig) ClearSession(c *gin.Context) {
	cookies.set(c, cookies.SessionCookieName, "", -1)
}

// SetRemembered stores the identifier for prefilling the form, or clears it.
func (cookies CookieConfig) SetRemembered(c *gin.Context, identifier string, remember bool) {
	if !remember {
		if _, err := c.Cookie(cookies.RememberedCookieName); err == nil {
			cookies.set(c, cookies.RememberedCookieName, "", -1)
		}
		return
	}
	cookies.set(c, cookies.RememberedCookieName, identifier, rememberedCookieMaxAge)
}

func (cookies CookieConfig) SessionToken(c *gin.Context) string {
	token, err := c.Cookie(cookies.SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}
