package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/authform/authform/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// GetCookieDomain returns the host cookies are scoped to. A host that is
// itself a public suffix (co.uk, github.io) is refused.
func GetCookieDomain(appUrl string) (string, error) {
	parsed, err := url.Parse(appUrl)

	if err != nil {
		return "", err
	}

	host := parsed.Hostname()

	if host == "" {
		return "", errors.New("app url has no host")
	}

	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, nil
	}

	if _, err := publicsuffix.Domain(host); err != nil {
		return "", fmt.Errorf("cannot scope cookies to %s: %w", host, err)
	}

	return host, nil
}

func GetContext(c *gin.Context) (config.UserContext, error) {
	userContextValue, exists := c.Get("context")

	if !exists {
		return config.UserContext{}, errors.New("no user context in request")
	}

	userContext, ok := userContextValue.(*config.UserContext)

	if !ok {
		return config.UserContext{}, errors.New("invalid user context in request")
	}

	return *userContext, nil
}
