package tlog

import "github.com/gin-gonic/gin"

func AuditLoginSuccess(c *gin.Context, username, provider string) {
	Audit.Info().
		Str("event", "login").
		Str("result", "success").
		Str("username", username).
		Str("provider", provider).
		Str("ip", c.ClientIP()).
		Send()
}

func AuditLoginFailure(c *gin.Context, identifier, provider string) {
	Audit.Warn().
		Str("event", "login").
		Str("result", "failure").
		Str("identifier", identifier).
		Str("provider", provider).
		Str("ip", c.ClientIP()).
		Send()
}

func AuditLockout(c *gin.Context, identifier string, minutes int) {
	Audit.Warn().
		Str("event", "lockout").
		Str("identifier", identifier).
		Int("minutes", minutes).
		Str("ip", c.ClientIP()).
		Send()
}

func AuditSignUp(c *gin.Context, username, email string) {
	Audit.Info().
		Str("event", "signup").
		Str("result", "success").
		Str("username", username).
		Str("email", email).
		Str("ip", c.ClientIP()).
		Send()
}

func AuditLogout(c *gin.Context, username, provider string) {
	Audit.Info().
		Str("event", "logout").
		Str("result", "success").
		Str("username", username).
		Str("provider", provider).
		Str("ip", c.ClientIP()).
		Send()
}
