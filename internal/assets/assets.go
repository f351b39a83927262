package assets

import (
	"embed"
)

// Database migrations
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Form and landing page templates
//
//go:embed templates/*.html
var Templates embed.FS

// Stylesheets and scripts served under /resources
//
//go:embed static
var Static embed.FS
