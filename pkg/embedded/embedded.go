// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains the dashboard page (frontend/dist) served at / by the HTTP server.
//
//go:embed frontend/dist
var Files embed.FS
