package websocket

import (
	"net/http"
	"slices"

	"codeberg.org/miriamlab/server/internal/logger"
)

// CheckOrigin returns an upgrader origin check. Outside production every origin is
// accepted; in production the Origin header must be one of allowed.
func CheckOrigin(allowed []string, production bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !production {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			logger.Warn("websocket connection with no origin header")
			return false
		}

		if slices.Contains(allowed, origin) {
			return true
		}

		logger.Warn("websocket origin rejected", "origin", origin)
		return false
	}
}
