package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/wavebreaker/backend/pkg/config"
)

// NewCORSHandler wraps mu with a CORS policy sized for a plain JSON/form-POST
// API: no gRPC-Web/Connect framing headers, just what the admin front-end's
// bearer-token requests and the browser-facing OpenID redirect need.
func NewCORSHandler(mu http.Handler, srvConfig *config.ServerConfig) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: srvConfig.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Length"},
	}).Handler(mu)
}
