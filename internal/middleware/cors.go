package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var corsOptions = cors.Options{
	AllowedOrigins: []string{"http://*", "https://*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type"},
	MaxAge:         300,
}

// CORS lets a front end served from another origin call the API during
// local development.
func CORS(next http.Handler) http.Handler {
	return cors.Handler(corsOptions)(next)
}
