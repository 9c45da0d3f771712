package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
// Mutating routes require a bearer token when adminAPIKey is set.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()

	admin := func(pattern string, fn http.HandlerFunc) {
		if adminAPIKey != "" {
			mux.Handle(pattern, requireAuth(adminAPIKey, fn))
			return
		}
		mux.Handle(pattern, fn)
	}

	mux.HandleFunc("GET /api/v1/assets", handler.ListAssets)
	mux.HandleFunc("GET /api/v1/assets/{id}", handler.GetAsset)
	admin("POST /api/v1/assets", handler.CreateAsset)
	admin("PUT /api/v1/assets/{id}", handler.UpdateAsset)
	admin("DELETE /api/v1/assets/{id}", handler.DeleteAsset)

	mux.HandleFunc("GET /api/v1/stats", handler.GetStats)
	mux.HandleFunc("GET /api/v1/report", handler.GetReport)

	mux.HandleFunc("GET /api/v1/rates", handler.GetRates)
	admin("POST /api/v1/rates/refresh", handler.RefreshRates)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
