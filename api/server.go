package api

import (
	"net/http"

	"github.com/digikraal/ledgerview/pkg/config"
)

// NewServer wraps the router in an http.Server carrying the configured
// timeouts. cmd/api owns its lifecycle.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
}
