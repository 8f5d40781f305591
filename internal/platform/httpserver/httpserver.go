package httpserver

import (
	"net/http"
	"time"

	"peerhelp/internal/platform/config"
)

const writeMargin = 5 * time.Second

// New builds the HTTP server from the server section of the config. The write
// timeout never undercuts the handler timeout, or a timed-out handler could
// not deliver its 504.
func New(cfg config.Server, handler http.Handler) *http.Server {
	write := cfg.WriteTimeout
	if cfg.RequestTimeout > 0 && write < cfg.RequestTimeout+writeMargin {
		write = cfg.RequestTimeout + writeMargin
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadHeaderTimeout * 3,
		WriteTimeout:      write,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
