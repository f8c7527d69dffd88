package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/api/handlers"
	"github.com/achgulp/axon-bbs-sub000/pkg/api/middleware"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/gorilla/mux"
)

// DefaultStreamInterval is how often a stream checks the log for new entries.
const DefaultStreamInterval = 250 * time.Millisecond

// APIServer hosts an event log over HTTP.
type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port int
	TLS  *TLSConfig
	Log  eventlog.Log
	// StreamInterval defaults to DefaultStreamInterval
	StreamInterval time.Duration
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts.Log, opts.StreamInterval),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter returns the routes of the log host.
func NewRouter(l eventlog.Log, streamInterval time.Duration) http.Handler {
	if streamInterval <= 0 {
		streamInterval = DefaultStreamInterval
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewIdentityMiddleware())
	api.HandleFunc("/me", handlers.HandleMe()).Methods(http.MethodGet)
	api.HandleFunc("/topics/{topic}/events", handlers.HandlePostEvent(l)).Methods(http.MethodPost)
	api.HandleFunc("/topics/{topic}/events", handlers.HandleReadEvents(l)).Methods(http.MethodGet)
	api.HandleFunc("/topics/{topic}/stream", handlers.HandleStream(l, streamInterval)).Methods(http.MethodGet)
	return corsMiddleware(r)
}

// corsMiddleware answers preflight requests before routing.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Axon-Nickname, X-Axon-Pubkey")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until the server is stopped. It returns nil after Stop and
// the listen error otherwise.
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("API server error: %v", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
