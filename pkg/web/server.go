package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/nodewee/file-to-text/pkg/config"
	"github.com/nodewee/file-to-text/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Server hosts the upload page and the JSON API
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	logger  *logger.Logger
}

// NewServer creates a server for cfg around h
func NewServer(cfg config.ServerConfig, h *Handler, log *logger.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: h,
		logger:  log,
	}
}

// Routes builds the router with its middleware chain
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handler.HealthCheck)

	// Page
	mux.HandleFunc("GET /{$}", s.handler.Index)
	mux.HandleFunc("POST /{$}", s.handler.Upload)

	// JSON API
	mux.HandleFunc("POST /api/convert", s.handler.Convert)
	mux.HandleFunc("POST /api/convert/download", s.handler.Download)
	mux.HandleFunc("GET /api/formats", s.handler.Formats)

	// Order: CORS -> RequestID -> RequestLogger -> Recovery -> Routes
	var handler http.Handler = mux
	handler = Recovery(s.logger)(handler)
	handler = RequestLogger(s.logger)(handler)
	handler = RequestID(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
	})
	return corsHandler.Handler(handler)
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:     s.Routes(),
		ReadTimeout: s.cfg.ReadTimeout,
		// Zero keeps long conversions from being cut off
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.With(logger.Fields{"addr": listener.Addr().String()}).Info("server starting")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
