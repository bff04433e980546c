package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RowanDark/classic/internal/cipher"
	"github.com/RowanDark/classic/internal/logging"
	"github.com/RowanDark/classic/internal/observability/metrics"
)

const defaultMaxBodyBytes = 1 << 20

// Config configures the REST API server.
type Config struct {
	Addr   string
	Logger *logging.AuditLogger

	// Analysis holds the default analyser options; per-request language and
	// bounds are applied on top.
	Analysis []cipher.AnalyseOption

	// GRPC, when set, receives HTTP/2 requests carrying application/grpc
	// so both protocols share one cleartext port.
	GRPC http.Handler

	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// Server exposes the classic ciphers over HTTP JSON.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *logging.AuditLogger
}

// NewServer constructs a REST API server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("api address must be provided")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{cfg: cfg, logger: cfg.Logger}, nil
}

// Handler returns the HTTP routes without the gRPC split.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/v1/classic/kinds", s.handleKinds)
	mux.HandleFunc("/api/v1/classic/encode", s.handleEncode)
	mux.HandleFunc("/api/v1/classic/decode", s.handleDecode)
	mux.HandleFunc("/api/v1/classic/analyse", s.handleAnalyse)
	mux.HandleFunc("/api/v1/classic/detect", s.handleDetect)
	mux.HandleFunc("/api/v1/classic/pipeline", s.handlePipeline)
	return s.limitBody(mux)
}

// rootHandler routes gRPC traffic to the gRPC server and everything else to
// the JSON API. h2c lets gRPC clients speak HTTP/2 without TLS.
func (s *Server) rootHandler() http.Handler {
	api := s.Handler()
	if s.cfg.GRPC == nil {
		return api
	}
	grpcHandler := s.cfg.GRPC
	split := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc") {
			grpcHandler.ServeHTTP(w, r)
			return
		}
		api.ServeHTTP(w, r)
	})
	return h2c.NewHandler(split, &http2.Server{})
}

// Run starts the HTTP server and blocks until the provided context is cancelled or a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.rootHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	_ = s.logger.Emit(logging.AuditEvent{EventType: logging.EventServer, Outcome: logging.OutcomeInfo, Reason: "listening on " + s.cfg.Addr})

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancelShutdown()
		_ = s.httpServer.Shutdown(shutdownCtx)
		_ = s.logger.Emit(logging.AuditEvent{EventType: logging.EventServer, Outcome: logging.OutcomeInfo, Reason: "shutdown"})
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = s.logger.Emit(logging.AuditEvent{EventType: logging.EventRejected, Outcome: logging.OutcomeFailure, Reason: err.Error()})
	}
}
