package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nftmarket/core"
	"nftmarket/core/types"
	"nftmarket/indexer"
	"nftmarket/observability"
	"nftmarket/observability/logging"
)

const (
	defaultMaxBodyBytes = 1 << 20
	requestIDHeader     = "X-Request-ID"
)

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	JWTSecret          string
	RateLimitPerMinute float64
	Burst              int
	MaxBodyBytes       int64
	ReadTimeout        time.Duration
}

type eventJournal interface {
	List(ctx context.Context, q indexer.Query) ([]indexer.Entry, error)
}

type handlerFunc func(ctx context.Context, caller types.Address, params json.RawMessage) (interface{}, error)

type method struct {
	auth   bool
	handle handlerFunc
}

type Server struct {
	market  *core.Market
	journal eventJournal
	auth    *Authenticator
	limiter *RateLimiter
	logger  *slog.Logger
	tracer  trace.Tracer
	cfg     ServerConfig
	methods map[string]method
}

// NewServer exposes market over JSON-RPC. A nil journal disables events_list.
func NewServer(market *core.Market, journal eventJournal, cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		market:  market,
		journal: journal,
		auth:    NewAuthenticator(cfg.JWTSecret),
		limiter: NewRateLimiter(cfg.RateLimitPerMinute, cfg.Burst),
		logger:  logger,
		tracer:  otel.Tracer("nftmarket/rpc"),
		cfg:     cfg,
	}
	s.methods = s.routes()
	return s
}

// Handler returns the router serving /rpc, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestContext)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(rr chi.Router) {
		rr.Use(s.limiter.Middleware)
		rr.Post("/rpc", s.handle)
		rr.Post("/", s.handle)
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("json-rpc server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("rpc shutdown: %w", err)
		}
		return nil
	}
}

type ctxKey string

const requestIDKey ctxKey = "rpc.requestId"

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	methodName := "unknown"
	defer func() {
		observability.RPC().Observe(moduleOf(methodName), methodName, recorder.status, time.Since(start))
	}()

	reader := http.MaxBytesReader(recorder, r.Body, s.cfg.MaxBodyBytes)
	defer func() {
		_ = reader.Close()
	}()
	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxBodyBytes)
		}
		writeError(recorder, status, nil, codeInvalidRequest, message, nil)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(recorder, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(recorder, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	id := requestID(req.ID)
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(recorder, http.StatusBadRequest, id, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(recorder, http.StatusBadRequest, id, codeInvalidRequest, "method required", nil)
		return
	}
	m, ok := s.methods[req.Method]
	if !ok {
		writeError(recorder, http.StatusNotFound, id, codeMethodNotFound, "method not found", req.Method)
		return
	}
	methodName = req.Method

	ctx, span := s.tracer.Start(r.Context(), "rpc."+req.Method, trace.WithAttributes(
		attribute.String("rpc.method", req.Method),
		attribute.String("rpc.request_id", RequestID(r.Context())),
	))
	defer span.End()

	var caller types.Address
	if m.auth {
		var authErr *RPCError
		caller, authErr = s.auth.Caller(r)
		if authErr != nil {
			span.SetStatus(codes.Error, authErr.Message)
			s.logger.Debug("rpc authentication failed",
				slog.String("method", req.Method),
				slog.String("requestId", RequestID(r.Context())),
				slog.String("reason", authErr.Message),
				logging.MaskField("authorization", r.Header.Get("Authorization")))
			writeError(recorder, http.StatusUnauthorized, id, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		span.SetAttributes(attribute.String("rpc.caller", caller.String()))
	}

	params := json.RawMessage("{}")
	if len(req.Params) > 0 && len(bytes.TrimSpace(req.Params[0])) > 0 {
		params = req.Params[0]
	}
	result, err := m.handle(ctx, caller, params)
	if err != nil {
		status, rpcErr := errorFor(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, rpcErr.Message)
		if status >= http.StatusInternalServerError {
			s.logger.Error("rpc method failed",
				slog.String("method", req.Method),
				slog.String("requestId", RequestID(r.Context())),
				slog.Any("error", err))
		}
		writeError(recorder, status, id, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	writeResult(recorder, id, result)
}

func moduleOf(method string) string {
	if i := strings.IndexByte(method, '_'); i > 0 {
		return method[:i]
	}
	return method
}
