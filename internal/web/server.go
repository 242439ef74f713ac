// Package web is the bet history relay: a small HTTP API over the bet store plus a static page.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const (
	listCacheTTL     = 30 * time.Second
	listCacheCleanup = 2 * time.Minute
	// a retried POST carrying a known request id gets the stored record back
	replayTTL        = 10 * time.Minute
	replayCleanup    = 20 * time.Minute
	shutdownTimeout  = 5 * time.Second
	defaultCertCache = "cert-cache"
	// ACME HTTP-01 challenges always arrive on port 80
	challengeAddr = ":80"
)

// BetStore is the part of the bet store the relay needs.
type BetStore interface {
	Append(ctx context.Context, rec domain.BetRecord) (domain.BetRecord, error)
	Recent(ctx context.Context, player string, limit int) ([]domain.BetRecord, error)
	After(ctx context.Context, id uint64) ([]domain.BetRecord, error)
}

// Server exposes the bet API, live feeds and the static UI.
type Server struct {
	Addr      string
	store     BetStore
	hub       *Hub
	cache     *cache.Cache
	replays   *cache.Cache
	createMu  sync.Mutex
	validator *validator.Validate
	origins   []string
	logger    *zap.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAllowedOrigins restricts CORS to origins. The default allows any origin.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// NewServer creates a relay server. Call Start or StartWithAutoTLS to serve.
func NewServer(addr string, store BetStore, logger *zap.Logger, opts ...ServerOption) *Server {
	s := &Server{
		Addr:      addr,
		store:     store,
		hub:       NewHub(logger),
		cache:     cache.New(listCacheTTL, listCacheCleanup),
		replays:   cache.New(replayTTL, replayCleanup),
		validator: validator.New(),
		origins:   []string{"*"},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "Last-Event-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/bets", func(r chi.Router) {
		r.Post("/", s.handleCreateBet)
		r.Get("/", s.handleListBets)
		r.Get("/stream", s.handleBetStream)
		r.Get("/ws", s.hub.HandleConnection)
	})
	r.Handle("/*", staticHandler())

	return r
}

// Start serves plain HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	go s.hub.Run(ctx)

	api := newHTTPServer(s.Addr, s.Router())
	go s.shutdownOnDone(ctx, api)

	s.logger.Info("relay listening", zap.String("addr", s.Addr))
	return ignoreClosed(api.ListenAndServe())
}

// StartWithAutoTLS serves HTTPS with certificates issued for domains and
// answers ACME challenges on challengeAddr. Certificates persist in cacheDir.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	certs, err := certManager(domains, cacheDir)
	if err != nil {
		return err
	}
	go s.hub.Run(ctx)

	challenges := newHTTPServer(challengeAddr, certs.HTTPHandler(nil))
	api := newHTTPServer(s.Addr, s.Router())
	api.TLSConfig = certs.TLSConfig()
	api.TLSConfig.MinVersion = tls.VersionTLS12

	go s.shutdownOnDone(ctx, challenges, api)
	go func() {
		if err := ignoreClosed(challenges.ListenAndServe()); err != nil {
			s.logger.Error("acme challenge listener failed", zap.String("addr", challengeAddr), zap.Error(err))
		}
	}()

	s.logger.Info("relay listening with TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	return ignoreClosed(api.ListenAndServeTLS("", ""))
}

func certManager(domains []string, cacheDir string) (*autocert.Manager, error) {
	if len(domains) == 0 {
		return nil, errors.New("auto TLS needs at least one domain")
	}
	if cacheDir == "" {
		cacheDir = defaultCertCache
	}
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}, nil
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) shutdownOnDone(ctx context.Context, servers ...*http.Server) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := ignoreClosed(srv.Shutdown(shutdownCtx)); err != nil {
			s.logger.Warn("shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
