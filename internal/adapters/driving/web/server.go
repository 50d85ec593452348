// Package web serves the repoqa HTTP API.
//
// A login creates a session and returns a signed JWT whose subject is the
// session ID. The token is accepted as a Bearer header or the "auth"
// cookie. Every other /api route operates on that session.
package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
	"github.com/custodia-labs/repoqa/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Ports aggregates the driving ports the API uses.
type Ports struct {
	Sessions driving.SessionService
	Ingest   driving.IngestService
	Question driving.QuestionService
}

// Validate ensures all ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Sessions == nil || p.Ingest == nil || p.Question == nil {
		return errors.New("web: sessions, ingest and question services are required")
	}
	return nil
}

// Config configures the server.
type Config struct {
	Listen string

	// JWTSecret signs login tokens. When empty a random secret is
	// generated, so tokens do not survive a restart.
	JWTSecret string

	// TokenTTL is the lifetime of a login token. Default 24h.
	TokenTTL time.Duration

	// SecureCookie marks the auth cookie Secure.
	SecureCookie bool

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP API.
type Server struct {
	echo   *echo.Echo
	ports  *Ports
	cfg    Config
	secret []byte
}

// New builds the server and registers its routes.
func New(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		logger.Warn("no JWT secret configured; login tokens are valid until restart")
	}

	s := &Server{
		echo:   echo.New(),
		ports:  ports,
		cfg:    cfg,
		secret: secret,
	}
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("%s %s %d %s", v.Method, v.URIPath, v.Status, v.Latency)
			return nil
		},
	}))
	e.HTTPErrorHandler = errorHandler

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if s.cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.cfg.Metrics))
	}

	api := e.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)

	protected := api.Group("", s.requireSession)
	protected.GET("/session", s.getSession)
	protected.POST("/repository", s.fetchRepository)
	protected.POST("/repository/refresh", s.refreshRepository)
	protected.POST("/ask", s.ask)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// errorHandler renders every error as {"error": msg}.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	case errors.Is(err, domain.ErrSessionNotFound):
		code = http.StatusUnauthorized
		msg = "session expired, log in again"
	}

	req := c.Request()
	if code >= http.StatusInternalServerError {
		logger.Error("%d %s %s: %v", code, req.Method, req.URL.Path, err)
	} else {
		logger.Debug("%d %s %s: %v", code, req.Method, req.URL.Path, err)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, ErrorResponse{Error: msg})
	}
}
