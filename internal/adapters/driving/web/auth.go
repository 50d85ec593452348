package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/logger"
)

const (
	authCookie = "auth"
	sessionKey = "session"
)

// signToken issues an HS256 token with the session ID as subject.
func signToken(sessionID string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseToken validates a token and returns its subject.
func parseToken(tok string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tok, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// extractToken reads a Bearer header, then the auth cookie.
func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if ck, err := c.Cookie(authCookie); err == nil {
		return ck.Value
	}
	return ""
}

// requireSession resolves the caller's session and stores it on the context.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok := extractToken(c)
		if tok == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		id, err := parseToken(tok, s.secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		session, err := s.ports.Sessions.Get(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
			}
			return err
		}
		c.Set(sessionKey, session)
		return next(c)
	}
}

func currentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionKey).(*domain.Session)
	return session
}

func (s *Server) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Username) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	session, err := s.ports.Sessions.Start(c.Request().Context(), req.Username, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	signed, err := signToken(session.ID, s.secret, s.cfg.TokenTTL)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     authCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.cfg.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+signed)
	logger.Info("session %s started for %s", session.ID, session.Username)
	return c.JSON(http.StatusOK, LoginResponse{Token: signed, Session: summarize(session)})
}

// logout ends the caller's session if the token is valid and always
// expires the cookie.
func (s *Server) logout(c echo.Context) error {
	if tok := extractToken(c); tok != "" {
		if id, err := parseToken(tok, s.secret); err == nil {
			if err := s.ports.Sessions.End(c.Request().Context(), id); err != nil {
				logger.Debug("logout %s: %v", id, err)
			}
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusOK)
}
