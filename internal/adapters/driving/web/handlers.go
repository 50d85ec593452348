package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

func (s *Server) getSession(c echo.Context) error {
	return s.writeSession(c, currentSession(c).ID)
}

// writeSession responds with a locked snapshot of the session. Handlers
// never read the shared session directly while another request may be
// fetching into it.
func (s *Server) writeSession(c echo.Context, id string) error {
	snap, err := s.ports.Sessions.Snapshot(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
		}
		return err
	}
	return c.JSON(http.StatusOK, summarize(&snap))
}

func (s *Server) fetchRepository(c echo.Context) error {
	var req RepositoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session := currentSession(c)
	report, err := s.ports.Ingest.Fetch(c.Request().Context(), session, req.Repository, req.Token)
	if err != nil {
		resp := FetchErrorResponse{Error: err.Error()}
		if snap, serr := s.ports.Sessions.Snapshot(c.Request().Context(), session.ID); serr == nil {
			resp.NeedsToken = snap.CredentialRequired
		}
		return c.JSON(fetchStatus(err), resp)
	}

	return c.JSON(http.StatusOK, RepositoryResponse{
		Repository: report.Repository.String(),
		Fetched:    report.FilesFetched,
		Files:      report.FilesKept,
		Truncated:  report.Truncated,
		Segments:   report.Segments,
		Indexed:    report.Indexed,
		FromCache:  report.FromCache,
	})
}

func (s *Server) refreshRepository(c echo.Context) error {
	session := currentSession(c)
	if err := s.ports.Ingest.Refresh(c.Request().Context(), session); err != nil {
		return err
	}
	return s.writeSession(c, session.ID)
}

func (s *Server) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	answer, err := s.ports.Question.Ask(c.Request().Context(), currentSession(c), req.Question)
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return echo.NewHTTPError(http.StatusBadRequest, "question is empty")
	case errors.Is(err, domain.ErrNoRepository):
		return echo.NewHTTPError(http.StatusConflict, "fetch a repository first")
	case err != nil:
		return err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(http.StatusOK, AskResponse{
		Answer:   answer.Text,
		Route:    answer.Route.String(),
		Sources:  sources,
		Degraded: answer.Degraded,
	})
}

// fetchStatus maps a fetch failure to an HTTP status.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier),
		errors.Is(err, domain.ErrNoFiles),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNetworkFailure),
		errors.Is(err, domain.ErrUnexpectedStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
