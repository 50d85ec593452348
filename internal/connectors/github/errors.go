package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// maxDetailBytes bounds how much of an error body is kept as detail.
const maxDetailBytes = 4096

// errQuotaExhausted is returned by the rate limiter when the last response
// reported no remaining requests before the reset time.
var errQuotaExhausted = errors.New("API rate limit exhausted")

// wrapError converts go-github and transport errors into *domain.FetchError.
func (c *Client) wrapError(err error, target string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, errQuotaExhausted) {
		fe := domain.NewAccessDeniedError(target, fmt.Sprintf(
			"%v; resets at %s", err, c.rateLimiter.ResetTime().Format("15:04:05")))
		fe.RateLimited = true
		return fe
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		fe := domain.NewAccessDeniedError(target, rateLimitErr.Message)
		fe.RateLimited = true
		return fe
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		fe := domain.NewAccessDeniedError(target, abuseErr.Message)
		fe.RateLimited = true
		return fe
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			target = ghErr.Response.Request.URL.String()
		}
		switch code := ghErr.Response.StatusCode; code {
		case http.StatusNotFound:
			return domain.NewNotFoundError(target, c.Authenticated())
		case http.StatusUnauthorized, http.StatusForbidden:
			fe := domain.NewAccessDeniedError(target, responseDetail(ghErr))
			fe.StatusCode = code
			return fe
		default:
			return domain.NewUnexpectedStatusError(target, code)
		}
	}

	return domain.NewNetworkError(target, err)
}

// responseDetail returns the raw error body when go-github kept it,
// otherwise the parsed message.
func responseDetail(ghErr *gh.ErrorResponse) string {
	if body := ghErr.Response.Body; body != nil {
		data, err := io.ReadAll(io.LimitReader(body, maxDetailBytes))
		if err == nil {
			if detail := strings.TrimSpace(string(data)); detail != "" {
				return detail
			}
		}
	}
	return ghErr.Message
}
