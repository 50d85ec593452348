package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIdentifier indicates a repository identifier that does not
	// parse as owner/name.
	ErrInvalidIdentifier = errors.New("invalid repository identifier: expected 'owner/name'")

	// ErrUnsupportedType indicates an unknown provider or strategy name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config key not found")

	// ErrLLMUnavailable indicates the LLM provider is not configured or failed.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured or failed.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Fetch errors. Returned wrapped in *FetchError.

	// ErrResourceNotFound indicates the repository is missing, private or empty.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrAccessDenied indicates insufficient permission on the repository.
	ErrAccessDenied = errors.New("access denied")

	// ErrNetworkFailure indicates the content source could not be reached.
	ErrNetworkFailure = errors.New("network failure")

	// ErrUnexpectedStatus indicates a response status with no specific mapping.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrNoFiles indicates a fetch that found no text files.
	ErrNoFiles = errors.New("no text files found in repository")

	// Capability errors. Logged, never returned to callers of the
	// question pipeline.

	// ErrClassificationFailure indicates the query router could not label a question.
	ErrClassificationFailure = errors.New("classification failed")

	// ErrCompositionFailure indicates the answer composer could not produce an answer.
	ErrCompositionFailure = errors.New("answer composition failed")

	// Session errors.

	// ErrSessionNotFound indicates an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoRepository indicates a question asked before any repository was fetched.
	ErrNoRepository = errors.New("no repository loaded: fetch a repository first")

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrUnauthorized indicates a missing or invalid login.
	ErrUnauthorized = errors.New("unauthorized")
)

// FetchErrorKind classifies a repository fetch failure.
type FetchErrorKind int

// Fetch failure kinds.
const (
	FetchResourceNotFound FetchErrorKind = iota + 1
	FetchAccessDenied
	FetchNetworkFailure
	FetchUnexpectedStatus
)

// String returns the taxonomy name of the kind.
func (k FetchErrorKind) String() string {
	switch k {
	case FetchResourceNotFound:
		return "ResourceNotFound"
	case FetchAccessDenied:
		return "AccessDenied"
	case FetchNetworkFailure:
		return "NetworkFailure"
	case FetchUnexpectedStatus:
		return "UnexpectedStatus"
	default:
		return "Unknown"
	}
}

func (k FetchErrorKind) sentinel() error {
	switch k {
	case FetchResourceNotFound:
		return ErrResourceNotFound
	case FetchAccessDenied:
		return ErrAccessDenied
	case FetchNetworkFailure:
		return ErrNetworkFailure
	default:
		return ErrUnexpectedStatus
	}
}

// NotFoundReason distinguishes the two not-found sub-cases.
type NotFoundReason string

const (
	// ReasonPrivateOrMissing is reported when no credential was supplied.
	ReasonPrivateOrMissing NotFoundReason = "private_or_missing"

	// ReasonEmpty is reported when a credential was supplied, so a private
	// repository should have been visible.
	ReasonEmpty NotFoundReason = "empty"
)

// FetchError is a typed repository fetch failure. It matches the sentinel
// for its kind with errors.Is.
type FetchError struct {
	Kind       FetchErrorKind
	Reason     NotFoundReason // ResourceNotFound only
	StatusCode int
	URL        string
	Detail     string // response body for AccessDenied
	// RateLimited marks AccessDenied caused by an exhausted API quota.
	RateLimited bool
	Err         error
}

// NewNotFoundError builds a ResourceNotFound error. The reason depends on
// whether the request carried a credential.
func NewNotFoundError(url string, withCredential bool) *FetchError {
	reason := ReasonPrivateOrMissing
	if withCredential {
		reason = ReasonEmpty
	}
	return &FetchError{Kind: FetchResourceNotFound, Reason: reason, StatusCode: 404, URL: url}
}

// NewAccessDeniedError builds an AccessDenied error carrying the response body.
func NewAccessDeniedError(url, detail string) *FetchError {
	return &FetchError{Kind: FetchAccessDenied, StatusCode: 403, URL: url, Detail: detail}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(url string, err error) *FetchError {
	return &FetchError{Kind: FetchNetworkFailure, URL: url, Err: err}
}

// NewUnexpectedStatusError builds the catch-all status error.
func NewUnexpectedStatusError(url string, status int) *FetchError {
	return &FetchError{Kind: FetchUnexpectedStatus, StatusCode: status, URL: url}
}

// Error renders the human-readable cause.
func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchResourceNotFound:
		if e.Reason == ReasonEmpty {
			return "repository not found or it may be empty; if it is private, ensure your token has access"
		}
		return "repository not found or it may be private; try providing a GitHub token"
	case FetchAccessDenied:
		if e.Detail == "" {
			return fmt.Sprintf("access denied (%d)", e.StatusCode)
		}
		return fmt.Sprintf("access denied (%d): %s", e.StatusCode, e.Detail)
	case FetchNetworkFailure:
		if e.Err == nil {
			return "network error"
		}
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
	}
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// NeedsCredential reports whether supplying (or changing) a GitHub token
// could resolve the failure.
func (e *FetchError) NeedsCredential() bool {
	switch e.Kind {
	case FetchResourceNotFound:
		return e.Reason == ReasonPrivateOrMissing
	case FetchAccessDenied:
		return true
	default:
		return false
	}
}

// NeedsCredential reports whether err is a fetch failure a token could fix.
func NeedsCredential(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.NeedsCredential()
	}
	return false
}
