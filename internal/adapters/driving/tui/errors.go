package tui

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("tui: ingest service is required")

// ErrMissingQuestionService is returned when the question service is not provided.
var ErrMissingQuestionService = errors.New("tui: question service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrSessionNotReady is returned when a request arrives before the session
// has started.
var ErrSessionNotReady = errors.New("tui: session not started yet")
