// Package mcp provides an MCP (Model Context Protocol) server adapter for repoqa.
// It lets AI assistants fetch a GitHub repository and ask questions about it.
package mcp

import "errors"

var (
	// ErrMissingSessionService is returned when the session service is not provided.
	ErrMissingSessionService = errors.New("mcp: session service is required")

	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("mcp: ingest service is required")

	// ErrMissingQuestionService is returned when the question service is not provided.
	ErrMissingQuestionService = errors.New("mcp: question service is required")
)
