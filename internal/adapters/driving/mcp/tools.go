package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FetchInput is the input schema for the fetch_repository tool.
type FetchInput struct {
	Repository string `json:"repository" jsonschema:"GitHub repository as owner/name or a github.com URL"`
	Token      string `json:"token,omitempty" jsonschema:"GitHub token for private repositories"`
}

// FetchOutput is the output schema for the fetch_repository tool.
type FetchOutput struct {
	Repository string `json:"repository"`
	Files      int    `json:"files"`
	Fetched    int    `json:"fetched"`
	Truncated  bool   `json:"truncated"`
	Segments   int    `json:"segments"`
	Indexed    bool   `json:"indexed"`
	FromCache  bool   `json:"from_cache"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"question about the fetched repository"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Route    string   `json:"route"`
	Sources  []string `json:"sources,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
}

// RefreshInput is the input schema for the refresh tool.
type RefreshInput struct{}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	Refreshed bool `json:"refreshed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_repository",
		Description: "Fetch and index a GitHub repository so questions can be asked about it",
	}, s.handleFetch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about the fetched repository",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Forget the fetched repository and its cached files",
	}, s.handleRefresh)
}

// handleFetch handles the fetch_repository tool invocation.
func (s *Server) handleFetch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchInput,
) (*mcp.CallToolResult, FetchOutput, error) {
	session, err := s.currentSession(ctx)
	if err != nil {
		return nil, FetchOutput{}, err
	}

	report, err := s.ports.Ingest.Fetch(ctx, session, input.Repository, input.Token)
	if err != nil {
		if session.CredentialRequired {
			return nil, FetchOutput{}, fmt.Errorf("%w (retry with a token)", err)
		}
		return nil, FetchOutput{}, err
	}

	return nil, FetchOutput{
		Repository: report.Repository.String(),
		Files:      report.FilesKept,
		Fetched:    report.FilesFetched,
		Truncated:  report.Truncated,
		Segments:   report.Segments,
		Indexed:    report.Indexed,
		FromCache:  report.FromCache,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	session, err := s.currentSession(ctx)
	if err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Question.Ask(ctx, session, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:   answer.Text,
		Route:    answer.Route.String(),
		Sources:  answer.Sources,
		Degraded: answer.Degraded,
	}, nil
}

// handleRefresh handles the refresh tool invocation.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	session := s.peekSession()
	if session == nil {
		return nil, RefreshOutput{}, nil
	}

	if err := s.ports.Ingest.Refresh(ctx, session); err != nil {
		return nil, RefreshOutput{}, err
	}
	return nil, RefreshOutput{Refreshed: true}, nil
}
