package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// sessionURI is the resource describing the loaded repository.
const sessionURI = "repoqa://session"

// sessionInfo is the JSON body of the session resource.
type sessionInfo struct {
	Repository string     `json:"repository,omitempty"`
	URL        string     `json:"url,omitempty"`
	Files      []fileInfo `json:"files"`
	Truncated  bool       `json:"truncated"`
	Indexed    bool       `json:"indexed"`
	NeedsToken bool       `json:"needs_token"`
}

type fileInfo struct {
	Path     string `json:"path"`
	Segments int    `json:"segments"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         sessionURI,
		Name:        "session",
		Description: "The fetched repository and its indexed files",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleSessionResource describes the loaded repository.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(describeSession(s.peekSession()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling session: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// describeSession summarises a session; nil yields an empty summary.
func describeSession(session *domain.Session) sessionInfo {
	info := sessionInfo{Files: []fileInfo{}}
	if session == nil {
		return info
	}

	info.NeedsToken = session.CredentialRequired
	if !session.HasRepository() {
		return info
	}
	info.Repository = session.Repository.String()
	info.URL = session.Repository.URL()
	info.Truncated = session.Truncated
	info.Indexed = session.Indexed

	counts := make(map[string]int)
	for i := range session.Segments {
		counts[session.Segments[i].SourcePath]++
	}
	for p, n := range counts {
		info.Files = append(info.Files, fileInfo{Path: p, Segments: n})
	}
	sort.Slice(info.Files, func(i, j int) bool {
		return info.Files[i].Path < info.Files[j].Path
	})
	return info
}
