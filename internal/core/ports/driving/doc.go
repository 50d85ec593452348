// Package driving holds the use-case interfaces the CLI, TUI, web and MCP
// adapters call: sessions, repository ingestion and questions.
//
// internal/core/services implements them.
package driving
