// Package domain defines the core business entities for repoqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepoRef: A parsed owner/name repository identifier
//   - FileMap: Decoded text files of a repository keyed by path
//   - Segment: A bounded slice of a file prepared for retrieval
//   - Route: The file-type label a question is narrowed to
//   - Session: Per-user state (repository, credential, segments)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
