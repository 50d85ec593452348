package domain

import "time"

// Session is the per-user state threaded through ingest and question
// operations. One logical request runs against a session at a time.
type Session struct {
	ID       string
	Username string

	// Credential is the GitHub token supplied for this session, if any.
	Credential string

	// Repository is the currently loaded repository; zero before a fetch.
	Repository RepoRef

	// Segments is the full corpus of the loaded repository.
	Segments []Segment

	FileCount int
	Truncated bool

	// Indexed is false when embedding failed; questions then use the
	// whole corpus.
	Indexed bool

	// CredentialRequired is set when the last fetch failed in a way a
	// token could fix.
	CredentialRequired bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRepository reports whether a repository has been fetched and indexed.
func (s *Session) HasRepository() bool {
	return !s.Repository.IsZero() && len(s.Segments) > 0
}

// Reset clears repository state, keeping identity and credential.
func (s *Session) Reset() {
	s.Repository = RepoRef{}
	s.Segments = nil
	s.FileCount = 0
	s.Truncated = false
	s.Indexed = false
	s.CredentialRequired = false
}

// IngestReport summarises one fetch.
type IngestReport struct {
	Repository   RepoRef
	FilesFetched int
	FilesKept    int
	Truncated    bool
	Segments     int
	Indexed      bool
	FromCache    bool
	Duration     time.Duration
}

// Answer is the result of one question.
type Answer struct {
	Question string
	Text     string
	Route    Route
	Sources  []string
	// Degraded is true when the text is an error message from a failed
	// composition.
	Degraded bool
}
