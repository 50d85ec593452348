package domain

import (
	"sort"
	"unicode/utf8"
)

// FileRecord is one decoded text file of a repository.
type FileRecord struct {
	Path    string
	Content string
}

// FileMap maps repository paths to decoded text content.
// Treat it as immutable once returned by a content source.
type FileMap map[string]string

// Paths returns the keys in lexicographic order.
func (m FileMap) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Records returns the files as records ordered by path.
func (m FileMap) Records() []FileRecord {
	records := make([]FileRecord, 0, len(m))
	for _, p := range m.Paths() {
		records = append(records, FileRecord{Path: p, Content: m[p]})
	}
	return records
}

// Clone returns a shallow copy.
func (m FileMap) Clone() FileMap {
	out := make(FileMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TruncationPolicy selects which files survive when a repository has more
// files than the ingest limit.
type TruncationPolicy string

const (
	// TruncateByPath keeps the first files in lexicographic path order.
	TruncateByPath TruncationPolicy = "path"

	// TruncateSmallestFirst keeps the shortest files, ties broken by path.
	TruncateSmallestFirst TruncationPolicy = "smallest"
)

// IsValid returns true if the policy is recognised.
func (p TruncationPolicy) IsValid() bool {
	return p == TruncateByPath || p == TruncateSmallestFirst
}

// Truncate returns at most limit files selected by policy, and whether any
// were dropped. A limit <= 0 keeps everything. The result is the same for
// the same input regardless of map iteration order.
func (m FileMap) Truncate(limit int, policy TruncationPolicy) (FileMap, bool) {
	if limit <= 0 || len(m) <= limit {
		return m, false
	}

	paths := m.Paths()
	if policy == TruncateSmallestFirst {
		sort.SliceStable(paths, func(i, j int) bool {
			return utf8.RuneCountInString(m[paths[i]]) < utf8.RuneCountInString(m[paths[j]])
		})
	}

	out := make(FileMap, limit)
	for _, p := range paths[:limit] {
		out[p] = m[p]
	}
	return out, true
}
