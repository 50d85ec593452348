package domain

import (
	"path"
	"strings"
)

// FileTypeOther tags files whose extension is outside the known set.
const FileTypeOther = "other"

// knownFileTypes is the extension allow-list. Classification picks split
// heuristics and tags segments; it never rejects a file.
var knownFileTypes = map[string]bool{
	"py": true, "ipynb": true, "html": true, "htm": true,
	"js": true, "ts": true, "jsx": true, "tsx": true,
	"php": true, "java": true, "c": true, "cpp": true, "cs": true,
	"go": true, "rb": true, "rs": true, "swift": true, "kt": true, "kts": true,
	"css": true, "scss": true,
	"json": true, "yaml": true, "yml": true, "toml": true, "ini": true,
	"sh": true, "bat": true, "ps1": true, "sql": true, "xml": true,
	"md": true, "txt": true, "env": true,
}

// Extension returns the lowercase extension of p's base name without the
// dot, or "" when there is none.
func Extension(p string) string {
	ext := path.Ext(path.Base(p))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileTypeOf classifies an extension against the allow-list.
func FileTypeOf(ext string) string {
	ext = strings.ToLower(ext)
	if knownFileTypes[ext] {
		return ext
	}
	return FileTypeOther
}

// Segment is a bounded slice of a file's text tagged with source metadata.
// Start and End are byte offsets of Text within the file content.
type Segment struct {
	ID         string
	Text       string
	SourcePath string
	FileName   string
	Directory  string
	FileType   string
	Index      int
	Start      int
	End        int
}

// SegmentMetadata derives file name and directory from a repository path.
// Root-level files have an empty directory.
func SegmentMetadata(p string) (fileName, directory string) {
	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	return path.Base(p), dir
}

// Reassemble joins one file's ordered segments, dropping the overlap each
// segment shares with its predecessor.
func Reassemble(segments []Segment) string {
	var b strings.Builder
	end := 0
	for i, s := range segments {
		if i == 0 || s.Start >= end {
			b.WriteString(s.Text)
		} else if s.End > end {
			b.WriteString(s.Text[end-s.Start:])
		}
		if s.End > end {
			end = s.End
		}
	}
	return b.String()
}

// Sources returns the distinct source paths of segments in first-seen order.
func Sources(segments []Segment) []string {
	seen := make(map[string]bool, len(segments))
	var out []string
	for _, s := range segments {
		if !seen[s.SourcePath] {
			seen[s.SourcePath] = true
			out = append(out, s.SourcePath)
		}
	}
	return out
}
