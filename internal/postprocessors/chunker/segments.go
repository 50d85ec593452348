package chunker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// splitFunc cuts one file's content into byte ranges.
type splitFunc func(ext, content string) []span

// eligible reports whether a file can be chunked. Files without an
// extension, blank files and invalid UTF-8 are skipped.
func eligible(path, content string) bool {
	if path == "" || domain.Extension(path) == "" {
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}
	return utf8.ValidString(content)
}

// splitFiles runs fn over every eligible file in path order. A file that
// fails to split is logged and skipped; the batch continues.
func splitFiles(ctx context.Context, strategy string, files domain.FileMap, fn splitFunc) ([]domain.Segment, error) {
	if files == nil {
		return nil, fmt.Errorf("%w: nil file map", domain.ErrInvalidInput)
	}

	var out []domain.Segment
	for _, p := range files.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := files[p]
		if !eligible(p, content) {
			logger.Debug("chunker[%s]: skipping %s", strategy, p)
			continue
		}

		segs, err := splitOne(p, content, fn)
		if err != nil {
			logger.Warn("chunker[%s]: skipping %s: %v", strategy, p, err)
			continue
		}
		out = append(out, segs...)
	}
	logger.Debug("chunker[%s]: %d files -> %d segments", strategy, len(files), len(out))
	return out, nil
}

func splitOne(p, content string, fn splitFunc) (segs []domain.Segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			segs, err = nil, fmt.Errorf("split failed: %v", r)
		}
	}()

	ext := domain.Extension(p)
	fileType := domain.FileTypeOf(ext)
	name, dir := domain.SegmentMetadata(p)

	for i, sp := range fn(ext, content) {
		segs = append(segs, domain.Segment{
			ID:         segmentID(p, i),
			Text:       content[sp.start:sp.end],
			SourcePath: p,
			FileName:   name,
			Directory:  dir,
			FileType:   fileType,
			Index:      i,
			Start:      sp.start,
			End:        sp.end,
		})
	}
	return segs, nil
}

func segmentID(p string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", p, index)))
	return hex.EncodeToString(sum[:16])
}
