// Package analysis turns the source files stored under a repository prefix
// into a model-generated review and stores the result next to them.
package analysis

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"repo-analyzer/packages/logging"
	"repo-analyzer/packages/storage"
	"repo-analyzer/types"
)

// Source is the concatenated source blob built from a bucket prefix.
type Source struct {
	Code     string
	Included []types.SourceFile
	Skipped  []string
}

// Filter selects the stored objects that feed a prompt.
type Filter struct {
	Extensions []string
	// MaxBytes caps the blob; 0 means no limit.
	MaxBytes int
	// SkipBinary drops matching files whose contents look binary.
	SkipBinary bool
}

// Collect lists prefix in bucket, keeps keys whose extension is one of
// f.Extensions and concatenates their contents in listing order. Each file
// contributes "\n// File: <key>\n<contents>\n". When f.MaxBytes is positive a
// file whose section would grow the blob past it is skipped.
func Collect(ctx context.Context, bucket storage.Bucket, prefix string, f Filter) (*Source, error) {
	log := logging.FromContext(ctx)

	keys, err := bucket.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", bucket.Name(), prefix, err)
	}

	src := &Source{}
	var sb strings.Builder
	for _, key := range keys {
		if !MatchesExtension(key, f.Extensions) {
			continue
		}

		data, err := bucket.Read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", key, err)
		}

		if f.SkipBinary && isBinary(data) {
			log.Warn("Skipping binary file", "key", key, "size", len(data))
			src.Skipped = append(src.Skipped, key)
			continue
		}

		section := fileSection(key, data)
		if f.MaxBytes > 0 && sb.Len()+len(section) > f.MaxBytes {
			log.Warn("Skipping file that does not fit the prompt",
				"key", key, "size", len(data), "limit", f.MaxBytes)
			src.Skipped = append(src.Skipped, key)
			continue
		}

		sb.WriteString(section)
		src.Included = append(src.Included, types.SourceFile{Key: key, Size: len(data), Language: Language(key)})
	}

	src.Code = sb.String()
	return src, nil
}

// Languages counts the included files by language.
func (s *Source) Languages() map[string]int {
	out := make(map[string]int)
	for _, f := range s.Included {
		out[f.Language]++
	}
	return out
}

// MatchesExtension reports whether key ends in one of exts. The comparison
// is case-sensitive, so "Main.JAVA" does not match ".java".
func MatchesExtension(key string, exts []string) bool {
	ext := path.Ext(key)
	return ext != "" && slices.Contains(exts, ext)
}

func fileSection(key string, data []byte) string {
	return "\n// File: " + key + "\n" + string(data) + "\n"
}
