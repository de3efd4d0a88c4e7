package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("storage: key not found")

// ContentStore abstracts the bucket-style persistence layer used for
// knowledge-base snapshots, cache entries and custom section content.
// Keys are slash-separated paths.
type ContentStore interface {
	// Read returns the content at the given key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores content at the given key, overwriting any existing value.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the content at the given key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

const (
	snapshotPrefix = "knowledge_base/"
	customDocsDir  = "custom_docs"
	cachePrefix    = "cache/"
)

// SnapshotKey returns the store key for a knowledge-base snapshot version.
func SnapshotKey(version string) string {
	return snapshotPrefix + version + ".snapshot"
}

// SnapshotPrefix returns the prefix under which all snapshots live.
func SnapshotPrefix() string { return snapshotPrefix }

// CustomDocKey returns the store key for a custom section's markdown,
// following the custom_docs/{repo}/{section}.md convention.
func CustomDocKey(repoName, section string) string {
	return fmt.Sprintf("%s/%s/%s.md", customDocsDir, repoName, sanitizeSegment(section))
}

// CacheKey returns the store key for a cache entry fingerprint.
func CacheKey(fingerprint string) string {
	return cachePrefix + fingerprint + ".json"
}

var invalidSegmentChars = regexp.MustCompile(`[<>:"/\\|?*\s]+`)

// sanitizeSegment makes a section name safe for use as a single key segment.
func sanitizeSegment(s string) string {
	s = invalidSegmentChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}
