package feed

import (
	"time"
)

// Entry is one feed item as produced by a fetch. Entries are ephemeral and
// rebuilt on every poll; identity for dedup purposes is (feed URL, Link).
type Entry struct {
	Link        string
	Title       string
	Summary     string
	Content     string
	PublishedAt *time.Time
	SourceTitle string
}

// Body returns the richest text available for the entry.
func (e Entry) Body() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Summary
}
