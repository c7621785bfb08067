package feed

import (
	"fmt"
	"time"
)

const (
	// CheckLimit bounds how many head entries of a poll are considered, so a
	// feed coming back from an outage cannot flood its destinations.
	CheckLimit = 3

	// RecencyWindow suppresses the burst of historical entries the first
	// time a feed is subscribed.
	RecencyWindow = 48 * time.Hour
)

// DedupStore is the read side of the delivery dedup cache.
type DedupStore interface {
	Has(feedURL, entryLink string) (bool, error)
}

// Detector selects which freshly fetched entries are due for delivery.
type Detector struct {
	dedup DedupStore
	now   func() time.Time
}

func NewDetector(dedup DedupStore) *Detector {
	return &Detector{
		dedup: dedup,
		now:   time.Now,
	}
}

// Run takes entries in fetch order (newest first by convention) and returns
// the deliverable subset in chronological order, oldest first, so that
// destinations read older news before newer news. At most CheckLimit head
// entries are considered per invocation.
func (d *Detector) Run(feedURL string, entries []Entry) ([]Entry, error) {
	limit := len(entries)
	if limit > CheckLimit {
		limit = CheckLimit
	}

	var selected []Entry
	for i := 0; i < limit; i++ {
		entry := entries[i]
		if entry.Link == "" {
			continue
		}

		cached, err := d.dedup.Has(feedURL, entry.Link)
		if err != nil {
			return nil, fmt.Errorf("failed to check dedup cache: %w", err)
		}
		if cached {
			continue
		}

		// Entries without a timestamp are accepted: rejecting undated
		// first-time entries would silently lose content.
		if entry.PublishedAt != nil && d.now().Sub(*entry.PublishedAt) >= RecencyWindow {
			continue
		}

		selected = append(selected, entry)
	}

	// Reverse into chronological order
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}

	return selected, nil
}
