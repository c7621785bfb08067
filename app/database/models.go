package database

import (
	"time"
)

// Subscription represents a feed subscription record. A subscription is
// identified by a stable opaque ID assigned at creation; the feed URL is
// unique across subscriptions. A subscription whose destination set is
// empty stays on disk and is simply never pushed to.
type Subscription struct {
	ID            string // Stable opaque identifier (UUID)
	URL           string // RSS/Atom feed URL, unique
	RenderAsImage bool
	Destinations  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Delivery records that an entry of a feed has been pushed. Once a record
// exists for (feed_url, entry_link) the entry is never pushed again.
type Delivery struct {
	FeedURL     string
	EntryLink   string
	DeliveredAt time.Time
}
