package push

import (
	"time"
)

// Outcome types for one push cycle. Inner loops report per-item results
// instead of failing past their own scope, so one broken feed, entry, or
// destination never affects its siblings.

type DestinationOutcome struct {
	Destination string
	Rendered    bool
	Err         error
}

type EntryOutcome struct {
	Link         string
	Title        string
	Destinations []DestinationOutcome
}

type FeedOutcome struct {
	FeedURL string
	Err     error // fetch or detection failure; the feed was skipped
	Entries []EntryOutcome
}

type CycleOutcome struct {
	StartedAt time.Time
	Duration  time.Duration
	Feeds     []FeedOutcome
}

// Delivered counts destination sends that succeeded across the cycle.
func (c CycleOutcome) Delivered() int {
	count := 0
	for _, feed := range c.Feeds {
		for _, entry := range feed.Entries {
			for _, dest := range entry.Destinations {
				if dest.Err == nil {
					count++
				}
			}
		}
	}
	return count
}

// Failed counts destination sends that failed across the cycle.
func (c CycleOutcome) Failed() int {
	count := 0
	for _, feed := range c.Feeds {
		for _, entry := range feed.Entries {
			for _, dest := range entry.Destinations {
				if dest.Err != nil {
					count++
				}
			}
		}
	}
	return count
}

// SkippedFeeds counts feeds whose fetch or detection failed this cycle.
func (c CycleOutcome) SkippedFeeds() int {
	count := 0
	for _, feed := range c.Feeds {
		if feed.Err != nil {
			count++
		}
	}
	return count
}
