package feed

import (
	"testing"
	"time"
)

type fakeDedupStore struct {
	cached map[string]bool
}

func newFakeDedupStore(links ...string) *fakeDedupStore {
	cached := make(map[string]bool)
	for _, link := range links {
		cached[link] = true
	}
	return &fakeDedupStore{cached: cached}
}

func (s *fakeDedupStore) Has(feedURL, entryLink string) (bool, error) {
	return s.cached[feedURL+"|"+entryLink], nil
}

func fixedDetector(dedup DedupStore, now time.Time) *Detector {
	d := NewDetector(dedup)
	d.now = func() time.Time { return now }
	return d
}

func entryAt(link string, published *time.Time) Entry {
	return Entry{Link: link, Title: link, PublishedAt: published}
}

func TestDetectorSelectsUncachedEntries(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)

	detector := fixedDetector(newFakeDedupStore(), now)
	selected, err := detector.Run("https://example.com/feed", []Entry{
		entryAt("https://example.com/a", &recent),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(selected) != 1 || selected[0].Link != "https://example.com/a" {
		t.Errorf("Expected [a], got %v", selected)
	}
}

func TestDetectorNeverReselectsCachedEntries(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	entries := []Entry{entryAt("https://example.com/a", &recent)}

	dedup := newFakeDedupStore("https://example.com/feed|https://example.com/a")
	detector := fixedDetector(dedup, now)

	selected, err := detector.Run("https://example.com/feed", entries)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(selected) != 0 {
		t.Errorf("Expected cached entry to be skipped, got %v", selected)
	}
}

func TestDetectorCapsConsideredEntries(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)

	var entries []Entry
	for _, link := range []string{"e1", "e2", "e3", "e4", "e5", "e6"} {
		entries = append(entries, entryAt("https://example.com/"+link, &recent))
	}

	detector := fixedDetector(newFakeDedupStore(), now)
	selected, err := detector.Run("https://example.com/feed", entries)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(selected) != CheckLimit {
		t.Errorf("Expected at most %d entries, got %d", CheckLimit, len(selected))
	}
}

func TestDetectorRecencyWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-72 * time.Hour)
	fresh := now.Add(-time.Hour)

	tests := []struct {
		name     string
		entry    Entry
		selected bool
	}{
		{"older than window is excluded", entryAt("https://example.com/old", &stale), false},
		{"inside window is included", entryAt("https://example.com/new", &fresh), true},
		{"no timestamp is always included", entryAt("https://example.com/undated", nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := fixedDetector(newFakeDedupStore(), now)
			selected, err := detector.Run("https://example.com/feed", []Entry{tt.entry})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got := len(selected) == 1; got != tt.selected {
				t.Errorf("Expected selected=%v for %s, got %v", tt.selected, tt.entry.Link, got)
			}
		})
	}
}

func TestDetectorReturnsChronologicalOrder(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	t3 := now.Add(-1 * time.Hour)
	t2 := now.Add(-2 * time.Hour)
	t1 := now.Add(-3 * time.Hour)

	// Fetch order: newest first
	entries := []Entry{
		entryAt("https://example.com/new3", &t3),
		entryAt("https://example.com/new2", &t2),
		entryAt("https://example.com/new1", &t1),
	}

	detector := fixedDetector(newFakeDedupStore(), now)
	selected, err := detector.Run("https://example.com/feed", entries)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://example.com/new1", "https://example.com/new2", "https://example.com/new3"}
	if len(selected) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(selected))
	}
	for i, link := range want {
		if selected[i].Link != link {
			t.Errorf("Expected selected[%d] = %s, got %s", i, link, selected[i].Link)
		}
	}
}

func TestDetectorSkipsEntriesWithoutLink(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	detector := fixedDetector(newFakeDedupStore(), now)
	selected, err := detector.Run("https://example.com/feed", []Entry{
		{Title: "no link"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(selected) != 0 {
		t.Errorf("Expected entries without a link to be skipped, got %v", selected)
	}
}
