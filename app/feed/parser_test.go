package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <guid>item-2</guid>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	entry1 := entries[0]
	if entry1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", entry1.Title)
	}
	if entry1.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", entry1.Link)
	}
	if entry1.SourceTitle != "Test Feed" {
		t.Errorf("Expected source title 'Test Feed', got: %s", entry1.SourceTitle)
	}
	if entry1.PublishedAt == nil {
		t.Error("Expected published timestamp to be parsed")
	}

	// Undated entries keep a nil timestamp rather than a zero value
	if entries[1].PublishedAt != nil {
		t.Errorf("Expected nil timestamp for undated entry, got: %v", entries[1].PublishedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>entry-1</id>
    <updated>2023-07-03T11:00:00Z</updated>
    <content type="html">&lt;p&gt;Entry content&lt;/p&gt;</content>
  </entry>
</feed>`

	parser := NewParser()
	entries, err := parser.Run([]byte(atomData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Title != "Test Entry" {
		t.Errorf("Expected title 'Test Entry', got: %s", entry.Title)
	}
	if entry.Link != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", entry.Link)
	}
	if entry.Content == "" {
		t.Error("Expected entry content to be preserved")
	}
	// Atom <updated> backfills the missing published timestamp
	if entry.PublishedAt == nil {
		t.Error("Expected updated timestamp to backfill PublishedAt")
	}
}

func TestParseInvalidData(t *testing.T) {
	parser := NewParser()
	if _, err := parser.Run([]byte("not a feed")); err == nil {
		t.Error("Expected parse error for invalid data")
	}
}

func TestEntryBody(t *testing.T) {
	entry := Entry{Summary: "summary", Content: "content"}
	if entry.Body() != "content" {
		t.Errorf("Expected content to win over summary, got: %s", entry.Body())
	}

	entry = Entry{Summary: "summary"}
	if entry.Body() != "summary" {
		t.Errorf("Expected summary fallback, got: %s", entry.Body())
	}
}
