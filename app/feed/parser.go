package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw RSS/Atom data into entries in document order. Feeds
// conventionally list newest entries first, but nothing here re-sorts them.
func (p *Parser) Run(data []byte) ([]Entry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item, parsed.Title))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, feedTitle string) Entry {
	entry := Entry{
		Link:        item.Link,
		Title:       item.Title,
		Summary:     item.Description,
		Content:     item.Content,
		SourceTitle: feedTitle,
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = item.UpdatedParsed
	}

	return entry
}
