package render

import (
	"strings"
	"testing"
	"time"
)

func TestCodeTemplate(t *testing.T) {
	html, err := CodeTemplate(`fmt.Println("hello")`, "go")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(html, `id="render-complete"`) {
		t.Error("Expected render-complete sentinel in document")
	}
	if !strings.Contains(html, "language-tag") {
		t.Error("Expected language tag in document")
	}
	if !strings.Contains(html, "Println") {
		t.Error("Expected highlighted code to contain the source text")
	}
}

func TestCodeTemplateUnknownLanguage(t *testing.T) {
	html, err := CodeTemplate("some plain text", "definitely-not-a-language")
	if err != nil {
		t.Fatalf("Expected fallback lexer, got error: %v", err)
	}
	if !strings.Contains(html, "some plain text") {
		t.Error("Expected source text to survive fallback highlighting")
	}
}

func TestCodeTemplateEscapesLanguage(t *testing.T) {
	html, err := CodeTemplate("x", `<script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("Expected language name to be escaped")
	}
}

func TestMarkdownTemplate(t *testing.T) {
	html, err := MarkdownTemplate("# Heading\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(html, "<h1") {
		t.Error("Expected heading to be converted")
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Error("Expected bold text to be converted")
	}
	if !strings.Contains(html, `id="render-complete"`) {
		t.Error("Expected render-complete sentinel in document")
	}
}

func TestMarkdownTemplateGFMTable(t *testing.T) {
	html, err := MarkdownTemplate("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("Expected GFM table to be converted")
	}
}

func TestEntryTemplate(t *testing.T) {
	published := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	html := EntryTemplate(EntryDocument{
		Title:       "A <Title> With Markup",
		SourceTitle: "Example Blog",
		PublishedAt: &published,
		BodyHTML:    `<p>Body text</p><script>alert("xss")</script>`,
	})

	if !strings.Contains(html, "A &lt;Title&gt; With Markup") {
		t.Error("Expected title to be escaped")
	}
	if !strings.Contains(html, "Example Blog") {
		t.Error("Expected source title in document")
	}
	if !strings.Contains(html, "2024-06-01 09:30") {
		t.Error("Expected published timestamp in document")
	}
	if !strings.Contains(html, "<p>Body text</p>") {
		t.Error("Expected body HTML to be preserved")
	}
	if strings.Contains(html, "<script>") {
		t.Error("Expected script tags to be sanitized away")
	}
	if !strings.Contains(html, `id="render-complete"`) {
		t.Error("Expected render-complete sentinel in document")
	}
}

func TestEntryTemplateWithoutMetadata(t *testing.T) {
	html := EntryTemplate(EntryDocument{Title: "Bare entry"})
	if strings.Contains(html, "entry-meta") {
		t.Error("Expected no metadata line for a bare entry")
	}
}
