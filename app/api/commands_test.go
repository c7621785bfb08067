package api

import (
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind CommandKind
		arg  string
		ok   bool
	}{
		{"add", "#rss添加 https://example.com/feed", CommandAdd, "https://example.com/feed", true},
		{"add without space", "#rss添加https://example.com/feed", CommandAdd, "https://example.com/feed", true},
		{"remove", "#rss移除 abc-123", CommandRemove, "abc-123", true},
		{"pull", "#rss拉取 https://example.com/feed", CommandPull, "https://example.com/feed", true},
		{"list", "#rss列表", CommandList, "", true},
		{"auto add feed suffix", "look at https://blog.example.com/feed", CommandAutoAdd, "https://blog.example.com/feed", true},
		{"auto add atom suffix", "https://example.com/posts.atom", CommandAutoAdd, "https://example.com/posts.atom", true},
		{"auto add case insensitive", "HTTPS://EXAMPLE.COM/FEED", CommandAutoAdd, "HTTPS://EXAMPLE.COM/FEED", true},
		{"plain url is not a command", "https://example.com/article", 0, "", false},
		{"plain text is not a command", "hello there", 0, "", false},
		{"add without url is not a command", "#rss添加", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, ok := ParseCommand(tt.text)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !tt.ok {
				return
			}
			if command.Kind != tt.kind {
				t.Errorf("Expected kind %d, got %d", tt.kind, command.Kind)
			}
			if command.Arg != tt.arg {
				t.Errorf("Expected arg '%s', got '%s'", tt.arg, command.Arg)
			}
		})
	}
}

func TestIsValidFeedURL(t *testing.T) {
	valid := []string{"https://example.com/feed", "http://example.com/posts.atom"}
	for _, u := range valid {
		if !isValidFeedURL(u) {
			t.Errorf("Expected '%s' to be valid", u)
		}
	}

	invalid := []string{"", "not a url", "ftp://example.com/feed", "https://"}
	for _, u := range invalid {
		if isValidFeedURL(u) {
			t.Errorf("Expected '%s' to be invalid", u)
		}
	}
}
