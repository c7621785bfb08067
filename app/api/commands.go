package api

import (
	"regexp"
	"strings"
)

type CommandKind int

const (
	CommandAdd CommandKind = iota
	CommandRemove
	CommandPull
	CommandList
	CommandAutoAdd
)

var (
	addPattern     = regexp.MustCompile(`^#rss添加\s*(\S+)$`)
	removePattern  = regexp.MustCompile(`^#rss移除\s*(\S+)$`)
	pullPattern    = regexp.MustCompile(`^#rss拉取\s*(\S+)$`)
	listPattern    = regexp.MustCompile(`^#rss列表$`)
	feedURLPattern = regexp.MustCompile(`(?i)(https?://\S+(?:\.atom|/feed))`)
)

type Command struct {
	Kind CommandKind
	Arg  string
}

// ParseCommand recognizes the chat command surface. A bare message
// containing a feed-looking URL (*.atom or */feed) triggers an auto-add.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)

	if m := addPattern.FindStringSubmatch(text); m != nil {
		return Command{Kind: CommandAdd, Arg: m[1]}, true
	}
	if m := removePattern.FindStringSubmatch(text); m != nil {
		return Command{Kind: CommandRemove, Arg: m[1]}, true
	}
	if m := pullPattern.FindStringSubmatch(text); m != nil {
		return Command{Kind: CommandPull, Arg: m[1]}, true
	}
	if listPattern.MatchString(text) {
		return Command{Kind: CommandList}, true
	}
	if m := feedURLPattern.FindStringSubmatch(text); m != nil {
		return Command{Kind: CommandAutoAdd, Arg: m[1]}, true
	}

	return Command{}, false
}
