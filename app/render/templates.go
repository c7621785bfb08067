package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Pure HTML generation for the browser renderer. Every template embeds the
// #render-complete sentinel the screenshot stage waits on, so a capture can
// never race content that is still laying out.

const sentinel = `<div id="render-complete"></div>`

const themeColor = "#0f172a"

var languageColors = map[string]string{
	"javascript": "#eab308",
	"typescript": "#3b82f6",
	"python":     "#06b6d4",
	"html":       "#f97316",
	"css":        "#6366f1",
	"json":       "#10b981",
	"yaml":       "#f59e0b",
	"go":         "#22d3ee",
	"c":          "#60a5fa",
	"cpp":        "#4f46e5",
	"java":       "#ef4444",
	"kotlin":     "#ec4899",
	"rust":       "#fb923c",
	"bash":       "#9ca3af",
	"shell":      "#9ca3af",
	"sql":        "#34d399",
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithHardWraps(),
		goldmarkhtml.WithUnsafe(),
	),
)

var sanitizer = bluemonday.UGCPolicy()

// CodeTemplate renders a syntax-highlighted code snippet into a standalone
// HTML document.
func CodeTemplate(code, language string) (string, error) {
	if language == "" {
		language = "text"
	}

	highlighted, err := highlightCode(code, language)
	if err != nil {
		return "", fmt.Errorf("failed to highlight code: %w", err)
	}

	tagColor, ok := languageColors[strings.ToLower(language)]
	if !ok {
		tagColor = "#64748b"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body { background-color: %s; margin: 0; padding: 20px; font-family: "Fira Code", "JetBrains Mono", monospace; }
  .code-container {
    background-color: rgba(30, 41, 59, 0.8);
    border-radius: 10px;
    border: 1px solid rgba(255, 255, 255, 0.1);
    box-shadow: 0 0 20px rgba(0, 0, 0, 0.5);
    overflow: hidden;
  }
  .code-header {
    display: flex;
    align-items: center;
    padding: 10px 15px;
    border-bottom: 1px solid rgba(255, 255, 255, 0.1);
  }
  .language-tag {
    background-color: %s;
    color: white;
    padding: 3px 8px;
    border-radius: 5px;
    font-family: sans-serif;
    font-size: 14px;
  }
  .code-body { padding: 15px; font-size: 16px; line-height: 1.5; overflow-x: auto; }
  .code-body pre { margin: 0; }
</style>
</head>
<body>
<div class="code-container">
  <div class="code-header"><span class="language-tag">%s</span></div>
  <div class="code-body">%s</div>
</div>
%s
</body>
</html>`, themeColor, tagColor, html.EscapeString(language), highlighted, sentinel), nil
}

// MarkdownTemplate renders a Markdown document into a standalone HTML
// document.
func MarkdownTemplate(source string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	return documentTemplate(body.String()), nil
}

// EntryDocument is the rendered-entry input: the sanitized body plus the
// header metadata shown above it.
type EntryDocument struct {
	Title       string
	SourceTitle string
	Link        string
	PublishedAt *time.Time
	BodyHTML    string
}

// EntryTemplate renders a feed entry into a standalone HTML document. The
// body HTML is sanitized before embedding; everything else is escaped.
func EntryTemplate(doc EntryDocument) string {
	var header strings.Builder
	header.WriteString(fmt.Sprintf(`<h1>%s</h1>`, html.EscapeString(doc.Title)))

	var meta []string
	if doc.SourceTitle != "" {
		meta = append(meta, html.EscapeString(doc.SourceTitle))
	}
	if doc.PublishedAt != nil {
		meta = append(meta, doc.PublishedAt.Format("2006-01-02 15:04"))
	}
	if len(meta) > 0 {
		header.WriteString(fmt.Sprintf(`<p class="entry-meta">%s</p>`, strings.Join(meta, " · ")))
	}

	body := sanitizer.Sanitize(doc.BodyHTML)

	return documentTemplate(header.String() + body)
}

func documentTemplate(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body {
    background-color: %s;
    color: #e2e8f0;
    font-family: "Noto Sans SC", "Helvetica Neue", sans-serif;
    font-size: 18px;
    line-height: 1.6;
    margin: 0;
    padding: 20px;
    max-width: 720px;
  }
  h1, h2, h3, h4, h5, h6 { color: #f1f5f9; border-bottom: 1px solid #334155; padding-bottom: 5px; }
  a { color: #38bdf8; text-decoration: none; }
  img { max-width: 100%%; border-radius: 5px; }
  code { background-color: #1e293b; padding: 2px 5px; border-radius: 5px; }
  pre { background-color: #1e293b; padding: 15px; border-radius: 10px; overflow-x: auto; }
  pre code { padding: 0; }
  blockquote { border-left: 4px solid #334155; padding-left: 15px; color: #9ca3af; margin-left: 0; }
  .entry-meta { color: #9ca3af; font-size: 14px; }
</style>
</head>
<body>
%s
%s
</body>
</html>`, themeColor, body, sentinel)
}

func highlightCode(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github-dark")
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(
		chromahtml.WithLineNumbers(true),
		chromahtml.TabWidth(4),
	)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}

	return buf.String(), nil
}
