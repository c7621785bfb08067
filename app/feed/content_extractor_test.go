package feed

import (
	"strings"
	"testing"
)

func TestContentExtractorRun(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
	<nav>Site navigation that should not survive extraction</nav>
	<article>
		<h1>Test Article</h1>
		<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
		<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
	</article>
	<footer>Footer boilerplate</footer>
</body>
</html>`

	extractor := NewContentExtractor()
	content, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(content, "main content of the article") {
		t.Errorf("Expected article body in extracted content, got: %s", content)
	}
}

func TestContentExtractorEmptyInput(t *testing.T) {
	extractor := NewContentExtractor()
	if _, err := extractor.Run(nil); err == nil {
		t.Error("Expected error for empty input")
	}
}
