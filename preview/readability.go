package preview

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minArticleLength is the minimum TextContent length for reader-mode
// output to be considered valid. Below it we assume the algorithm
// missed the main content and fall back to the raw page.
const minArticleLength = 50

// extractArticle runs the Mozilla Readability algorithm on rawHTML.
// A preview must never fail just because extraction choked, so every
// error path falls back to the raw HTML. The second return value
// reports whether real extraction happened.
func extractArticle(rawHTML, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("preview: invalid source URL, using raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("preview: extraction failed, using raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawArticle(rawHTML), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		slog.Warn("preview: extracted content too short, using raw HTML",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return rawArticle(rawHTML), false
	}

	return article, true
}

func rawArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: rawHTML,
	}
}
