package selector

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/scrapedeck/scrapedeck/models"
)

// QueryCSS matches the parsed selector against rawHTML and returns one
// Element per match, in document order.
func QueryCSS(rawHTML string, p Parsed) ([]Element, error) {
	sel, err := cascadia.Parse(p.Query)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSelector, "invalid CSS selector", err)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse page HTML", err)
	}

	matches := cascadia.QueryAll(doc, sel)
	elements := make([]Element, 0, len(matches))
	for _, node := range matches {
		el := Element{
			Text: goquery.NewDocumentFromNode(node).Text(),
			HTML: renderNode(node),
		}
		if p.Shape == models.ShapeValue {
			el.Attr, el.HasAttr = findAttr(node, p.Attr)
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func renderNode(node *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}
	return buf.String()
}

func findAttr(node *html.Node, name string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}
