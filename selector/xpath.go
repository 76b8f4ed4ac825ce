package selector

import (
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/scrapedeck/scrapedeck/models"
)

// QueryXPath evaluates the expression against rawHTML and returns one
// Element per result node.
//
// Attribute selections like //a/@href come back from htmlquery as
// synthetic parentless nodes wrapping the value, so those surface the
// attribute value as both text and html, matching how scraping
// frameworks stringify attribute results.
func QueryXPath(rawHTML string, p Parsed) ([]Element, error) {
	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse page HTML", err)
	}

	nodes, err := htmlquery.QueryAll(doc, p.Query)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSelector, "invalid XPath expression", err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, node := range nodes {
		if node.Parent == nil {
			v := htmlquery.InnerText(node)
			elements = append(elements, Element{Text: v, HTML: v})
			continue
		}
		elements = append(elements, Element{
			Text: htmlquery.InnerText(node),
			HTML: htmlquery.OutputHTML(node, true),
		})
	}
	return elements, nil
}
