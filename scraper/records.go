package scraper

import (
	"strings"

	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/selector"
)

// htmlSnippetLimit caps the html column of default-shaped records.
const htmlSnippetLimit = 200

// shapeRecords flattens selector matches into one-level records.
//
// The text shape drops matches whose text is empty after trimming. The
// attr shape drops matches lacking the attribute. The default shape
// keeps every match, trimming its text and capping the html snippet at
// htmlSnippetLimit runes.
func shapeRecords(elements []selector.Element, p selector.Parsed) []models.Record {
	records := make([]models.Record, 0, len(elements))
	for _, el := range elements {
		switch p.Shape {
		case models.ShapeText:
			text := strings.TrimSpace(el.Text)
			if text == "" {
				continue
			}
			records = append(records, models.Record{"text": text})

		case models.ShapeValue:
			if !el.HasAttr {
				continue
			}
			records = append(records, models.Record{"value": el.Attr})

		default:
			records = append(records, models.Record{
				"text": strings.TrimSpace(el.Text),
				"html": truncate(el.HTML, htmlSnippetLimit),
			})
		}
	}
	return records
}

// truncate caps s at n runes without splitting a multibyte character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
