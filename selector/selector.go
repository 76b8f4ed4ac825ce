// Package selector parses panel selector expressions and runs them
// against fetched HTML. It supports two languages, CSS and XPath, and
// the scraping-framework extraction suffixes ::text and ::attr(name)
// on CSS selectors.
package selector

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"

	"github.com/scrapedeck/scrapedeck/models"
)

// Element is one selector match before record shaping.
type Element struct {
	// Text is the element's inner text, untrimmed. For XPath attribute
	// selections it holds the attribute value.
	Text string

	// HTML is the element's rendered outer HTML.
	HTML string

	// Attr is the extracted attribute value for ::attr selections.
	Attr string

	// HasAttr reports whether the element carried the requested attribute.
	HasAttr bool
}

// Parsed is a selector expression with its extraction convention split off.
type Parsed struct {
	// Query is the expression handed to the selector engine. For CSS it
	// has the ::text / ::attr(...) suffixes removed; XPath passes through
	// untouched since its axis syntax legitimately contains "::".
	Query string

	// Shape is the record layout the expression produces.
	Shape models.Shape

	// Attr is the attribute name for ::attr selections.
	Attr string
}

// Parse splits the extraction suffixes off a selector expression.
//
// The shape is sniffed from the whole expression: ::text anywhere wins,
// then ::attr(, otherwise the default text+html shape. A selector mixing
// both conventions across comma parts is shaped entirely by the first
// convention found; this is a known limitation of the suffix syntax.
func Parse(raw, selectorType string) Parsed {
	p := Parsed{Query: strings.TrimSpace(raw), Shape: models.ShapeDefault}
	switch {
	case strings.Contains(raw, "::text"):
		p.Shape = models.ShapeText
	case strings.Contains(raw, "::attr("):
		p.Shape = models.ShapeValue
		p.Attr = attrName(raw)
	}
	if selectorType == models.SelectorXPath {
		return p
	}
	if strings.Contains(p.Query, "::") {
		p.Query = stripSuffixes(p.Query)
	}
	return p
}

// Run parses rawHTML and executes the selector in its language.
func Run(rawHTML string, p Parsed, selectorType string) ([]Element, error) {
	if selectorType == models.SelectorXPath {
		return QueryXPath(rawHTML, p)
	}
	return QueryCSS(rawHTML, p)
}

// Validate compiles the expression without running it, so syntax errors
// surface before any fetch happens.
func Validate(p Parsed, selectorType string) error {
	if selectorType == models.SelectorXPath {
		if _, err := xpath.Compile(p.Query); err != nil {
			return models.NewScrapeError(models.ErrCodeSelector, "invalid XPath expression", err)
		}
		return nil
	}
	if _, err := cascadia.Parse(p.Query); err != nil {
		return models.NewScrapeError(models.ErrCodeSelector, "invalid CSS selector", err)
	}
	return nil
}

// stripSuffixes removes everything from the first "::" in each comma
// part, so "h1, h2, h3::text" becomes "h1, h2, h3".
func stripSuffixes(sel string) string {
	parts := strings.Split(sel, ",")
	for i, part := range parts {
		if idx := strings.Index(part, "::"); idx >= 0 {
			part = part[:idx]
		}
		parts[i] = strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// attrName pulls the attribute out of the first ::attr(...) occurrence.
func attrName(sel string) string {
	rest := sel[strings.Index(sel, "::attr(")+len("::attr("):]
	if end := strings.Index(rest, ")"); end >= 0 {
		rest = rest[:end]
	}
	return strings.Trim(strings.TrimSpace(rest), `"'`)
}
