package selector

import (
	"errors"
	"strings"
	"testing"

	"github.com/scrapedeck/scrapedeck/models"
)

func TestParse_ShapeDetection(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantShape models.Shape
		wantAttr  string
	}{
		{"text suffix", "p::text", models.ShapeText, ""},
		{"attr suffix", "a::attr(href)", models.ShapeValue, "href"},
		{"plain selector", ".quote .text", models.ShapeDefault, ""},
		{"quoted attr name", `img::attr("src")`, models.ShapeValue, "src"},
		{"text wins over attr", "a::text, a::attr(href)", models.ShapeText, ""},
		{"attr on one comma part", "h1, a::attr(id)", models.ShapeValue, "id"},
		{"unclosed attr", "a::attr(href", models.ShapeValue, "href"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.raw, models.SelectorCSS)
			if p.Shape != tt.wantShape {
				t.Errorf("Parse(%q).Shape = %q, want %q", tt.raw, p.Shape, tt.wantShape)
			}
			if p.Attr != tt.wantAttr {
				t.Errorf("Parse(%q).Attr = %q, want %q", tt.raw, p.Attr, tt.wantAttr)
			}
		})
	}
}

func TestParse_StripsSuffixesFromCSS(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"p::text", "p"},
		{"a::attr(href)", "a"},
		{"h1, h2, h3::text", "h1, h2, h3"},
		{"div.card a::attr(href), span::text", "div.card a, span"},
		{".quote .text", ".quote .text"},
	}

	for _, tt := range tests {
		p := Parse(tt.raw, models.SelectorCSS)
		if p.Query != tt.want {
			t.Errorf("Parse(%q).Query = %q, want %q", tt.raw, p.Query, tt.want)
		}
	}
}

func TestParse_XPathPassesThrough(t *testing.T) {
	// XPath axis syntax contains "::" and must never be stripped.
	raw := "//div/child::text()"
	p := Parse(raw, models.SelectorXPath)

	if p.Query != raw {
		t.Errorf("XPath query was rewritten: %q -> %q", raw, p.Query)
	}
	if p.Shape != models.ShapeText {
		t.Errorf("shape sniffing should still apply to XPath, got %q", p.Shape)
	}
}

const sampleHTML = `<html><head><title>Sample</title></head><body>
<div class="quote"><span class="text">To be or not to be</span>
<a href="/author/shakespeare">about</a></div>
<div class="quote"><span class="text">  </span>
<a>no link here</a></div>
<table><tr><td>cell one</td><td>cell two</td></tr></table>
<p>first paragraph</p><p>second &amp; third</p>
</body></html>`

func TestQueryCSS_Elements(t *testing.T) {
	p := Parse(".quote .text", models.SelectorCSS)
	elements, err := QueryCSS(sampleHTML, p)
	if err != nil {
		t.Fatalf("QueryCSS failed: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(elements))
	}
	if got := strings.TrimSpace(elements[0].Text); got != "To be or not to be" {
		t.Errorf("first match text = %q", got)
	}
	if !strings.HasPrefix(elements[0].HTML, "<span") {
		t.Errorf("outer HTML should start with the matched tag, got %q", elements[0].HTML)
	}
}

func TestQueryCSS_AttributeExtraction(t *testing.T) {
	p := Parse("a::attr(href)", models.SelectorCSS)
	elements, err := QueryCSS(sampleHTML, p)
	if err != nil {
		t.Fatalf("QueryCSS failed: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 anchor matches, got %d", len(elements))
	}
	if !elements[0].HasAttr || elements[0].Attr != "/author/shakespeare" {
		t.Errorf("first anchor attr = %q (has=%v)", elements[0].Attr, elements[0].HasAttr)
	}
	if elements[1].HasAttr {
		t.Error("anchor without href should report HasAttr=false")
	}
}

func TestQueryCSS_InvalidSelector(t *testing.T) {
	p := Parse("div[unclosed", models.SelectorCSS)
	_, err := QueryCSS(sampleHTML, p)
	if err == nil {
		t.Fatal("expected error for invalid selector")
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSelector {
		t.Errorf("expected %s error, got %v", models.ErrCodeSelector, err)
	}
}

func TestQueryCSS_NoMatches(t *testing.T) {
	p := Parse("article.missing", models.SelectorCSS)
	elements, err := QueryCSS(sampleHTML, p)
	if err != nil {
		t.Fatalf("QueryCSS failed: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected no matches, got %d", len(elements))
	}
}

func TestQueryXPath_Elements(t *testing.T) {
	p := Parse("//td", models.SelectorXPath)
	elements, err := QueryXPath(sampleHTML, p)
	if err != nil {
		t.Fatalf("QueryXPath failed: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(elements))
	}
	if elements[0].Text != "cell one" {
		t.Errorf("first cell text = %q", elements[0].Text)
	}
	if !strings.Contains(elements[1].HTML, "<td>") {
		t.Errorf("cell HTML = %q", elements[1].HTML)
	}
}

func TestQueryXPath_AttributeSelection(t *testing.T) {
	p := Parse("//a/@href", models.SelectorXPath)
	elements, err := QueryXPath(sampleHTML, p)
	if err != nil {
		t.Fatalf("QueryXPath failed: %v", err)
	}

	if len(elements) != 1 {
		t.Fatalf("expected 1 href, got %d", len(elements))
	}
	if elements[0].Text != "/author/shakespeare" {
		t.Errorf("attribute value = %q", elements[0].Text)
	}
	if elements[0].HTML != "/author/shakespeare" {
		t.Errorf("attribute html should be the bare value, got %q", elements[0].HTML)
	}
}

func TestQueryXPath_InvalidExpression(t *testing.T) {
	p := Parse("///[[[", models.SelectorXPath)
	_, err := QueryXPath(sampleHTML, p)
	if err == nil {
		t.Fatal("expected error for invalid XPath")
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSelector {
		t.Errorf("expected %s error, got %v", models.ErrCodeSelector, err)
	}
}
