package models

// Presets returns the quick selector patterns offered by the panel,
// in display order.
func Presets() []Preset {
	return []Preset{
		{Name: "All links", Selector: "a::attr(href)"},
		{Name: "All images", Selector: "img::attr(src)"},
		{Name: "All paragraphs", Selector: "p::text"},
		{Name: "All headings", Selector: "h1, h2, h3::text"},
		{Name: "Table cells", Selector: "td::text"},
	}
}
