package models

// Record is one matched element flattened into a one-level map for the
// results table and the exporters. Keys depend on the selector's shape.
type Record map[string]string

// Shape identifies which flat layout a selector produces. It is decided
// by the selector's extraction convention, not per element, so every
// record of a run carries the same keys.
type Shape string

const (
	// ShapeText: selectors ending in ::text. Records carry a single
	// non-empty "text" key.
	ShapeText Shape = "text"

	// ShapeValue: selectors using ::attr(name). Records carry a single
	// "value" key with the attribute value.
	ShapeValue Shape = "value"

	// ShapeDefault: plain element selectors. Records carry "text" plus
	// an "html" snippet capped at 200 characters.
	ShapeDefault Shape = "default"
)

// Columns returns the record keys in table and export order.
func (s Shape) Columns() []string {
	switch s {
	case ShapeText:
		return []string{"text"}
	case ShapeValue:
		return []string{"value"}
	default:
		return []string{"text", "html"}
	}
}
