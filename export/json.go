package export

import (
	"bytes"
	"encoding/json"

	"github.com/scrapedeck/scrapedeck/models"
)

// WriteJSON renders records as a two-space indented JSON array without
// escaping non-ASCII or HTML characters.
func WriteJSON(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
