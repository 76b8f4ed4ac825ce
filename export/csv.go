package export

import (
	"bytes"
	"encoding/csv"

	"github.com/scrapedeck/scrapedeck/models"
)

// WriteCSV renders records as UTF-8 CSV with a header row and no index
// column.
func WriteCSV(records []models.Record, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
