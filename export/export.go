// Package export serializes a result set into the download formats the
// panel offers. Column order follows the record shape, not map order.
package export

import (
	"fmt"

	"github.com/scrapedeck/scrapedeck/models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// sheetName is the worksheet title in Excel downloads.
const sheetName = "Scraped Data"

// Encode renders records in the requested format and returns the bytes
// together with the download filename and content type.
func Encode(format string, records []models.Record, columns []string) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := WriteCSV(records, columns)
		return data, "scraped_data.csv", "text/csv", err
	case FormatJSON:
		data, err := WriteJSON(records)
		return data, "scraped_data.json", "application/json", err
	case FormatXLSX:
		data, err := WriteXLSX(records, columns)
		return data, "scraped_data.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", "", models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown export format: %s", format), nil)
	}
}
