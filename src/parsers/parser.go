package parsers

import (
	"fmt"
	"io"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers/salescsv"
)

// Parser turns an uploaded file into canonical deal records for a view.
type Parser interface {
	Parse(file io.Reader, view string) ([]models.Deal, error)
}

// GetParser resolves a parser by source name. A Google Sheet arrives as its
// CSV export, so both sources share the same implementation today; the
// factory stays so other formats can slot in.
func GetParser(source string) (Parser, error) {
	switch source {
	case "csv", "gsheet":
		return salescsv.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
