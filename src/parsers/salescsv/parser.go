package salescsv

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
)

// Date layouts accepted for discovery_date, tried in order. Sheets exports
// are not consistent about this.
var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006-01-02T15:04:05Z07:00"}

// columnAliases maps the header spellings seen in the wild onto canonical
// column names.
var columnAliases = map[string]string{
	"owner":          "owner",
	"ae":             "owner",
	"company":        "company",
	"account":        "company",
	"stage":          "stage",
	"type_of_source": "source_type",
	"source_type":    "source_type",
	"source":         "source_type",
	"pipeline":       "pipeline",
	"pipeline_value": "pipeline",
	"value":          "pipeline",
	"discovery_date": "discovery_date",
	"discovery":      "discovery_date",
}

type SalesCSVParser struct{}

func NewParser() *SalesCSVParser {
	return &SalesCSVParser{}
}

// Parse reads a sales CSV into canonical deals. One malformed cell degrades
// that field of that row (bad value -> 0, bad date -> no discovery date);
// it never fails the batch. Only a missing/unreadable header or a broken
// CSV structure is an error.
func (p *SalesCSVParser) Parse(file io.Reader, view string) ([]models.Deal, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := resolveColumns(header)
	if _, ok := columns["stage"]; !ok {
		return nil, fmt.Errorf("CSV header has no recognizable 'stage' column: %v", header)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	deals := make([]models.Deal, 0, len(records))
	for i, record := range records {
		raw := rawRow(record, columns)
		if raw.Owner == "" && raw.Company == "" && raw.Stage == "" && raw.PipelineValue == "" {
			continue // blank filler row
		}

		deal := models.Deal{
			View:        view,
			Owner:       strings.TrimSpace(raw.Owner),
			Company:     strings.TrimSpace(raw.Company),
			Stage:       strings.TrimSpace(raw.Stage),
			SourceType:  strings.TrimSpace(raw.SourceType),
			InputString: strings.Join(record, ","),
		}

		if raw.PipelineValue != "" {
			value, convErr := parseAmount(raw.PipelineValue)
			if convErr != nil {
				logger.L.Debug("Unparseable pipeline value, treating as 0", "row", i+2, "value", raw.PipelineValue)
			} else {
				deal.PipelineValue = value
			}
		}

		if raw.DiscoveryDate != "" {
			if ts, ok := parseDate(raw.DiscoveryDate); ok {
				deal.DiscoveryDate = &ts
			} else {
				logger.L.Debug("Unparseable discovery date, leaving unset", "row", i+2, "date", raw.DiscoveryDate)
			}
		}

		deal.HashID = hashDeal(view, deal)
		deals = append(deals, deal)
	}
	return deals, nil
}

func resolveColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if canonical, ok := columnAliases[key]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func rawRow(record []string, columns map[string]int) models.RawDealRow {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}
	return models.RawDealRow{
		Owner:         cell("owner"),
		Company:       cell("company"),
		Stage:         cell("stage"),
		SourceType:    cell("source_type"),
		PipelineValue: cell("pipeline"),
		DiscoveryDate: cell("discovery_date"),
	}
}

// parseAmount handles "12,500.00", "£12500" and plain numbers.
func parseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimLeft(cleaned, "£$€ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func parseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// hashDeal produces the dedup key for (view, row). Re-uploading the same
// sheet is a no-op at the storage layer.
func hashDeal(view string, d models.Deal) string {
	date := ""
	if d.DiscoveryDate != nil {
		date = d.DiscoveryDate.Format("2006-01-02")
	}
	payload := strings.Join([]string{view, d.Owner, d.Company, d.Stage, d.SourceType,
		strconv.FormatFloat(d.PipelineValue, 'f', -1, 64), date}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
