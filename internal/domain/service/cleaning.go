package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// RawRecord is an incident as read from a file or message, before cleaning.
type RawRecord struct {
	Organization   string
	IncidentType   string
	Date           string
	RecordsExposed string
	Description    string
}

// CleanReport is the outcome of cleaning a batch.
type CleanReport struct {
	Records []model.IncidentRecord
	// Dropped counts records without an organization or a positive count.
	Dropped int
	// Coerced counts unknown incident types recorded as Other.
	Coerced int
	// Redated counts missing or unparseable dates set to January 1 of the
	// current year.
	Redated int
}

// CleanRecords applies the ingestion policy to raw.
func CleanRecords(raw []RawRecord, now time.Time) CleanReport {
	report := CleanReport{Records: make([]model.IncidentRecord, 0, len(raw))}
	fallbackDate := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range raw {
		records, ok := parseRecordCount(r.RecordsExposed)
		if !ok || strings.TrimSpace(r.Organization) == "" {
			report.Dropped++
			continue
		}

		incidentType, err := valueobject.ParseIncidentType(r.IncidentType)
		if err != nil {
			incidentType = valueobject.IncidentOther
			report.Coerced++
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(r.Date))
		if err != nil {
			date = fallbackDate
			report.Redated++
		}

		rec, err := model.NewIncidentRecord(r.Organization, incidentType, date, records, r.Description)
		if err != nil {
			report.Dropped++
			continue
		}
		report.Records = append(report.Records, rec)
	}
	return report
}

// parseRecordCount accepts positive integers, including integral floats
// such as "2500000.0".
func parseRecordCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
