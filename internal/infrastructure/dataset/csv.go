package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// csvColumns is the header written by WriteCSV.
var csvColumns = []string{"organization", "incidentType", "date", "recordsExposed", "description"}

// headerAliases maps accepted header names to field positions.
var headerAliases = map[string]int{
	"organization":       0,
	"incidenttype":       1,
	"breachtype":         1,
	"type":               1,
	"date":               2,
	"recordsexposed":     3,
	"recordscompromised": 3,
	"records":            3,
	"description":        4,
}

// ReadCSV reads incidents from a CSV stream with a header row. Columns are
// matched by name, ignoring case and underscores; unknown columns are
// skipped.
func ReadCSV(r io.Reader) ([]service.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	positions := make([]int, len(header))
	var hasOrg bool
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), "_", ""))
		pos, ok := headerAliases[key]
		if !ok {
			pos = -1
		}
		hasOrg = hasOrg || pos == 0
		positions[i] = pos
	}
	if !hasOrg {
		return nil, errors.New("csv header has no organization column")
	}

	var out []service.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		var fields [5]string
		for i, v := range row {
			if i < len(positions) && positions[i] >= 0 {
				fields[positions[i]] = v
			}
		}
		out = append(out, service.RawRecord{
			Organization:   fields[0],
			IncidentType:   fields[1],
			Date:           fields[2],
			RecordsExposed: fields[3],
			Description:    fields[4],
		})
	}
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []model.IncidentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.Organization(),
			r.IncidentType().String(),
			r.Date().Format(time.DateOnly),
			itoa(r.RecordsExposed()),
			r.Description(),
		}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
