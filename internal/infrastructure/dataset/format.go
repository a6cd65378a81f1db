package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// Format is a dataset file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json". An empty name is inferred from path.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch Format(strings.ToLower(name)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported dataset format %q", name)
	}
}

// Read decodes raw incidents in format f.
func (f Format) Read(r io.Reader) ([]service.RawRecord, error) {
	if f == FormatCSV {
		return ReadCSV(r)
	}
	return ReadJSON(r)
}

// Write encodes records in format f.
func (f Format) Write(w io.Writer, records []model.IncidentRecord) error {
	if f == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteJSON(w, records)
}
