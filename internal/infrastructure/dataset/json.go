package dataset

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// scalar accepts a JSON string, number, or null as a string. Uncleaned
// datasets mix quoted and bare counts.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(v)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*s = scalar(n.String())
	}
	return nil
}

// jsonRecord is the wire form of an incident. The breachType and
// recordsCompromised names are accepted alongside incidentType and
// recordsExposed.
type jsonRecord struct {
	Organization       scalar `json:"organization"`
	IncidentType       scalar `json:"incidentType"`
	BreachType         scalar `json:"breachType"`
	Date               scalar `json:"date"`
	RecordsExposed     scalar `json:"recordsExposed"`
	RecordsCompromised scalar `json:"recordsCompromised"`
	Description        scalar `json:"description"`
}

func (r jsonRecord) raw() service.RawRecord {
	typ := r.IncidentType
	if typ == "" {
		typ = r.BreachType
	}
	count := r.RecordsExposed
	if count == "" {
		count = r.RecordsCompromised
	}
	return service.RawRecord{
		Organization:   string(r.Organization),
		IncidentType:   string(typ),
		Date:           string(r.Date),
		RecordsExposed: string(count),
		Description:    string(r.Description),
	}
}

// DecodeJSON parses a single incident object or an array of them.
func DecodeJSON(data []byte) ([]service.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var recs []jsonRecord
	if data[0] == '[' {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode incident array: %w", err)
		}
	} else {
		var one jsonRecord
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode incident: %w", err)
		}
		recs = []jsonRecord{one}
	}

	out := make([]service.RawRecord, len(recs))
	for i, r := range recs {
		out[i] = r.raw()
	}
	return out, nil
}

// ReadJSON reads every incident from r.
func ReadJSON(r io.Reader) ([]service.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return DecodeJSON(data)
}

type exportRecord struct {
	Organization   string `json:"organization"`
	IncidentType   string `json:"incidentType"`
	Date           string `json:"date"`
	Description    string `json:"description,omitempty"`
	RecordsExposed int64  `json:"recordsExposed"`
	Year           int    `json:"year"`
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []model.IncidentRecord) error {
	out := make([]exportRecord, len(records))
	for i, r := range records {
		out[i] = exportRecord{
			Organization:   r.Organization(),
			IncidentType:   r.IncidentType().String(),
			Date:           r.Date().Format(time.DateOnly),
			RecordsExposed: r.RecordsExposed(),
			Description:    r.Description(),
			Year:           r.Year(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
