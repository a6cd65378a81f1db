package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// IncidentRecord is a single historical security incident. It is immutable:
// all fields are set at construction and exposed through accessors.
type IncidentRecord struct {
	date           time.Time
	organization   string
	description    string
	incidentType   valueobject.IncidentType
	recordsExposed int64
}

// NewIncidentRecord validates and creates an IncidentRecord. The date is
// truncated to a calendar day in UTC.
func NewIncidentRecord(
	organization string,
	incidentType valueobject.IncidentType,
	date time.Time,
	recordsExposed int64,
	description string,
) (IncidentRecord, error) {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return IncidentRecord{}, fmt.Errorf("%w: organization is required", ErrInvalidRecord)
	}
	if incidentType.IsZero() {
		return IncidentRecord{}, fmt.Errorf("%w: incident type is required", ErrInvalidRecord)
	}
	if date.IsZero() {
		return IncidentRecord{}, fmt.Errorf("%w: date is required", ErrInvalidRecord)
	}
	if recordsExposed <= 0 {
		return IncidentRecord{}, fmt.Errorf("%w: records exposed must be positive, got %d", ErrInvalidRecord, recordsExposed)
	}

	y, m, d := date.UTC().Date()
	return IncidentRecord{
		organization:   organization,
		incidentType:   incidentType,
		date:           time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		recordsExposed: recordsExposed,
		description:    strings.TrimSpace(description),
	}, nil
}

// MustIncidentRecord is NewIncidentRecord for fixed data; it panics on error.
func MustIncidentRecord(organization string, incidentType valueobject.IncidentType, date time.Time, recordsExposed int64) IncidentRecord {
	r, err := NewIncidentRecord(organization, incidentType, date, recordsExposed, "")
	if err != nil {
		panic(err)
	}
	return r
}

func (r IncidentRecord) Organization() string                   { return r.organization }
func (r IncidentRecord) IncidentType() valueobject.IncidentType { return r.incidentType }
func (r IncidentRecord) Date() time.Time                        { return r.date }
func (r IncidentRecord) RecordsExposed() int64                  { return r.recordsExposed }
func (r IncidentRecord) Description() string                    { return r.description }

// Year is derived from the date.
func (r IncidentRecord) Year() int { return r.date.Year() }

// Month is derived from the date, 1-12.
func (r IncidentRecord) Month() int { return int(r.date.Month()) }

// MatchesQuery reports whether the record's organization contains org,
// ignoring case, and its type equals incidentType.
func (r IncidentRecord) MatchesQuery(org string, incidentType valueobject.IncidentType) bool {
	if !r.incidentType.Equal(incidentType) {
		return false
	}
	return strings.Contains(strings.ToLower(r.organization), strings.ToLower(org))
}
