package valueobject

import (
	"fmt"
	"strings"
)

// IncidentType is an immutable value object naming the kind of security
// incident. The set is closed.
type IncidentType struct {
	value string
}

var (
	IncidentHacking           = IncidentType{value: "Hacking"}
	IncidentPhishing          = IncidentType{value: "Phishing"}
	IncidentMalware           = IncidentType{value: "Malware"}
	IncidentInsider           = IncidentType{value: "Insider"}
	IncidentPhysical          = IncidentType{value: "Physical"}
	IncidentSocialEngineering = IncidentType{value: "Social Engineering"}
	IncidentOther             = IncidentType{value: "Other"}
)

var allIncidentTypes = []IncidentType{
	IncidentHacking,
	IncidentPhishing,
	IncidentMalware,
	IncidentInsider,
	IncidentPhysical,
	IncidentSocialEngineering,
	IncidentOther,
}

// AllIncidentTypes returns every incident type in declaration order.
func AllIncidentTypes() []IncidentType {
	out := make([]IncidentType, len(allIncidentTypes))
	copy(out, allIncidentTypes)
	return out
}

func normalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// ParseIncidentType reconstructs an IncidentType from text. Matching ignores
// case, surrounding whitespace and word separators, so "social_engineering"
// and "Social Engineering" are the same type.
func ParseIncidentType(s string) (IncidentType, error) {
	n := normalizeType(s)
	for _, t := range allIncidentTypes {
		if normalizeType(t.value) == n {
			return t, nil
		}
	}
	return IncidentType{}, fmt.Errorf("invalid incident type: %q", s)
}

// IncidentTypeOrOther parses s and falls back to IncidentOther. This is the
// ingestion policy.
func IncidentTypeOrOther(s string) IncidentType {
	t, err := ParseIncidentType(s)
	if err != nil {
		return IncidentOther
	}
	return t
}

// String returns the canonical name.
func (t IncidentType) String() string {
	return t.value
}

// IsZero returns true if the type has not been set.
func (t IncidentType) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another IncidentType.
func (t IncidentType) Equal(other IncidentType) bool {
	return t.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (t IncidentType) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the ingestion
// policy, so unknown names decode as IncidentOther.
func (t *IncidentType) UnmarshalText(b []byte) error {
	*t = IncidentTypeOrOther(string(b))
	return nil
}
