package dto

import (
	"sort"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// ImportResponse reports how an import batch was cleaned and stored.
type ImportResponse struct {
	Received int  `json:"received"`
	Stored   int  `json:"stored"`
	Dropped  int  `json:"dropped"`
	Coerced  int  `json:"coerced"`
	Redated  int  `json:"redated"`
	Retrain  bool `json:"retrained"`
}

// CountEntry is one row of a frequency table.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearlyTrendResponse summarises one year.
type YearlyTrendResponse struct {
	Average string `json:"average"`
	Year    int    `json:"year"`
	Count   int    `json:"count"`
	Total   int64  `json:"total"`
}

// StatisticsResponse is the output DTO for dataset statistics. Averages are
// decimal strings.
type StatisticsResponse struct {
	AverageRecords string                `json:"avgRecords"`
	ByType         []CountEntry          `json:"breachTypes"`
	ByOrganization []CountEntry          `json:"organizations"`
	YearlyTrends   []YearlyTrendResponse `json:"yearlyTrends"`
	TotalIncidents int                   `json:"totalBreaches"`
	TotalRecords   int64                 `json:"totalRecords"`
	MaxRecords     int64                 `json:"maxRecords"`
	MinRecords     int64                 `json:"minRecords"`
}

// FromStatistics converts domain statistics. Frequency tables are sorted by
// count descending, then name.
func FromStatistics(s model.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		TotalIncidents: s.TotalIncidents,
		TotalRecords:   s.TotalRecords,
		AverageRecords: s.AverageRecords.String(),
		MaxRecords:     s.MaxRecords,
		MinRecords:     s.MinRecords,
		ByType:         counts(s.ByType),
		ByOrganization: counts(s.ByOrganization),
		YearlyTrends:   make([]YearlyTrendResponse, 0, len(s.Trends)),
	}
	for _, y := range s.Trends {
		resp.YearlyTrends = append(resp.YearlyTrends, YearlyTrendResponse{
			Year:    y.Year,
			Count:   y.Count,
			Total:   y.Total,
			Average: y.Average.String(),
		})
	}
	return resp
}

func counts(m map[string]int) []CountEntry {
	out := make([]CountEntry, 0, len(m))
	for name, n := range m {
		out = append(out, CountEntry{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
