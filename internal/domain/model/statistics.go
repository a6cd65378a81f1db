package model

import "github.com/shopspring/decimal"

// YearlyTrend summarises records exposed in one calendar year.
type YearlyTrend struct {
	Year    int
	Count   int
	Total   int64
	Average decimal.Decimal
}

// Statistics summarises a set of incident records.
type Statistics struct {
	// ByType and ByOrganization count incidents.
	ByType         map[string]int
	ByOrganization map[string]int
	// Trends is sorted by year.
	Trends         []YearlyTrend
	AverageRecords decimal.Decimal
	TotalRecords   int64
	MaxRecords     int64
	MinRecords     int64
	TotalIncidents int
}
