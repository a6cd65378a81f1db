package service

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// averagePlaces is the rounding applied to reported averages.
const averagePlaces = 2

// ComputeStatistics summarises records. Totals are exact; averages are
// rounded to two decimal places.
func ComputeStatistics(records []model.IncidentRecord) model.Statistics {
	stats := model.Statistics{
		ByType:         make(map[string]int),
		ByOrganization: make(map[string]int),
		AverageRecords: decimal.Zero,
		Trends:         []model.YearlyTrend{},
	}
	if len(records) == 0 {
		return stats
	}

	years := make(map[int]*model.YearlyTrend)
	stats.MinRecords = records[0].RecordsExposed()
	for _, r := range records {
		n := r.RecordsExposed()
		stats.TotalIncidents++
		stats.TotalRecords += n
		stats.MaxRecords = max(stats.MaxRecords, n)
		stats.MinRecords = min(stats.MinRecords, n)
		stats.ByType[r.IncidentType().String()]++
		stats.ByOrganization[r.Organization()]++

		y, ok := years[r.Year()]
		if !ok {
			y = &model.YearlyTrend{Year: r.Year()}
			years[r.Year()] = y
		}
		y.Count++
		y.Total += n
	}

	stats.AverageRecords = mean(stats.TotalRecords, stats.TotalIncidents)
	for _, y := range years {
		y.Average = mean(y.Total, y.Count)
		stats.Trends = append(stats.Trends, *y)
	}
	slices.SortFunc(stats.Trends, func(a, b model.YearlyTrend) int { return cmp.Compare(a.Year, b.Year) })
	return stats
}

func mean(total int64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).DivRound(decimal.NewFromInt(int64(count)), averagePlaces)
}
