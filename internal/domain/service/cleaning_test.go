package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

func TestCleanRecords(t *testing.T) {
	now := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	raw := []service.RawRecord{
		{Organization: " TechCorp ", IncidentType: "Hacking", Date: "2023-01-15", RecordsExposed: "2500000", Description: "SQL injection"},
		{Organization: "BankSecure", IncidentType: "Zero-day", Date: "2023-03-22", RecordsExposed: "150000"},
		{Organization: "HealthData", IncidentType: "Malware", Date: "15/06/2023", RecordsExposed: "500000.0"},
		{Organization: "EduNet", IncidentType: "insider", Date: "", RecordsExposed: "75000"},
		{Organization: "", IncidentType: "Hacking", Date: "2023-01-01", RecordsExposed: "10"},
		{Organization: "NoCount", IncidentType: "Hacking", Date: "2023-01-01", RecordsExposed: "many"},
		{Organization: "Zero", IncidentType: "Hacking", Date: "2023-01-01", RecordsExposed: "0"},
		{Organization: "Fractional", IncidentType: "Hacking", Date: "2023-01-01", RecordsExposed: "12.5"},
	}

	report := service.CleanRecords(raw, now)

	require.Len(t, report.Records, 4)
	assert.Equal(t, 4, report.Dropped)
	assert.Equal(t, 1, report.Coerced)
	assert.Equal(t, 2, report.Redated)

	first := report.Records[0]
	assert.Equal(t, "TechCorp", first.Organization())
	assert.Equal(t, int64(2_500_000), first.RecordsExposed())
	assert.Equal(t, "SQL injection", first.Description())
	assert.Equal(t, 2023, first.Year())

	assert.Equal(t, valueobject.IncidentOther, report.Records[1].IncidentType())
	assert.Equal(t, int64(500_000), report.Records[2].RecordsExposed())
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), report.Records[2].Date())
	assert.Equal(t, valueobject.IncidentInsider, report.Records[3].IncidentType())
	assert.Equal(t, 2025, report.Records[3].Year())
}
