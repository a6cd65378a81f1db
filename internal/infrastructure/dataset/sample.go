package dataset

import "github.com/bibbank/breachrisk/internal/domain/service"

// Sample returns the built-in demonstration dataset.
func Sample() []service.RawRecord {
	rows := []struct {
		org, typ, date, desc string
		records              int64
	}{
		{"TechCorp", "Hacking", "2023-01-15", "SQL injection attack", 2_500_000},
		{"BankSecure", "Phishing", "2023-03-22", "Employee fell for phishing email", 150_000},
		{"HealthData", "Malware", "2023-06-10", "Ransomware attack", 500_000},
		{"EduNet", "Insider", "2023-08-05", "Disgruntled employee data theft", 75_000},
		{"RetailChain", "Physical", "2023-11-12", "Stolen backup drives", 30_000},
		{"TechCorp", "Hacking", "2022-05-20", "API vulnerability exploited", 1_800_000},
		{"BankSecure", "Malware", "2022-09-15", "Keylogger infection", 320_000},
		{"HealthData", "Phishing", "2022-12-03", "CEO fraud attack", 89_000},
		{"EduNet", "Hacking", "2022-02-28", "Database breach", 450_000},
		{"RetailChain", "Insider", "2022-07-14", "Employee data sale", 125_000},
	}

	out := make([]service.RawRecord, len(rows))
	for i, r := range rows {
		out[i] = service.RawRecord{
			Organization:   r.org,
			IncidentType:   r.typ,
			Date:           r.date,
			RecordsExposed: itoa(r.records),
			Description:    r.desc,
		}
	}
	return out
}
