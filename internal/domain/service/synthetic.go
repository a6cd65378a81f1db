package service

import (
	"math/rand/v2"
	"time"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

var (
	syntheticOrganizations = []string{"TechCorp", "BankSecure", "HealthData", "EduNet", "RetailChain"}
	syntheticTypes         = []valueobject.IncidentType{
		valueobject.IncidentHacking,
		valueobject.IncidentPhishing,
		valueobject.IncidentMalware,
		valueobject.IncidentInsider,
		valueobject.IncidentPhysical,
	}
)

const (
	syntheticMinYear    = 2015
	syntheticMaxYear    = 2024 // exclusive
	syntheticMinRecords = 1_000
	syntheticMaxRecords = 10_000_000 // exclusive
)

// SyntheticRecords generates n plausible incidents dated on the first of a
// month between 2015 and 2023.
func SyntheticRecords(n int, seed uint64) []model.IncidentRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]model.IncidentRecord, 0, n)
	for range n {
		year := syntheticMinYear + rng.IntN(syntheticMaxYear-syntheticMinYear)
		month := time.Month(1 + rng.IntN(12))
		out = append(out, model.MustIncidentRecord(
			syntheticOrganizations[rng.IntN(len(syntheticOrganizations))],
			syntheticTypes[rng.IntN(len(syntheticTypes))],
			time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			syntheticMinRecords+rng.Int64N(syntheticMaxRecords-syntheticMinRecords),
		))
	}
	return out
}
