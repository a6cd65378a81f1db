package service

import (
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

var tierRecommendations = map[valueobject.RiskTier][]string{
	valueobject.RiskTierHigh: {
		"Implement immediate security audit",
		"Upgrade authentication systems",
		"Deploy advanced threat detection",
		"Conduct employee security training",
	},
	valueobject.RiskTierMedium: {
		"Review security protocols",
		"Implement stronger authentication",
		"Regular security assessments",
		"Employee awareness training",
	},
	valueobject.RiskTierBaseline: {
		"Maintain current security measures",
		"Regular security monitoring",
		"Keep systems updated",
		"Periodic security reviews",
	},
}

var typeRecommendations = map[valueobject.IncidentType]string{
	valueobject.IncidentHacking:  "Implement network segmentation",
	valueobject.IncidentPhishing: "Deploy email security solutions",
	valueobject.IncidentMalware:  "Install advanced antivirus software",
	valueobject.IncidentInsider:  "Implement access controls and monitoring",
	valueobject.IncidentPhysical: "Enhance physical security measures",
}

// Recommender maps a risk score and incident type to mitigations.
type Recommender struct{}

// NewRecommender creates a new Recommender instance.
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Recommend returns the four actions for the score's tier followed by one
// action for incidentType. Types without a mapped action, including the
// zero value, add nothing.
func (r *Recommender) Recommend(riskScore float64, incidentType valueobject.IncidentType) []string {
	tier := tierRecommendations[valueobject.RiskTierFromScore(riskScore)]
	out := make([]string, len(tier), len(tier)+1)
	copy(out, tier)
	if extra, ok := typeRecommendations[incidentType]; ok {
		out = append(out, extra)
	}
	return out
}
