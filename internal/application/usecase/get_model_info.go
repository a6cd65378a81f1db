package usecase

import (
	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// GetModelInfo describes the artifacts currently serving predictions.
type GetModelInfo struct {
	active *service.ActiveArtifacts
}

// NewGetModelInfo creates a new GetModelInfo use case.
func NewGetModelInfo(active *service.ActiveArtifacts) *GetModelInfo {
	return &GetModelInfo{active: active}
}

// Execute returns the active metadata. The live vocabulary sizes include
// values admitted since training.
func (uc *GetModelInfo) Execute() (dto.ModelInfoResponse, error) {
	a, err := uc.active.Load()
	if err != nil {
		return dto.ModelInfoResponse{}, err
	}
	md := a.Metadata
	return dto.ModelInfoResponse{
		TrainedAt:             md.TrainedAt,
		Kind:                  string(md.Kind),
		Schema:                md.Schema,
		Version:               md.Version,
		RecordCount:           md.RecordCount,
		OrganizationVocab:     md.Organizations.Size,
		IncidentTypeVocab:     md.IncidentTypes.Size,
		OrganizationVocabLive: a.Organizations.Size(),
		IncidentTypeVocabLive: a.IncidentTypes.Size(),
		Synthetic:             md.Synthetic,
		ID:                    md.ID,
	}, nil
}
