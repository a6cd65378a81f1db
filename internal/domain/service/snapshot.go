package service

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// snapshot is the serialised form of FittedArtifacts. Encoders store only
// their trained vocabulary; growth since training is process-local.
type snapshot struct {
	Scaler        *FeatureScaler         `json:"scaler"`
	Organizations []string               `json:"organizations"`
	IncidentTypes []string               `json:"incident_types"`
	Model         json.RawMessage        `json:"model"`
	Metadata      model.ArtifactMetadata `json:"metadata"`
}

// EncodeArtifacts validates and serialises a.
func EncodeArtifacts(a *FittedArtifacts) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(a.Model)
	if err != nil {
		return nil, fmt.Errorf("encoding %s model: %w", a.Model.Kind(), err)
	}
	data, err := json.Marshal(snapshot{
		Metadata:      a.Metadata,
		Organizations: a.Organizations.Vocabulary(),
		IncidentTypes: a.IncidentTypes.Vocabulary(),
		Scaler:        a.Scaler,
		Model:         payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding artifacts: %w", err)
	}
	return data, nil
}

// DecodeArtifacts restores artifacts serialised by EncodeArtifacts. The
// result is validated, so a snapshot whose vocabulary no longer matches its
// fingerprint fails with a ConfigurationError.
func DecodeArtifacts(data []byte) (*FittedArtifacts, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, model.NewConfigurationError("decoding artifacts: %v", err)
	}

	var reg Regressor
	switch s.Metadata.Kind {
	case model.ModelKindForest:
		reg = &RandomForest{}
	case model.ModelKindMLP:
		reg = &MLP{}
	default:
		return nil, model.NewConfigurationError("unknown model kind %q", s.Metadata.Kind)
	}
	if err := json.Unmarshal(s.Model, reg); err != nil {
		return nil, model.NewConfigurationError("decoding %s model: %v", s.Metadata.Kind, err)
	}

	a := &FittedArtifacts{
		Metadata:      s.Metadata,
		Organizations: NewCategoryEncoder(s.Organizations),
		IncidentTypes: NewCategoryEncoder(s.IncidentTypes),
		Scaler:        s.Scaler,
		Model:         reg,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
