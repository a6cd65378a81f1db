package service

import (
	"sync/atomic"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// featureCount is the width of the encoded feature vector.
const featureCount = 4

// numericFeatures is how many trailing features the scaler covers.
const numericFeatures = 2

// FittedArtifacts is one consistent trained state. The encoders, scaler and
// model were fitted together and are only ever replaced as a set.
type FittedArtifacts struct {
	Organizations *CategoryEncoder
	IncidentTypes *CategoryEncoder
	Scaler        *FeatureScaler
	Model         Regressor
	Metadata      model.ArtifactMetadata
}

type validator interface {
	validate() error
}

// Validate rejects incomplete or mismatched sets with a ConfigurationError.
func (a *FittedArtifacts) Validate() error {
	switch {
	case a == nil:
		return model.NewConfigurationError("no artifacts loaded")
	case a.Model == nil:
		return model.NewConfigurationError("model is missing")
	case a.Organizations == nil:
		return model.NewConfigurationError("organization encoder is missing")
	case a.IncidentTypes == nil:
		return model.NewConfigurationError("incident type encoder is missing")
	case a.Scaler == nil:
		return model.NewConfigurationError("scaler is missing")
	}

	md := a.Metadata
	if md.Schema != model.FeatureSchema {
		return model.NewConfigurationError("artifacts were trained for schema %q", md.Schema)
	}
	if md.Kind != a.Model.Kind() {
		return model.NewConfigurationError("metadata names a %s model but holds %s", md.Kind, a.Model.Kind())
	}
	if err := checkVocabulary("organization", a.Organizations, md.Organizations); err != nil {
		return err
	}
	if err := checkVocabulary("incident type", a.IncidentTypes, md.IncidentTypes); err != nil {
		return err
	}
	if a.Scaler.Dims() != numericFeatures {
		return model.NewConfigurationError("scaler covers %d features, want %d", a.Scaler.Dims(), numericFeatures)
	}
	if err := a.Scaler.validate(); err != nil {
		return model.NewConfigurationError("%v", err)
	}
	if v, ok := a.Model.(validator); ok {
		if err := v.validate(); err != nil {
			return model.NewConfigurationError("%v", err)
		}
	}
	return nil
}

func checkVocabulary(name string, enc *CategoryEncoder, want model.VocabularyInfo) error {
	if enc.TrainedSize() == 0 {
		return model.NewConfigurationError("%s encoder is empty", name)
	}
	if enc.TrainedSize() != want.Size || enc.Fingerprint() != want.Fingerprint {
		return model.NewConfigurationError("%s encoder does not match the vocabulary the model was trained with", name)
	}
	return nil
}

// ActiveArtifacts holds the artifact set serving predictions. Readers take a
// snapshot pointer; Publish swaps the whole set at once.
type ActiveArtifacts struct {
	current atomic.Pointer[FittedArtifacts]
}

// NewActiveArtifacts creates an empty holder.
func NewActiveArtifacts() *ActiveArtifacts {
	return &ActiveArtifacts{}
}

// Load returns the active set or a ConfigurationError when none is published.
func (h *ActiveArtifacts) Load() (*FittedArtifacts, error) {
	a := h.current.Load()
	if a == nil {
		return nil, model.NewConfigurationError("no trained model has been published")
	}
	return a, nil
}

// Ready reports whether a set has been published.
func (h *ActiveArtifacts) Ready() bool {
	return h.current.Load() != nil
}

// Publish validates a and makes it active for all subsequent loads.
func (h *ActiveArtifacts) Publish(a *FittedArtifacts) error {
	if err := a.Validate(); err != nil {
		return err
	}
	h.current.Store(a)
	return nil
}
