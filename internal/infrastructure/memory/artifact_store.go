package memory

import (
	"context"
	"sync"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

var _ port.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore holds the last saved artifact set as an encoded snapshot,
// so loading returns an independent copy just as a durable store would.
type ArtifactStore struct {
	mu       sync.Mutex
	snapshot []byte
}

// NewArtifactStore creates an empty store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{}
}

func (s *ArtifactStore) Load(_ context.Context) (*service.FittedArtifacts, error) {
	s.mu.Lock()
	data := s.snapshot
	s.mu.Unlock()

	if data == nil {
		return nil, model.ErrArtifactsNotFound
	}
	return service.DecodeArtifacts(data)
}

func (s *ArtifactStore) Save(_ context.Context, a *service.FittedArtifacts) error {
	data, err := service.EncodeArtifacts(a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = data
	s.mu.Unlock()
	return nil
}
