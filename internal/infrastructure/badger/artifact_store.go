package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

var _ port.ArtifactStore = (*ArtifactStore)(nil)

// Key layout:
//
//	artifacts/current       -> big-endian version
//	artifacts/snapshot/<v>  -> encoded artifact set
//	artifacts/meta/<v>      -> JSON metadata
var (
	keyCurrent     = []byte("artifacts/current")
	prefixSnapshot = []byte("artifacts/snapshot/")
	prefixMeta     = []byte("artifacts/meta/")
)

// ArtifactStore persists artifact sets in badger. Every saved version is
// kept until it falls outside the retention window.
type ArtifactStore struct {
	db     *badger.DB
	logger *slog.Logger
	retain int
}

// NewArtifactStore creates a store over db keeping retain superseded
// versions besides the current one.
func NewArtifactStore(db *badger.DB, retain int, logger *slog.Logger) *ArtifactStore {
	return &ArtifactStore{db: db, retain: max(retain, 0), logger: logger}
}

func versionKey(prefix []byte, version int) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], uint64(version))
	return k
}

// Load returns the current artifact set.
func (s *ArtifactStore) Load(_ context.Context) (*service.FittedArtifacts, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyCurrent)
		if err != nil {
			return err
		}
		cur, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if len(cur) != 8 {
			return model.NewConfigurationError("current version pointer is %d bytes", len(cur))
		}

		item, err = txn.Get(append(append([]byte(nil), prefixSnapshot...), cur...))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, model.ErrArtifactsNotFound
	case err != nil:
		if model.IsConfigurationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("badger: load artifacts: %w", err)
	}
	return service.DecodeArtifacts(data)
}

// Save stores a as a new version and makes it current in one transaction,
// then prunes versions beyond the retention window.
func (s *ArtifactStore) Save(_ context.Context, a *service.FittedArtifacts) error {
	data, err := service.EncodeArtifacts(a)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("badger: encode metadata: %w", err)
	}

	v := a.Metadata.Version
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(versionKey(prefixSnapshot, v), data); err != nil {
			return err
		}
		if err := txn.Set(versionKey(prefixMeta, v), meta); err != nil {
			return err
		}
		return txn.Set(keyCurrent, versionKey(nil, v))
	})
	if err != nil {
		return fmt.Errorf("badger: save artifacts v%d: %w", v, err)
	}

	if err := s.prune(v); err != nil {
		s.logger.Warn("failed to prune artifact history", "version", v, "error", err)
	}
	return nil
}

// History returns metadata for every retained version, newest first.
func (s *ArtifactStore) History(_ context.Context) ([]model.ArtifactMetadata, error) {
	var out []model.ArtifactMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixMeta
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var md model.ArtifactMetadata
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &md)
			}); err != nil {
				return err
			}
			out = append(out, md)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list artifact history: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

func (s *ArtifactStore) prune(current int) error {
	oldest := current - s.retain
	if oldest <= 1 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixMeta
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var stale []int
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			v := int(binary.BigEndian.Uint64(k[len(prefixMeta):]))
			if v >= oldest {
				break
			}
			stale = append(stale, v)
		}
		it.Close()

		for _, v := range stale {
			if err := txn.Delete(versionKey(prefixSnapshot, v)); err != nil {
				return err
			}
			if err := txn.Delete(versionKey(prefixMeta, v)); err != nil {
				return err
			}
		}
		return nil
	})
}
