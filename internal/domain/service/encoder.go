package service

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
)

// CategoryEncoder maps category values to stable integer codes. The
// vocabulary is append-only: Encode admits unseen values with the next free
// code. Only the trained prefix is part of the fitted artifact.
type CategoryEncoder struct {
	index   map[string]int
	values  []string
	mu      sync.RWMutex
	trained int
}

// FitCategoryEncoder builds an encoder whose codes follow the sorted order
// of the distinct values.
func FitCategoryEncoder(values []string) *CategoryEncoder {
	vocab := slices.Clone(values)
	slices.Sort(vocab)
	return NewCategoryEncoder(slices.Compact(vocab))
}

// NewCategoryEncoder restores an encoder from a trained vocabulary, where
// vocabulary[i] has code i. Duplicates keep their first code.
func NewCategoryEncoder(vocabulary []string) *CategoryEncoder {
	e := &CategoryEncoder{
		index:  make(map[string]int, len(vocabulary)),
		values: make([]string, 0, len(vocabulary)),
	}
	for _, v := range vocabulary {
		if _, ok := e.index[v]; ok {
			continue
		}
		e.index[v] = len(e.values)
		e.values = append(e.values, v)
	}
	e.trained = len(e.values)
	return e
}

// Lookup returns the code for value without growing the vocabulary.
func (e *CategoryEncoder) Lookup(value string) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	code, ok := e.index[value]
	return code, ok
}

// Encode returns the code for value, admitting it if unseen. added reports
// whether this call grew the vocabulary; encoding the same unseen value
// again returns the same code with added false.
func (e *CategoryEncoder) Encode(value string) (code int, added bool) {
	if code, ok := e.Lookup(value); ok {
		return code, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if code, ok := e.index[value]; ok {
		return code, false
	}
	code = len(e.values)
	e.index[value] = code
	e.values = append(e.values, value)
	return code, true
}

// Size is the current vocabulary size, including growth since training.
func (e *CategoryEncoder) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.values)
}

// TrainedSize is the vocabulary size at fit time.
func (e *CategoryEncoder) TrainedSize() int {
	return e.trained
}

// Vocabulary returns the trained vocabulary in code order.
func (e *CategoryEncoder) Vocabulary() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.values[:e.trained])
}

// Fingerprint hashes the trained vocabulary. Growth does not change it.
func (e *CategoryEncoder) Fingerprint() string {
	return vocabularyFingerprint(e.Vocabulary())
}

func vocabularyFingerprint(vocab []string) string {
	h := sha256.New()
	for _, v := range vocab {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
