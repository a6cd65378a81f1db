package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/service"
)

func TestFitCategoryEncoder_SortedCodes(t *testing.T) {
	enc := service.FitCategoryEncoder([]string{"b", "a", "b", "c"})

	assert.Equal(t, []string{"a", "b", "c"}, enc.Vocabulary())
	assert.Equal(t, 3, enc.TrainedSize())
	for want, v := range []string{"a", "b", "c"} {
		code, ok := enc.Lookup(v)
		require.True(t, ok)
		assert.Equal(t, want, code)
	}
}

func TestCategoryEncoder_GrowsForUnseenValues(t *testing.T) {
	enc := service.FitCategoryEncoder([]string{"TechCorp", "BankSecure"})
	fp := enc.Fingerprint()

	code, added := enc.Encode("NewOrg")
	assert.True(t, added)
	assert.Equal(t, 2, code)

	again, added := enc.Encode("NewOrg")
	assert.False(t, added)
	assert.Equal(t, code, again)

	known, added := enc.Encode("BankSecure")
	assert.False(t, added)
	assert.Equal(t, 0, known)

	assert.Equal(t, 3, enc.Size())
	assert.Equal(t, 2, enc.TrainedSize())
	assert.Equal(t, []string{"BankSecure", "TechCorp"}, enc.Vocabulary())
	assert.Equal(t, fp, enc.Fingerprint())
}

func TestCategoryEncoder_ConcurrentGrowthIsConsistent(t *testing.T) {
	enc := service.FitCategoryEncoder([]string{"a"})

	var wg sync.WaitGroup
	codes := make([]int, 64)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], _ = enc.Encode("unseen")
		}()
	}
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, 1, c)
	}
	assert.Equal(t, 2, enc.Size())
}

func TestNewCategoryEncoder_KeepsGivenOrder(t *testing.T) {
	enc := service.NewCategoryEncoder([]string{"z", "a", "z"})
	code, ok := enc.Lookup("z")
	require.True(t, ok)
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, enc.TrainedSize())

	assert.NotEqual(t, enc.Fingerprint(), service.NewCategoryEncoder([]string{"a", "z"}).Fingerprint())
}
