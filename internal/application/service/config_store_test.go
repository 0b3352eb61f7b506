package service

import (
	"sync"
	"testing"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_RejectsInvalidSeed(t *testing.T) {
	cfg := entity.DefaultAuditConfiguration()
	cfg.ValidationLevel = "strict"

	store, err := NewConfigStore(cfg)
	assert.ErrorIs(t, err, entity.ErrInvalidConfiguration)
	assert.Nil(t, store)
}

func TestConfigStore_ConfigureKeepsPreviousOnError(t *testing.T) {
	store, err := NewConfigStore(entity.DefaultAuditConfiguration())
	require.NoError(t, err)

	threshold := 0.6
	updated, err := store.Configure(entity.AuditConfigurationPatch{ConfidenceThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, 0.6, updated.ConfidenceThreshold)

	bad := -0.5
	current, err := store.Configure(entity.AuditConfigurationPatch{ConfidenceThreshold: &bad})
	assert.ErrorIs(t, err, entity.ErrInvalidConfiguration)
	assert.Equal(t, 0.6, current.ConfidenceThreshold)
	assert.Equal(t, 0.6, store.Current().ConfidenceThreshold)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store, err := NewConfigStore(entity.DefaultAuditConfiguration())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			enabled := i%2 == 0
			_, _ = store.Configure(entity.AuditConfigurationPatch{UseAI: &enabled})
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Current().Validate())
		}()
	}
	wg.Wait()
}
