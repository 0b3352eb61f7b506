package service

import (
	"sync"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// ConfigStore holds the process-wide audit configuration.
// Readers get a copy; the stored value is only replaced through Configure.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg entity.AuditConfiguration
}

// NewConfigStore creates a store seeded with initial, which must be valid
func NewConfigStore(initial entity.AuditConfiguration) (*ConfigStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &ConfigStore{cfg: initial}, nil
}

// Current returns a snapshot of the effective configuration
func (s *ConfigStore) Current() entity.AuditConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Configure merges patch into the current configuration and stores the result.
// An invalid merge is rejected and the previous configuration stays in effect.
func (s *ConfigStore) Configure(patch entity.AuditConfigurationPatch) (entity.AuditConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Apply(patch)
	if err := next.Validate(); err != nil {
		return s.cfg, err
	}
	s.cfg = next
	return next, nil
}
