package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when an audit configuration update is rejected
var ErrInvalidConfiguration = errors.New("invalid audit configuration")

// AuditFrequency controls how audits are triggered
type AuditFrequency string

// Audit frequencies
const (
	FrequencyRealTime AuditFrequency = "real-time"
	FrequencyDaily    AuditFrequency = "daily"
	FrequencyWeekly   AuditFrequency = "weekly"
)

// ValidationLevel gates which rule families run
type ValidationLevel string

// Validation levels
const (
	ValidationBasic    ValidationLevel = "basic"
	ValidationFull     ValidationLevel = "full"
	ValidationAdvanced ValidationLevel = "advanced"
)

// AtLeast reports whether l includes the rules of other
func (l ValidationLevel) AtLeast(other ValidationLevel) bool {
	return l.rank() >= other.rank()
}

func (l ValidationLevel) rank() int {
	switch l {
	case ValidationBasic:
		return 1
	case ValidationFull:
		return 2
	case ValidationAdvanced:
		return 3
	}
	return 0
}

// AuditConfiguration is the process-wide audit behaviour
type AuditConfiguration struct {
	Frequency                     AuditFrequency  `json:"frequency" mapstructure:"frequency"`
	ValidationLevel               ValidationLevel `json:"validation_level" mapstructure:"validation_level"`
	ApplyCorrectionsAutomatically bool            `json:"apply_corrections_automatically" mapstructure:"apply_corrections_automatically"`
	NotifyOnInconsistency         bool            `json:"notify_on_inconsistency" mapstructure:"notify_on_inconsistency"`
	ConfidenceThreshold           float64         `json:"confidence_threshold" mapstructure:"confidence_threshold"`
	PersistHistory                bool            `json:"persist_history" mapstructure:"persist_history"`
	UseAI                         bool            `json:"use_ai" mapstructure:"use_ai"`
}

// DefaultAuditConfiguration returns the configuration in effect at process start
func DefaultAuditConfiguration() AuditConfiguration {
	return AuditConfiguration{
		Frequency:                     FrequencyRealTime,
		ValidationLevel:               ValidationBasic,
		ApplyCorrectionsAutomatically: false,
		NotifyOnInconsistency:         true,
		ConfidenceThreshold:           0.85,
		PersistHistory:                true,
		UseAI:                         true,
	}
}

// Validate ensures enum fields are known and the threshold lies in [0,1]
func (c AuditConfiguration) Validate() error {
	switch c.Frequency {
	case FrequencyRealTime, FrequencyDaily, FrequencyWeekly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidConfiguration, c.Frequency)
	}

	if c.ValidationLevel.rank() == 0 {
		return fmt.Errorf("%w: unknown validation level %q", ErrInvalidConfiguration, c.ValidationLevel)
	}

	if c.ConfidenceThreshold < 0.0 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("%w: confidence threshold must be between 0.0 and 1.0, got %.2f",
			ErrInvalidConfiguration, c.ConfidenceThreshold)
	}

	return nil
}

// AuditConfigurationPatch is a partial update; nil fields are left unchanged
type AuditConfigurationPatch struct {
	Frequency                     *AuditFrequency  `json:"frequency,omitempty"`
	ValidationLevel               *ValidationLevel `json:"validation_level,omitempty"`
	ApplyCorrectionsAutomatically *bool            `json:"apply_corrections_automatically,omitempty"`
	NotifyOnInconsistency         *bool            `json:"notify_on_inconsistency,omitempty"`
	ConfidenceThreshold           *float64         `json:"confidence_threshold,omitempty"`
	PersistHistory                *bool            `json:"persist_history,omitempty"`
	UseAI                         *bool            `json:"use_ai,omitempty"`
}

// Apply returns c with every non-nil field of patch merged in
func (c AuditConfiguration) Apply(patch AuditConfigurationPatch) AuditConfiguration {
	if patch.Frequency != nil {
		c.Frequency = *patch.Frequency
	}
	if patch.ValidationLevel != nil {
		c.ValidationLevel = *patch.ValidationLevel
	}
	if patch.ApplyCorrectionsAutomatically != nil {
		c.ApplyCorrectionsAutomatically = *patch.ApplyCorrectionsAutomatically
	}
	if patch.NotifyOnInconsistency != nil {
		c.NotifyOnInconsistency = *patch.NotifyOnInconsistency
	}
	if patch.ConfidenceThreshold != nil {
		c.ConfidenceThreshold = *patch.ConfidenceThreshold
	}
	if patch.PersistHistory != nil {
		c.PersistHistory = *patch.PersistHistory
	}
	if patch.UseAI != nil {
		c.UseAI = *patch.UseAI
	}
	return c
}
