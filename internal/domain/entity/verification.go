package entity

import "time"

// CorrectionSuggestion carries at most one proposal per correction kind.
// A nil field means no proposal of that kind.
type CorrectionSuggestion struct {
	Category        *string    `json:"category,omitempty"`
	Value           *float64   `json:"value,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	RemoveDuplicate bool       `json:"remove_duplicate,omitempty"`
}

// IsEmpty reports whether no correction field is populated
func (s *CorrectionSuggestion) IsEmpty() bool {
	return s == nil || (s.Category == nil && s.Value == nil && s.Date == nil && !s.RemoveDuplicate)
}

// VerificationResult is the audit outcome of a single entry.
// It is treated as an immutable value once produced.
type VerificationResult struct {
	EntryID             string                `json:"entry_id"`
	Status              VerificationStatus    `json:"status"`
	Confidence          float64               `json:"confidence"`
	Problems            []Problem             `json:"problems"`
	SuggestedCorrection *CorrectionSuggestion `json:"suggested_correction,omitempty"`
	Timestamp           time.Time             `json:"timestamp"`
}

// HasSeverity reports whether any problem carries the given severity
func (r VerificationResult) HasSeverity(severity Severity) bool {
	for _, p := range r.Problems {
		if p.Severity == severity {
			return true
		}
	}
	return false
}

// MostSevereProblem picks the first critical problem, else the first high one,
// else the first problem. ok is false when there are no problems.
func (r VerificationResult) MostSevereProblem() (Problem, bool) {
	if len(r.Problems) == 0 {
		return Problem{}, false
	}
	for _, severity := range []Severity{SeverityCritical, SeverityHigh} {
		for _, p := range r.Problems {
			if p.Severity == severity {
				return p, true
			}
		}
	}
	return r.Problems[0], true
}

// ResultRecord is a persisted VerificationResult in the audit history
type ResultRecord struct {
	ID        string             `json:"id"`
	ClientID  string             `json:"client_id,omitempty"`
	Result    VerificationResult `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}
