package entity

// ProblemKind classifies a detected defect
type ProblemKind string

// Problem kinds
const (
	ProblemClassification ProblemKind = "classification"
	ProblemValue          ProblemKind = "value"
	ProblemDate           ProblemKind = "date"
	ProblemDocument       ProblemKind = "document"
	ProblemDuplicate      ProblemKind = "duplicate"
	ProblemTax            ProblemKind = "tax"
	ProblemOther          ProblemKind = "other"
)

// Severity is the ordered importance of a problem: low < medium < high < critical
type Severity string

// Severities
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank gives the position of the severity in its ordering. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Problem is one defect found on an entry or on a batch
type Problem struct {
	Kind         ProblemKind `json:"kind"`
	Description  string      `json:"description"`
	Severity     Severity    `json:"severity"`
	ViolatedRule string      `json:"violated_rule,omitempty"`
}
