package entity

import "time"

// StatusCounts tallies verification results by status
type StatusCounts struct {
	Approved int `json:"approved"`
	Flagged  int `json:"flagged"`
	Rejected int `json:"rejected"`
}

// Add counts one result with the given status
func (c *StatusCounts) Add(status VerificationStatus) {
	switch status {
	case StatusApproved:
		c.Approved++
	case StatusFlagged:
		c.Flagged++
	case StatusRejected:
		c.Rejected++
	}
}

// ProblemKindCount is one row of the most frequent problem ranking
type ProblemKindCount struct {
	Kind  ProblemKind `json:"kind"`
	Count int         `json:"count"`
}

// BatchAuditSummary aggregates a full audit run for a client
type BatchAuditSummary struct {
	ClientID        string             `json:"client_id"`
	Period          *Period            `json:"period,omitempty"`
	TotalEntries    int                `json:"total_entries"`
	StatusCounts    StatusCounts       `json:"status_counts"`
	TopProblemKinds []ProblemKindCount `json:"top_problem_kinds"`
	BatchProblems   []Problem          `json:"batch_problems,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
