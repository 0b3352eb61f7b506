package audit

import (
	"context"
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// KeywordClassifier labels entries from description keywords alone.
// It is used when no language model is configured.
type KeywordClassifier struct{}

var _ port.EntryClassifier = KeywordClassifier{}

// Classify picks the first matching category and scores it by keyword coherence
func (KeywordClassifier) Classify(ctx context.Context, e entity.Entry) (*port.Classification, error) {
	category := SuggestCategory(e.Description, e.Kind)
	confidence := Coherence(category, e.Description)

	return &port.Classification{
		Category:   category,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("keyword match (coherence %.0f%%)", confidence*100),
	}, nil
}
