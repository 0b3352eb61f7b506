package service

import (
	"context"
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// ClassificationReport summarizes a classification pass over a client's entries
type ClassificationReport struct {
	ClientID   string `json:"client_id"`
	Classified int    `json:"classified"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// ClassificationService attaches categories to unlabeled entries
type ClassificationService interface {
	ClassifyClient(ctx context.Context, clientID string) (*ClassificationReport, error)
}

type classificationServiceImpl struct {
	entryRepo  port.EntryRepository
	classifier port.EntryClassifier
	logger     Logger
}

// NewClassificationService creates a new ClassificationService
func NewClassificationService(entryRepo port.EntryRepository, classifier port.EntryClassifier, logger Logger) ClassificationService {
	return &classificationServiceImpl{
		entryRepo:  entryRepo,
		classifier: classifier,
		logger:     logger,
	}
}

// ClassifyClient labels every entry of the client that has no category yet.
// A classifier failure on one entry is logged and counted; storage failures abort.
func (s *classificationServiceImpl) ClassifyClient(ctx context.Context, clientID string) (*ClassificationReport, error) {
	entries, err := s.entryRepo.FetchEntries(ctx, clientID, nil)
	if err != nil {
		s.logger.Error("Failed to fetch entries", "error", err, "client_id", clientID)
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	report := &ClassificationReport{ClientID: clientID}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if e.Category != "" {
			report.Skipped++
			continue
		}

		classification, err := s.classify(ctx, e)
		if err != nil {
			s.logger.Error("Failed to classify entry", "error", err, "entry_id", e.ID)
			report.Failed++
			continue
		}

		if err := s.entryRepo.UpdateClassification(ctx, e.ID, classification.Category, classification.Confidence); err != nil {
			s.logger.Error("Failed to store classification", "error", err, "entry_id", e.ID)
			return nil, fmt.Errorf("update classification of entry %s: %w", e.ID, err)
		}

		s.logger.Info("Entry classified",
			"entry_id", e.ID,
			"category", classification.Category,
			"confidence", classification.Confidence,
		)
		report.Classified++
	}

	s.logger.Info("Classification completed",
		"client_id", clientID,
		"classified", report.Classified,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	return report, nil
}

func (s *classificationServiceImpl) classify(ctx context.Context, e entity.Entry) (*port.Classification, error) {
	classification, err := s.classifier.Classify(ctx, e)
	if err != nil {
		return nil, err
	}
	if classification == nil || classification.Category == "" {
		return nil, fmt.Errorf("classifier returned no category")
	}
	if classification.Confidence < 0 || classification.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence %.2f out of range", classification.Confidence)
	}
	return classification, nil
}
