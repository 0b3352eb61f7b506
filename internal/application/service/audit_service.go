package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/audit"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// Logger is the minimal logging contract used by services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// topProblemKinds is the length of the problem ranking in a summary
const topProblemKinds = 5

// AuditService orchestrates audit runs over batches of entries
type AuditService interface {
	Configure(ctx context.Context, patch entity.AuditConfigurationPatch) (entity.AuditConfiguration, error)
	Config() entity.AuditConfiguration
	AuditBatch(ctx context.Context, entries []entity.Entry) ([]entity.VerificationResult, error)
	RunFullAudit(ctx context.Context, clientID string, period *entity.Period) (*entity.BatchAuditSummary, error)
}

type auditServiceImpl struct {
	config      *ConfigStore
	validator   *audit.Validator
	source      port.EntrySource
	stats       port.CategoryStats
	history     port.HistoryRecorder
	corrections port.CorrectionWriter
	notifier    port.Notifier
	defaults    entity.CategoryAverages
	now         func() time.Time
	logger      Logger
}

// NewAuditService creates a new AuditService.
// defaults are the category averages used where stats has no data; stats may be nil.
func NewAuditService(
	config *ConfigStore,
	validator *audit.Validator,
	source port.EntrySource,
	stats port.CategoryStats,
	history port.HistoryRecorder,
	corrections port.CorrectionWriter,
	notifier port.Notifier,
	defaults entity.CategoryAverages,
	logger Logger,
) AuditService {
	return &auditServiceImpl{
		config:      config,
		validator:   validator,
		source:      source,
		stats:       stats,
		history:     history,
		corrections: corrections,
		notifier:    notifier,
		defaults:    defaults,
		now:         time.Now,
		logger:      logger,
	}
}

// Configure merges a partial update into the audit configuration
func (s *auditServiceImpl) Configure(ctx context.Context, patch entity.AuditConfigurationPatch) (entity.AuditConfiguration, error) {
	cfg, err := s.config.Configure(patch)
	if err != nil {
		s.logger.Error("Rejected audit configuration update", "error", err)
		return cfg, err
	}

	s.logger.Info("Audit configuration updated",
		"frequency", cfg.Frequency,
		"validation_level", cfg.ValidationLevel,
		"apply_corrections", cfg.ApplyCorrectionsAutomatically,
		"confidence_threshold", cfg.ConfidenceThreshold,
	)
	return cfg, nil
}

// Config returns the effective audit configuration
func (s *auditServiceImpl) Config() entity.AuditConfiguration {
	return s.config.Current()
}

// AuditBatch validates entries in input order and returns one result per entry
func (s *auditServiceImpl) AuditBatch(ctx context.Context, entries []entity.Entry) ([]entity.VerificationResult, error) {
	results, _, err := s.auditBatch(ctx, entries)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RunFullAudit audits every entry of a client and summarizes the outcome
func (s *auditServiceImpl) RunFullAudit(ctx context.Context, clientID string, period *entity.Period) (*entity.BatchAuditSummary, error) {
	s.logger.Info("Starting full audit", "client_id", clientID)

	entries, err := s.source.FetchEntries(ctx, clientID, period)
	if err != nil {
		s.logger.Error("Failed to fetch entries", "error", err, "client_id", clientID)
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	results, batchProblems, err := s.auditBatch(ctx, entries)
	if err != nil {
		s.logger.Error("Full audit aborted", "error", err, "client_id", clientID)
		return nil, err
	}

	summary := Summarize(results)
	summary.ClientID = clientID
	summary.Period = period
	summary.BatchProblems = batchProblems
	summary.GeneratedAt = s.now()

	s.logger.Info("Full audit completed",
		"client_id", clientID,
		"total_entries", summary.TotalEntries,
		"approved", summary.StatusCounts.Approved,
		"flagged", summary.StatusCounts.Flagged,
		"rejected", summary.StatusCounts.Rejected,
	)

	return summary, nil
}

func (s *auditServiceImpl) auditBatch(ctx context.Context, entries []entity.Entry) ([]entity.VerificationResult, []entity.Problem, error) {
	// One snapshot per batch
	cfg := s.config.Current()

	averages, err := s.referenceAverages(ctx)
	if err != nil {
		return nil, nil, err
	}

	results := make([]entity.VerificationResult, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		result, err := s.validator.Validate(ctx, e, cfg, averages)
		if err != nil {
			s.logger.Error("Failed to validate entry", "error", err, "entry_id", e.ID)
			return nil, nil, fmt.Errorf("validate entry %s: %w", e.ID, err)
		}

		if err := s.handleResult(ctx, cfg, e, result); err != nil {
			return nil, nil, err
		}

		results = append(results, result)
	}

	batchProblems := audit.CrossCheck(entries)
	for _, p := range batchProblems {
		s.logger.Info("Batch cross-check finding",
			"severity", p.Severity,
			"description", p.Description,
			"entries", len(entries),
		)
	}

	return results, batchProblems, nil
}

// handleResult records, notifies and auto-corrects a single result
func (s *auditServiceImpl) handleResult(ctx context.Context, cfg entity.AuditConfiguration, e entity.Entry, result entity.VerificationResult) error {
	if cfg.PersistHistory && s.history != nil {
		if err := s.history.RecordResult(ctx, e.ClientID, result); err != nil {
			s.logger.Error("Failed to record result", "error", err, "entry_id", e.ID)
			return fmt.Errorf("record result for entry %s: %w", e.ID, err)
		}
	}

	if cfg.NotifyOnInconsistency && result.HasSeverity(entity.SeverityCritical) {
		problem, _ := result.MostSevereProblem()
		err := s.notify(ctx, entity.Notification{
			Title:       "Critical inconsistency detected",
			Description: fmt.Sprintf("Entry %s: %s", e.ID, problem.Description),
			Severity:    problem.Severity,
			EntryID:     e.ID,
			ClientID:    e.ClientID,
		})
		if err != nil {
			return err
		}
	}

	if cfg.ApplyCorrectionsAutomatically && s.corrections != nil &&
		result.Status == entity.StatusRejected &&
		result.Confidence > cfg.ConfidenceThreshold &&
		!result.SuggestedCorrection.IsEmpty() {
		if err := s.corrections.ApplyCorrection(ctx, e.ID, *result.SuggestedCorrection); err != nil {
			s.logger.Error("Failed to apply correction", "error", err, "entry_id", e.ID)
			return fmt.Errorf("apply correction to entry %s: %w", e.ID, err)
		}

		s.logger.Info("Correction applied automatically", "entry_id", e.ID, "confidence", result.Confidence)

		err := s.notify(ctx, entity.Notification{
			Title:       "Correction applied",
			Description: fmt.Sprintf("Entry %s was corrected automatically", e.ID),
			Severity:    entity.SeverityLow,
			EntryID:     e.ID,
			ClientID:    e.ClientID,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *auditServiceImpl) notify(ctx context.Context, n entity.Notification) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("Failed to send notification", "error", err, "entry_id", n.EntryID, "title", n.Title)
		return fmt.Errorf("notify entry %s: %w", n.EntryID, err)
	}
	return nil
}

func (s *auditServiceImpl) referenceAverages(ctx context.Context) (entity.CategoryAverages, error) {
	if s.stats == nil {
		return s.defaults, nil
	}

	observed, err := s.stats.ReferenceAverages(ctx)
	if err != nil {
		s.logger.Error("Failed to load category averages", "error", err)
		return nil, fmt.Errorf("load category averages: %w", err)
	}
	return s.defaults.Merge(observed), nil
}

// Summarize counts results by status and ranks problem kinds by frequency.
// Ties keep the order in which kinds were first seen.
func Summarize(results []entity.VerificationResult) *entity.BatchAuditSummary {
	summary := &entity.BatchAuditSummary{TotalEntries: len(results)}

	counts := make(map[entity.ProblemKind]int)
	var seen []entity.ProblemKind
	for _, r := range results {
		summary.StatusCounts.Add(r.Status)
		for _, p := range r.Problems {
			if _, ok := counts[p.Kind]; !ok {
				seen = append(seen, p.Kind)
			}
			counts[p.Kind]++
		}
	}

	ranking := make([]entity.ProblemKindCount, 0, len(seen))
	for _, kind := range seen {
		ranking = append(ranking, entity.ProblemKindCount{Kind: kind, Count: counts[kind]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	if len(ranking) > topProblemKinds {
		ranking = ranking[:topProblemKinds]
	}
	summary.TopProblemKinds = ranking

	return summary
}
