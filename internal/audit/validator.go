package audit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"go.uber.org/zap"
)

// Rule thresholds
const (
	minDescriptionLength = 3

	coherenceThreshold     = 0.7
	coherenceHighThreshold = 0.4
	unknownCoherence       = 0.5

	anomalyRatio     = 3.0
	highAnomalyRatio = 5.0
)

// taxDeadline is a filing deadline for a tax mentioned in the description
type taxDeadline struct {
	terms keywordGroup
	day   int
	rule  string
	label string
}

var taxDeadlines = []taxDeadline{
	{terms: keywordGroup{"inss"}, day: 20, rule: "INSS deadline: day 20", label: "INSS"},
	{terms: keywordGroup{"fgts"}, day: 7, rule: "FGTS deadline: day 7", label: "FGTS"},
	{terms: keywordGroup{"pis", "cofins"}, day: 25, rule: "PIS/COFINS deadline: day 25", label: "PIS/COFINS"},
}

// Validator evaluates the audit rules against a single entry
type Validator struct {
	duplicates port.DuplicateDetector
	advisor    *Advisor
	now        func() time.Time
	logger     *zap.Logger
}

// NewValidator creates a validator. duplicates may be nil, in which case the
// duplicate check never fires.
func NewValidator(duplicates port.DuplicateDetector, advisor *Advisor, logger *zap.Logger) *Validator {
	if advisor == nil {
		advisor = NewAdvisor()
	}
	return &Validator{
		duplicates: duplicates,
		advisor:    advisor,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the clock used for result timestamps and suggested
// dates. The validator gets its own advisor copy so a shared advisor keeps
// its clock.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	advisor := *v.advisor
	advisor.now = now
	v.advisor = &advisor
	v.now = now
	return v
}

// Validate audits one entry under cfg. Malformed entries produce problems,
// never errors; only a failing duplicate lookup returns an error.
func (v *Validator) Validate(ctx context.Context, e entity.Entry, cfg entity.AuditConfiguration, averages entity.CategoryAverages) (entity.VerificationResult, error) {
	var problems []entity.Problem

	problems = append(problems, checkValue(e)...)
	problems = append(problems, checkDate(e)...)
	problems = append(problems, checkDescription(e)...)

	if cfg.ValidationLevel.AtLeast(entity.ValidationFull) {
		problems = append(problems, checkClassification(e)...)
		problems = append(problems, checkValuePattern(e, averages)...)
	}

	if cfg.ValidationLevel.AtLeast(entity.ValidationAdvanced) {
		problems = append(problems, checkTaxCalendar(e)...)

		duplicate, err := v.checkDuplicate(ctx, e)
		if err != nil {
			return entity.VerificationResult{}, err
		}
		problems = append(problems, duplicate...)
	}

	result := entity.VerificationResult{
		EntryID:    e.ID,
		Status:     DeriveStatus(problems),
		Confidence: Score(problems),
		Problems:   problems,
		Timestamp:  v.now(),
	}

	if len(problems) > 0 && cfg.UseAI {
		result.SuggestedCorrection = v.advisor.Suggest(e, problems, averages)
	}

	v.logger.Debug("Entry validated",
		zap.String("entry_id", e.ID),
		zap.String("status", string(result.Status)),
		zap.Int("problems", len(problems)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

func checkValue(e entity.Entry) []entity.Problem {
	if e.Value == nil || !(*e.Value > 0) || math.IsInf(*e.Value, 0) {
		return []entity.Problem{{
			Kind:        entity.ProblemValue,
			Description: "invalid or non-positive value",
			Severity:    entity.SeverityCritical,
		}}
	}
	return nil
}

func checkDate(e entity.Entry) []entity.Problem {
	if e.Date == nil || e.Date.IsZero() {
		return []entity.Problem{{
			Kind:        entity.ProblemDate,
			Description: "missing date",
			Severity:    entity.SeverityCritical,
		}}
	}
	return nil
}

func checkDescription(e entity.Entry) []entity.Problem {
	if len([]rune(strings.TrimSpace(e.Description))) < minDescriptionLength {
		return []entity.Problem{{
			Kind:        entity.ProblemDocument,
			Description: "missing or too-short description",
			Severity:    entity.SeverityHigh,
		}}
	}
	return nil
}

// Coherence measures how well description matches the keyword groups of category
func Coherence(category, description string) float64 {
	groups, ok := categoryKeywords[category]
	if !ok || len(groups) == 0 {
		return unknownCoherence
	}

	t := newText(description)
	matched := 0
	for _, group := range groups {
		if t.matches(group) {
			matched++
		}
	}
	return float64(matched) / float64(len(groups))
}

func checkClassification(e entity.Entry) []entity.Problem {
	if e.Category == "" {
		return nil
	}

	coherence := Coherence(e.Category, e.Description)
	if coherence >= coherenceThreshold {
		return nil
	}

	severity := entity.SeverityMedium
	if coherence < coherenceHighThreshold {
		severity = entity.SeverityHigh
	}

	return []entity.Problem{{
		Kind: entity.ProblemClassification,
		Description: fmt.Sprintf("description does not match category %q (coherence %d%%)",
			e.Category, int(math.Round(coherence*100))),
		Severity: severity,
	}}
}

func checkValuePattern(e entity.Entry, averages entity.CategoryAverages) []entity.Problem {
	if e.Value == nil || !(*e.Value > 0) {
		return nil
	}

	ratio := *e.Value / averages.For(e.Category)
	if ratio <= anomalyRatio {
		return nil
	}

	severity := entity.SeverityMedium
	if ratio > highAnomalyRatio {
		severity = entity.SeverityHigh
	}

	return []entity.Problem{{
		Kind:        entity.ProblemValue,
		Description: fmt.Sprintf("anomalous value: %.1fx the average", ratio),
		Severity:    severity,
	}}
}

func checkTaxCalendar(e entity.Entry) []entity.Problem {
	if e.Category != entity.CategoryTaxes || e.Date == nil {
		return nil
	}

	day := e.Date.Day()
	t := newText(e.Description)

	var problems []entity.Problem
	for _, deadline := range taxDeadlines {
		if t.matches(deadline.terms) && day > deadline.day {
			problems = append(problems, entity.Problem{
				Kind: entity.ProblemTax,
				Description: fmt.Sprintf("%s paid on day %d, after the day %d deadline",
					deadline.label, day, deadline.day),
				Severity:     entity.SeverityHigh,
				ViolatedRule: deadline.rule,
			})
		}
	}
	return problems
}

func (v *Validator) checkDuplicate(ctx context.Context, e entity.Entry) ([]entity.Problem, error) {
	if v.duplicates == nil {
		return nil, nil
	}

	duplicate, err := v.duplicates.IsLikelyDuplicate(ctx, e)
	if err != nil {
		v.logger.Error("Duplicate lookup failed", zap.String("entry_id", e.ID), zap.Error(err))
		return nil, fmt.Errorf("duplicate lookup for entry %s: %w", e.ID, err)
	}
	if !duplicate {
		return nil, nil
	}

	return []entity.Problem{{
		Kind:        entity.ProblemDuplicate,
		Description: "possible duplicate entry.",
		Severity:    entity.SeverityHigh,
	}}, nil
}
