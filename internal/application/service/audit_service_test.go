package service

import (
	"context"
	"testing"
	"time"

	"github.com/garyjia/ledger-auditor/internal/audit"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var auditDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

type auditFixture struct {
	source      *mockEntrySource
	stats       *mockCategoryStats
	history     *mockHistory
	corrections *mockCorrectionWriter
	notifier    *mockNotifier
	service     AuditService
}

func newAuditFixture(t *testing.T, cfg entity.AuditConfiguration) *auditFixture {
	t.Helper()

	store, err := NewConfigStore(cfg)
	require.NoError(t, err)

	f := &auditFixture{
		source:      &mockEntrySource{},
		stats:       &mockCategoryStats{},
		history:     &mockHistory{},
		corrections: &mockCorrectionWriter{},
		notifier:    &mockNotifier{},
	}
	validator := audit.NewValidator(nil, audit.NewAdvisor(), zap.NewNop())
	f.service = NewAuditService(store, validator, f.source, f.stats, f.history, f.corrections, f.notifier,
		entity.CategoryAverages{entity.CategorySales: 5000}, &mockLogger{})
	f.service.(*auditServiceImpl).now = func() time.Time { return auditDay }
	return f
}

func value(v float64) *float64 { return &v }

func day(t time.Time) *time.Time { return &t }

func goodEntry(id string) entity.Entry {
	return entity.Entry{
		ID:          id,
		ClientID:    "client-1",
		Date:        day(auditDay),
		Value:       value(1200),
		Description: "Venda para cliente ACME",
		Kind:        entity.EntryKindRevenue,
		Category:    entity.CategorySales,
	}
}

func TestAuditService_ConfigureComposes(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())
	ctx := context.Background()

	level := entity.ValidationAdvanced
	_, err := f.service.Configure(ctx, entity.AuditConfigurationPatch{ValidationLevel: &level})
	require.NoError(t, err)

	frequency := entity.FrequencyDaily
	cfg, err := f.service.Configure(ctx, entity.AuditConfigurationPatch{Frequency: &frequency})
	require.NoError(t, err)

	assert.Equal(t, entity.ValidationAdvanced, cfg.ValidationLevel)
	assert.Equal(t, entity.FrequencyDaily, cfg.Frequency)
	assert.Equal(t, cfg, f.service.Config())
}

func TestAuditService_ConfigureRejectsInvalidThreshold(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	threshold := 1.2
	_, err := f.service.Configure(context.Background(), entity.AuditConfigurationPatch{ConfidenceThreshold: &threshold})

	assert.ErrorIs(t, err, entity.ErrInvalidConfiguration)
	assert.Equal(t, entity.DefaultAuditConfiguration(), f.service.Config())
}

func TestAuditService_AuditBatchKeepsOrder(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	bad := goodEntry("e2")
	bad.Value = nil
	entries := []entity.Entry{goodEntry("e1"), bad, goodEntry("e3")}

	results, err := f.service.AuditBatch(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "e1", results[0].EntryID)
	assert.Equal(t, "e2", results[1].EntryID)
	assert.Equal(t, "e3", results[2].EntryID)
	assert.Equal(t, entity.StatusApproved, results[0].Status)
	assert.Equal(t, entity.StatusRejected, results[1].Status)
}

func TestAuditService_NotifiesMostSevereCriticalProblem(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	e := goodEntry("e1")
	e.Description = "ab"
	e.Date = nil

	_, err := f.service.AuditBatch(context.Background(), []entity.Entry{e, goodEntry("e2")})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	n := f.notifier.sent[0]
	assert.Equal(t, entity.SeverityCritical, n.Severity)
	assert.Contains(t, n.Description, "missing date")
	assert.Equal(t, "e1", n.EntryID)
	assert.Equal(t, "client-1", n.ClientID)
}

func TestAuditService_NoNotificationWithoutCriticalOrWhenDisabled(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	flagged := goodEntry("e1")
	flagged.Description = "ab"
	_, err := f.service.AuditBatch(context.Background(), []entity.Entry{flagged})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent, "high problems alone do not notify")

	cfg := entity.DefaultAuditConfiguration()
	cfg.NotifyOnInconsistency = false
	f = newAuditFixture(t, cfg)
	rejected := goodEntry("e2")
	rejected.Value = nil
	_, err = f.service.AuditBatch(context.Background(), []entity.Entry{rejected})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestAuditService_AutoCorrection(t *testing.T) {
	tests := []struct {
		name          string
		apply         bool
		threshold     float64
		useAI         bool
		wantApplied   bool
		wantNotifySum int
	}{
		{name: "applied above threshold", apply: true, threshold: 0.5, useAI: true, wantApplied: true, wantNotifySum: 2},
		{name: "confidence not above threshold", apply: true, threshold: 0.85, useAI: true, wantNotifySum: 1},
		{name: "threshold equal to confidence", apply: true, threshold: 0.6, useAI: true, wantNotifySum: 1},
		{name: "corrections disabled", apply: false, threshold: 0.5, useAI: true, wantNotifySum: 1},
		{name: "no suggestion without AI", apply: true, threshold: 0.5, useAI: false, wantNotifySum: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := entity.DefaultAuditConfiguration()
			cfg.ApplyCorrectionsAutomatically = tt.apply
			cfg.ConfidenceThreshold = tt.threshold
			cfg.UseAI = tt.useAI
			f := newAuditFixture(t, cfg)

			// Single critical problem: rejected with confidence 0.6
			e := goodEntry("e1")
			e.Date = nil

			results, err := f.service.AuditBatch(context.Background(), []entity.Entry{e})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, entity.StatusRejected, results[0].Status)
			assert.InDelta(t, 0.6, results[0].Confidence, 1e-9)

			assert.Len(t, f.notifier.sent, tt.wantNotifySum)
			if !tt.wantApplied {
				assert.Empty(t, f.corrections.applied)
				return
			}

			require.Len(t, f.corrections.applied, 1)
			assert.Equal(t, "e1", f.corrections.applied[0].entryID)
			assert.NotNil(t, f.corrections.applied[0].suggestion.Date)
			assert.Equal(t, "Correction applied", f.notifier.sent[1].Title)
		})
	}
}

func TestAuditService_RecordsHistory(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	_, err := f.service.AuditBatch(context.Background(), []entity.Entry{goodEntry("e1"), goodEntry("e2")})
	require.NoError(t, err)
	require.Len(t, f.history.records, 2)
	assert.Equal(t, "client-1", f.history.records[0].clientID)
	assert.Equal(t, "e2", f.history.records[1].result.EntryID)

	cfg := entity.DefaultAuditConfiguration()
	cfg.PersistHistory = false
	f = newAuditFixture(t, cfg)
	_, err = f.service.AuditBatch(context.Background(), []entity.Entry{goodEntry("e1")})
	require.NoError(t, err)
	assert.Empty(t, f.history.records)
}

func TestAuditService_CollaboratorErrorsPropagate(t *testing.T) {
	rejected := goodEntry("e1")
	rejected.Value = nil

	t.Run("history", func(t *testing.T) {
		f := newAuditFixture(t, entity.DefaultAuditConfiguration())
		f.history.err = errBoom
		_, err := f.service.AuditBatch(context.Background(), []entity.Entry{goodEntry("e1")})
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("notifier", func(t *testing.T) {
		f := newAuditFixture(t, entity.DefaultAuditConfiguration())
		f.notifier.err = errBoom
		_, err := f.service.AuditBatch(context.Background(), []entity.Entry{rejected})
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("stats", func(t *testing.T) {
		f := newAuditFixture(t, entity.DefaultAuditConfiguration())
		f.stats.err = errBoom
		_, err := f.service.AuditBatch(context.Background(), []entity.Entry{goodEntry("e1")})
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("fetch", func(t *testing.T) {
		f := newAuditFixture(t, entity.DefaultAuditConfiguration())
		f.source.fetchFunc = func(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error) {
			return nil, errBoom
		}
		summary, err := f.service.RunFullAudit(context.Background(), "client-1", nil)
		assert.ErrorIs(t, err, errBoom)
		assert.Nil(t, summary)
	})
}

func TestAuditService_ObservedAveragesOverrideDefaults(t *testing.T) {
	cfg := entity.DefaultAuditConfiguration()
	cfg.ValidationLevel = entity.ValidationFull
	f := newAuditFixture(t, cfg)
	f.stats.averages = entity.CategoryAverages{entity.CategorySales: 300}

	results, err := f.service.AuditBatch(context.Background(), []entity.Entry{goodEntry("e1")})
	require.NoError(t, err)
	require.Len(t, results[0].Problems, 1)
	assert.Equal(t, entity.ProblemValue, results[0].Problems[0].Kind)
	assert.Contains(t, results[0].Problems[0].Description, "4.0x the average")
}

func TestAuditService_RunFullAuditSummary(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	missing := goodEntry("e2")
	missing.Value = nil
	period := &entity.Period{From: auditDay.AddDate(0, 0, -7), To: auditDay}

	var gotClient string
	var gotPeriod *entity.Period
	f.source.fetchFunc = func(ctx context.Context, clientID string, p *entity.Period) ([]entity.Entry, error) {
		gotClient, gotPeriod = clientID, p
		return []entity.Entry{goodEntry("e1"), missing, goodEntry("e3")}, nil
	}

	summary, err := f.service.RunFullAudit(context.Background(), "client-1", period)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "client-1", gotClient)
	assert.Same(t, period, gotPeriod)
	assert.Equal(t, "client-1", summary.ClientID)
	assert.Equal(t, 3, summary.TotalEntries)
	assert.Equal(t, entity.StatusCounts{Approved: 2, Rejected: 1}, summary.StatusCounts)
	require.NotEmpty(t, summary.TopProblemKinds)
	assert.Equal(t, entity.ProblemValue, summary.TopProblemKinds[0].Kind)
	assert.GreaterOrEqual(t, summary.TopProblemKinds[0].Count, 1)
	assert.Equal(t, auditDay, summary.GeneratedAt)
}

func TestAuditService_RunFullAuditIncludesCrossCheck(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	expense := goodEntry("e1")
	expense.Kind = entity.EntryKindExpense
	expense.Value = value(1000)
	revenue := goodEntry("e2")
	revenue.Value = value(1060)
	f.source.fetchFunc = func(ctx context.Context, clientID string, p *entity.Period) ([]entity.Entry, error) {
		return []entity.Entry{expense, revenue}, nil
	}

	summary, err := f.service.RunFullAudit(context.Background(), "client-1", nil)
	require.NoError(t, err)
	require.Len(t, summary.BatchProblems, 1)
	assert.Equal(t, entity.SeverityHigh, summary.BatchProblems[0].Severity)
	assert.Equal(t, 2, summary.StatusCounts.Approved, "cross-check must not alter entry results")
}

func TestAuditService_RunFullAuditCancelled(t *testing.T) {
	f := newAuditFixture(t, entity.DefaultAuditConfiguration())

	ctx, cancel := context.WithCancel(context.Background())
	f.source.fetchFunc = func(ctx context.Context, clientID string, p *entity.Period) ([]entity.Entry, error) {
		cancel()
		return []entity.Entry{goodEntry("e1"), goodEntry("e2")}, nil
	}

	summary, err := f.service.RunFullAudit(ctx, "client-1", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, summary)
	assert.Empty(t, f.history.records)
}

func TestSummarize_RanksKindsStably(t *testing.T) {
	p := func(kind entity.ProblemKind) entity.Problem {
		return entity.Problem{Kind: kind, Severity: entity.SeverityMedium}
	}
	results := []entity.VerificationResult{
		{Status: entity.StatusFlagged, Problems: []entity.Problem{p(entity.ProblemTax), p(entity.ProblemValue)}},
		{Status: entity.StatusFlagged, Problems: []entity.Problem{p(entity.ProblemDocument), p(entity.ProblemValue)}},
		{Status: entity.StatusFlagged, Problems: []entity.Problem{p(entity.ProblemDate), p(entity.ProblemDuplicate), p(entity.ProblemClassification)}},
		{Status: entity.StatusApproved},
	}

	summary := Summarize(results)

	assert.Equal(t, 4, summary.TotalEntries)
	assert.Equal(t, entity.StatusCounts{Approved: 1, Flagged: 3}, summary.StatusCounts)
	assert.Equal(t, []entity.ProblemKindCount{
		{Kind: entity.ProblemValue, Count: 2},
		{Kind: entity.ProblemTax, Count: 1},
		{Kind: entity.ProblemDocument, Count: 1},
		{Kind: entity.ProblemDate, Count: 1},
		{Kind: entity.ProblemDuplicate, Count: 1},
	}, summary.TopProblemKinds)
}
