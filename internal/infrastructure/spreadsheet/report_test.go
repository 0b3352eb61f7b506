package spreadsheet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestReportWriter_Write(t *testing.T) {
	category := entity.CategoryOther
	results := []entity.VerificationResult{
		{EntryID: "e1", Status: entity.StatusApproved, Confidence: 1},
		{
			EntryID:    "e2",
			Status:     entity.StatusFlagged,
			Confidence: 0.8,
			Problems: []entity.Problem{
				{Kind: entity.ProblemClassification, Severity: entity.SeverityHigh, Description: "description does not match category"},
			},
			SuggestedCorrection: &entity.CorrectionSuggestion{Category: &category},
		},
	}
	summary := &entity.BatchAuditSummary{
		ClientID:        "acme",
		TotalEntries:    2,
		StatusCounts:    entity.StatusCounts{Approved: 1, Flagged: 1},
		TopProblemKinds: []entity.ProblemKindCount{{Kind: entity.ProblemClassification, Count: 1}},
		GeneratedAt:     time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewReportWriter(zap.NewNop()).Write(path, results, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Entry", rows[0][0])
	assert.Equal(t, "e2", rows[2][0])
	assert.Equal(t, "flagged", rows[2][1])
	assert.Contains(t, rows[2][3], "[high] classification")
	assert.Equal(t, "category=Outros", rows[2][4])

	summaryRows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Client", "acme"}, summaryRows[0])
	assert.Equal(t, []string{"Problem: classification", "1"}, summaryRows[6])
}
