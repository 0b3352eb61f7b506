package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []interface{}{"Entry", "Status", "Confidence", "Problems", "Suggested correction"}

// ReportWriter saves audit results as an .xlsx workbook
type ReportWriter struct {
	logger *zap.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(logger *zap.Logger) *ReportWriter {
	return &ReportWriter{logger: logger}
}

// Write stores one row per result plus a summary sheet at outputPath
func (rw *ReportWriter) Write(outputPath string, results []entity.VerificationResult, summary *entity.BatchAuditSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range results {
		row := []interface{}{
			r.EntryID,
			string(r.Status),
			r.Confidence,
			describeProblems(r.Problems),
			describeSuggestion(r.SuggestedCorrection),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write result row %d: %w", i+2, err)
		}
	}

	if summary != nil {
		if err := writeSummary(f, summary); err != nil {
			return err
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	rw.logger.Info("Audit report written",
		zap.String("output_path", outputPath),
		zap.Int("results", len(results)))

	return nil
}

func writeSummary(f *excelize.File, s *entity.BatchAuditSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Client", s.ClientID},
		{"Total entries", s.TotalEntries},
		{"Approved", s.StatusCounts.Approved},
		{"Flagged", s.StatusCounts.Flagged},
		{"Rejected", s.StatusCounts.Rejected},
		{"Generated at", s.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for _, k := range s.TopProblemKinds {
		rows = append(rows, []interface{}{"Problem: " + string(k.Kind), k.Count})
	}
	for _, p := range s.BatchProblems {
		rows = append(rows, []interface{}{"Batch: " + string(p.Severity), p.Description})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func describeProblems(problems []entity.Problem) string {
	parts := make([]string, 0, len(problems))
	for _, p := range problems {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", p.Severity, p.Kind, p.Description))
	}
	return strings.Join(parts, "\n")
}

func describeSuggestion(s *entity.CorrectionSuggestion) string {
	if s.IsEmpty() {
		return ""
	}

	var parts []string
	if s.Category != nil {
		parts = append(parts, "category="+*s.Category)
	}
	if s.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%.2f", *s.Value))
	}
	if s.Date != nil {
		parts = append(parts, "date="+s.Date.Format("2006-01-02"))
	}
	if s.RemoveDuplicate {
		parts = append(parts, "remove duplicate")
	}
	return strings.Join(parts, "; ")
}
