package spreadsheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/pkg/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// column identifies an entry field in the header row
type column int

const (
	colID column = iota
	colClient
	colDate
	colValue
	colDescription
	colKind
	colCategory
	colConfidence
)

// headerAliases maps normalized header titles to columns
var headerAliases = map[string]column{
	"id":          colID,
	"client_id":   colClient,
	"client":      colClient,
	"cliente":     colClient,
	"date":        colDate,
	"data":        colDate,
	"value":       colValue,
	"valor":       colValue,
	"description": colDescription,
	"descricao":   colDescription,
	"descrição":   colDescription,
	"historico":   colDescription,
	"histórico":   colDescription,
	"kind":        colKind,
	"tipo":        colKind,
	"category":    colCategory,
	"categoria":   colCategory,
	"confidence":  colConfidence,
	"confianca":   colConfidence,
	"confiança":   colConfidence,
}

var kindAliases = map[string]entity.EntryKind{
	"revenue":       entity.EntryKindRevenue,
	"receita":       entity.EntryKindRevenue,
	"expense":       entity.EntryKindExpense,
	"despesa":       entity.EntryKindExpense,
	"transfer":      entity.EntryKindTransfer,
	"transferencia": entity.EntryKindTransfer,
	"transferência": entity.EntryKindTransfer,
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05", time.RFC3339}

// WorkbookSource reads accounting entries from an .xlsx workbook.
// The first row of the sheet is the header; unknown columns are ignored.
type WorkbookSource struct {
	path   string
	sheet  string
	logger *zap.Logger
}

// NewWorkbookSource creates a reader for the given workbook.
// An empty sheet name selects the first sheet.
func NewWorkbookSource(path, sheet string, logger *zap.Logger) *WorkbookSource {
	return &WorkbookSource{
		path:   path,
		sheet:  sheet,
		logger: logger,
	}
}

// ReadAll returns every entry of the sheet in row order
func (w *WorkbookSource) ReadAll() ([]entity.Entry, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := w.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var entries []entity.Entry
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		e, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}

	w.logger.Info("Workbook loaded",
		zap.String("path", w.path),
		zap.String("sheet", sheet),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// FetchEntries implements port.EntrySource. Rows without a client belong to
// every client, and rows without a date are kept in every period.
func (w *WorkbookSource) FetchEntries(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error) {
	all, err := w.ReadAll()
	if err != nil {
		return nil, err
	}

	entries := make([]entity.Entry, 0, len(all))
	for _, e := range all {
		if clientID != "" && e.ClientID != "" && e.ClientID != clientID {
			continue
		}
		if period != nil && e.Date != nil && !period.Contains(*e.Date) {
			continue
		}
		if e.ClientID == "" {
			e.ClientID = clientID
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func parseHeader(header []string) (map[column]int, error) {
	columns := make(map[column]int)
	for i, title := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
		if col, ok := headerAliases[key]; ok {
			if _, dup := columns[col]; !dup {
				columns[col] = i
			}
		}
	}

	if _, ok := columns[colDescription]; !ok {
		return nil, fmt.Errorf("header has no description column")
	}
	if _, ok := columns[colValue]; !ok {
		return nil, fmt.Errorf("header has no value column")
	}
	return columns, nil
}

func parseRow(row []string, columns map[column]int) (entity.Entry, error) {
	cell := func(c column) string {
		i, ok := columns[c]
		if !ok || i >= len(row) {
			return ""
		}
		return utils.SanitizeString(row[i])
	}

	e := entity.Entry{
		ID:          cell(colID),
		ClientID:    cell(colClient),
		Description: cell(colDescription),
		Category:    cell(colCategory),
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if raw := cell(colKind); raw != "" {
		kind, ok := kindAliases[strings.ToLower(raw)]
		if !ok {
			kind = entity.EntryKind(strings.ToLower(raw))
		}
		e.Kind = kind
	}

	if raw := cell(colValue); raw != "" {
		v, err := parseAmount(raw)
		if err != nil {
			return e, fmt.Errorf("invalid value %q: %w", raw, err)
		}
		e.Value = &v
	}

	if raw := cell(colDate); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return e, err
		}
		e.Date = &d
	}

	if raw := cell(colConfidence); raw != "" {
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return e, fmt.Errorf("invalid confidence %q: %w", raw, err)
		}
		e.Confidence = c
	}

	return e, nil
}

// parseAmount accepts plain numbers and Brazilian formatted amounts such as "1.234,56"
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

// parseDate accepts textual dates and Excel serial day numbers
func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %q: %w", raw, err)
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Verify interface compliance
var _ port.EntrySource = (*WorkbookSource)(nil)
