package spreadsheet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}

	path := filepath.Join(t.TempDir(), "entries.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookSource_ReadAll(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"ID", "Cliente", "Data", "Valor", "Descrição", "Tipo", "Categoria", "Notes"},
		{"e1", "acme", "2024-03-10", 1500.5, "Venda balcão", "receita", "Vendas", "ignored"},
		{"e2", "acme", "15/03/2024", "1.234,56", "Aluguel março", "despesa", "Aluguel"},
		{},
		{"e3", "", "", "", "ab", "despesa"},
	})

	entries, err := NewWorkbookSource(path, "", zap.NewNop()).ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	e1 := entries[0]
	assert.Equal(t, "e1", e1.ID)
	assert.Equal(t, "acme", e1.ClientID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *e1.Date)
	assert.Equal(t, 1500.5, *e1.Value)
	assert.Equal(t, entity.EntryKindRevenue, e1.Kind)
	assert.Equal(t, entity.CategorySales, e1.Category)

	e2 := entries[1]
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *e2.Date)
	assert.InDelta(t, 1234.56, *e2.Value, 1e-9)
	assert.Equal(t, entity.EntryKindExpense, e2.Kind)

	e3 := entries[2]
	assert.Nil(t, e3.Value)
	assert.Nil(t, e3.Date)
	assert.Equal(t, "ab", e3.Description)
}

func TestWorkbookSource_FetchEntriesFilters(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"id", "client_id", "date", "value", "description", "kind"},
		{"e1", "acme", "2024-03-10", 100, "Venda", "revenue"},
		{"e2", "globex", "2024-03-11", 100, "Venda", "revenue"},
		{"e3", "acme", "2024-04-01", 100, "Venda", "revenue"},
		{"e4", "", "", 100, "Venda sem data", "revenue"},
	})
	src := NewWorkbookSource(path, "", zap.NewNop())

	period := &entity.Period{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	entries, err := src.FetchEntries(context.Background(), "acme", period)
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
		assert.Equal(t, "acme", e.ClientID)
	}
	assert.Equal(t, []string{"e1", "e4"}, ids)
}

func TestWorkbookSource_Errors(t *testing.T) {
	noDescription := writeWorkbook(t, [][]interface{}{{"id", "value"}, {"e1", 10}})
	_, err := NewWorkbookSource(noDescription, "", zap.NewNop()).ReadAll()
	assert.ErrorContains(t, err, "description")

	badDate := writeWorkbook(t, [][]interface{}{{"description", "value", "date"}, {"Venda", 10, "ontem"}})
	_, err = NewWorkbookSource(badDate, "", zap.NewNop()).ReadAll()
	assert.ErrorContains(t, err, "row 2")

	_, err = NewWorkbookSource(filepath.Join(t.TempDir(), "missing.xlsx"), "", zap.NewNop()).ReadAll()
	assert.Error(t, err)
}

func TestWorkbookSource_GeneratesMissingIDs(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"description", "value"}, {"Venda", 10}, {"Venda", 20}})

	entries, err := NewWorkbookSource(path, "", zap.NewNop()).ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestParseDate_ExcelSerial(t *testing.T) {
	got, err := parseDate("45361")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]float64{
		"1500":        1500,
		"1500.75":     1500.75,
		"1.234,56":    1234.56,
		"R$ 2.000,00": 2000,
		"-10":         -10,
	}
	for raw, want := range tests {
		got, err := parseAmount(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, got, 1e-9, raw)
	}

	_, err := parseAmount("abc")
	assert.Error(t, err)
}
