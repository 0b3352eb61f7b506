package audit

import (
	"testing"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(expenses, revenues float64) []entity.Entry {
	return []entity.Entry{
		{ID: "d1", Kind: entity.EntryKindExpense, Value: ptrFloat(expenses / 2)},
		{ID: "c1", Kind: entity.EntryKindRevenue, Value: ptrFloat(revenues)},
		{ID: "d2", Kind: entity.EntryKindExpense, Value: ptrFloat(expenses / 2)},
		{ID: "t1", Kind: entity.EntryKindTransfer, Value: ptrFloat(99999)},
	}
}

func TestCrossCheck(t *testing.T) {
	tests := []struct {
		name     string
		expenses float64
		revenues float64
		wantSev  entity.Severity
		wantPct  string
	}{
		{name: "balanced", expenses: 10000, revenues: 10000},
		{name: "half percent", expenses: 10000, revenues: 10050},
		{name: "about two percent", expenses: 10000, revenues: 10200, wantSev: entity.SeverityMedium, wantPct: "1.96%"},
		{name: "six percent", expenses: 10000, revenues: 10640, wantSev: entity.SeverityHigh, wantPct: "6.02%"},
		{name: "debits larger", expenses: 10700, revenues: 10000, wantSev: entity.SeverityHigh, wantPct: "6.54%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := CrossCheck(batch(tt.expenses, tt.revenues))

			if tt.wantSev == "" {
				assert.Empty(t, problems)
				return
			}
			require.Len(t, problems, 1)
			assert.Equal(t, entity.ProblemOther, problems[0].Kind)
			assert.Equal(t, tt.wantSev, problems[0].Severity)
			assert.Contains(t, problems[0].Description, tt.wantPct)
		})
	}
}

func TestCrossCheck_NeedsBothSides(t *testing.T) {
	onlyExpenses := []entity.Entry{
		{ID: "d1", Kind: entity.EntryKindExpense, Value: ptrFloat(500)},
		{ID: "c1", Kind: entity.EntryKindRevenue, Value: nil},
		{ID: "c2", Kind: entity.EntryKindRevenue, Value: ptrFloat(-20)},
	}
	assert.Empty(t, CrossCheck(onlyExpenses))
	assert.Empty(t, CrossCheck(nil))
}
