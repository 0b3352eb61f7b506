package audit

import (
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	imbalanceTolerance = decimal.NewFromFloat(0.01)
	imbalanceHigh      = decimal.NewFromFloat(0.05)
	hundred            = decimal.NewFromInt(100)
)

// CrossCheck compares the expense (debit) and revenue (credit) totals of a
// batch. It emits at most one problem and never touches per-entry results.
// Entries without a positive value do not count towards either total.
func CrossCheck(entries []entity.Entry) []entity.Problem {
	debits := decimal.Zero
	credits := decimal.Zero

	for _, e := range entries {
		if e.Value == nil || !(*e.Value > 0) {
			continue
		}
		switch e.Kind {
		case entity.EntryKindExpense:
			debits = debits.Add(decimal.NewFromFloat(*e.Value))
		case entity.EntryKindRevenue:
			credits = credits.Add(decimal.NewFromFloat(*e.Value))
		}
	}

	if !debits.IsPositive() || !credits.IsPositive() {
		return nil
	}

	diff := debits.Sub(credits).Abs()
	relative := diff.Div(decimal.Max(debits, credits))
	if !relative.GreaterThan(imbalanceTolerance) {
		return nil
	}

	severity := entity.SeverityMedium
	if relative.GreaterThan(imbalanceHigh) {
		severity = entity.SeverityHigh
	}

	return []entity.Problem{{
		Kind: entity.ProblemOther,
		Description: fmt.Sprintf("debit/credit imbalance of %s%% (expenses %s, revenues %s)",
			relative.Mul(hundred).StringFixed(2), debits.StringFixed(2), credits.StringFixed(2)),
		Severity: severity,
	}}
}
