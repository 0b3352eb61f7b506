package audit

import (
	"time"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// correctedValueFactor scales the category average when proposing a new value
const correctedValueFactor = 1.5

// Advisor proposes corrections for the problems found on an entry
type Advisor struct {
	now func() time.Time
}

// NewAdvisor creates a new correction advisor
func NewAdvisor() *Advisor {
	return &Advisor{now: time.Now}
}

// Suggest builds a correction for entry. The first problem of each kind fills
// its field; later problems of the same kind are ignored. It returns nil when
// no field could be filled.
func (a *Advisor) Suggest(e entity.Entry, problems []entity.Problem, averages entity.CategoryAverages) *entity.CorrectionSuggestion {
	suggestion := &entity.CorrectionSuggestion{}
	seen := make(map[entity.ProblemKind]bool, len(problems))

	for _, p := range problems {
		if seen[p.Kind] {
			continue
		}
		seen[p.Kind] = true

		switch p.Kind {
		case entity.ProblemClassification:
			category := SuggestCategory(e.Description, e.Kind)
			suggestion.Category = &category

		case entity.ProblemValue:
			if e.Value == nil {
				continue
			}
			value := *e.Value
			avg := averages.For(e.Category)
			if value > anomalyRatio*avg {
				value = correctedValueFactor * avg
			}
			suggestion.Value = &value

		case entity.ProblemDate:
			y, m, d := a.now().Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			suggestion.Date = &today

		case entity.ProblemDuplicate:
			suggestion.RemoveDuplicate = true
		}
	}

	if suggestion.IsEmpty() {
		return nil
	}
	return suggestion
}

// SuggestCategory picks a category from description terms, falling back to
// Vendas for revenue entries and Outros otherwise
func SuggestCategory(description string, kind entity.EntryKind) string {
	t := newText(description)
	for _, pattern := range suggestionPatterns {
		if t.matches(pattern.terms) {
			return pattern.category
		}
	}

	if kind == entity.EntryKindRevenue {
		return entity.CategorySales
	}
	return entity.CategoryOther
}
