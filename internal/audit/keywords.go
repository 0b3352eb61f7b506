package audit

import (
	"strings"
	"unicode"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// keywordGroup is a set of synonyms; the group matches when any member does.
// A trailing '*' turns a member into a word-prefix match, and members
// containing a space match as a phrase.
type keywordGroup []string

// categoryKeywords drives the classification coherence check. Coherence is the
// fraction of a category's groups found in the description.
var categoryKeywords = map[string][]keywordGroup{
	entity.CategorySales: {
		{"vend*", "faturamento", "recebimento*"},
		{"cliente*", "nf", "nfe", "pedido*", "nota fiscal"},
	},
	entity.CategoryPayroll: {
		{"salári*", "salario*", "folha", "labore", "férias", "ferias", "rescis*", "13º", "décimo", "decimo", "ordenado*"},
	},
	entity.CategorySuppliers: {
		{"fornecedor*", "compra*", "aquisi*", "mercadoria*", "insumo*", "matéria", "materia"},
	},
	entity.CategoryTaxes: {
		{"imposto*", "tributo*", "inss", "fgts", "pis", "cofins", "icms", "iss", "irpj", "csll", "darf", "das", "simples"},
	},
	entity.CategoryRent: {
		{"aluguel", "aluguéis", "alugueis", "locação", "locacao", "locat*", "imóvel", "imovel"},
	},
	entity.CategoryUtilities: {
		{"energia", "luz", "água", "agua", "internet", "telefon*", "gás", "gas", "saneamento"},
	},
}

// categoryPattern maps description terms to a suggested category
type categoryPattern struct {
	terms    keywordGroup
	category string
}

// suggestionPatterns is evaluated in order; the first match wins.
var suggestionPatterns = []categoryPattern{
	{terms: keywordGroup{"vend*", "faturamento", "recebimento*"}, category: entity.CategorySales},
	{terms: categoryKeywords[entity.CategoryPayroll][0], category: entity.CategoryPayroll},
	{terms: categoryKeywords[entity.CategorySuppliers][0], category: entity.CategorySuppliers},
	{terms: categoryKeywords[entity.CategoryTaxes][0], category: entity.CategoryTaxes},
	{terms: categoryKeywords[entity.CategoryRent][0], category: entity.CategoryRent},
	{terms: categoryKeywords[entity.CategoryUtilities][0], category: entity.CategoryUtilities},
}

// text is a lowercased, tokenized description
type text struct {
	words  []string
	padded string
}

func newText(description string) text {
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return text{
		words:  words,
		padded: " " + strings.Join(words, " ") + " ",
	}
}

// mentions reports whether the keyword appears as a word, word prefix or phrase
func (t text) mentions(keyword string) bool {
	switch {
	case strings.Contains(keyword, " "):
		return strings.Contains(t.padded, " "+keyword+" ")
	case strings.HasSuffix(keyword, "*"):
		prefix := strings.TrimSuffix(keyword, "*")
		for _, w := range t.words {
			if strings.HasPrefix(w, prefix) {
				return true
			}
		}
		return false
	default:
		for _, w := range t.words {
			if w == keyword {
				return true
			}
		}
		return false
	}
}

func (t text) matches(group keywordGroup) bool {
	for _, keyword := range group {
		if t.mentions(keyword) {
			return true
		}
	}
	return false
}
