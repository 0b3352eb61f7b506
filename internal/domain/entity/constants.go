package entity

// EntryKind is the accounting nature of an entry
type EntryKind string

// Entry kinds
const (
	EntryKindRevenue  EntryKind = "revenue"
	EntryKindExpense  EntryKind = "expense"
	EntryKindTransfer EntryKind = "transfer"
)

// Valid reports whether k is a known entry kind
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindRevenue, EntryKindExpense, EntryKindTransfer:
		return true
	}
	return false
}

// Category labels used by the classifier and the audit rules
const (
	CategorySales     = "Vendas"
	CategoryPayroll   = "Folha de Pagamento"
	CategorySuppliers = "Fornecedores"
	CategoryTaxes     = "Impostos e Tributos"
	CategoryRent      = "Aluguel"
	CategoryUtilities = "Utilidades"
	CategoryOther     = "Outros"
)

// VerificationStatus is the outcome of auditing one entry
type VerificationStatus string

// Verification statuses
const (
	StatusApproved VerificationStatus = "approved"
	StatusFlagged  VerificationStatus = "flagged"
	StatusRejected VerificationStatus = "rejected"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)
