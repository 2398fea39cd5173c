package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryType clase de asiento.
type JournalEntryType string

const (
	JournalEntryTypeTransfer          JournalEntryType = "transfer"
	JournalEntryTypePayrollAllocation JournalEntryType = "payroll_allocation"
	JournalEntryTypeAdjustment        JournalEntryType = "adjustment"
)

// JournalEntryStatus estado del asiento.
type JournalEntryStatus string

const (
	JournalEntryStatusDraft    JournalEntryStatus = "draft"
	JournalEntryStatusPosted   JournalEntryStatus = "posted"
	JournalEntryStatusReversed JournalEntryStatus = "reversed"
)

// JournalEntry asiento de partida doble en los libros de una sucursal.
// Si está contabilizado, TotalDebit == TotalCredit.
type JournalEntry struct {
	ID            string
	TenantID      string
	BranchID      string
	EntryDate     time.Time
	EntryType     JournalEntryType
	ReferenceType string
	ReferenceID   string
	Description   string
	Status        JournalEntryStatus
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	ReversalOf    string
	CreatedBy     string
	CreatedAt     time.Time
	Lines         []JournalLine
}

// JournalLine renglón del asiento: exactamente uno de Debit/Credit es distinto de cero.
type JournalLine struct {
	ID          string
	EntryID     string
	LineNo      int
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}
