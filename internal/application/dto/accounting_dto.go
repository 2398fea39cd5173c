package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLineRequest renglón de un asiento de ajuste: exactamente uno de debit/credit > 0.
type JournalLineRequest struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// PostJournalEntryRequest body para POST /api/journal-entries (solo ajustes).
type PostJournalEntryRequest struct {
	BranchID    string               `json:"branch_id"`
	ReferenceID string               `json:"reference_id"`
	Description string               `json:"description,omitempty"`
	EntryDate   *time.Time           `json:"entry_date,omitempty"`
	Lines       []JournalLineRequest `json:"lines"`
}

// JournalLineResponse renglón contabilizado.
type JournalLineResponse struct {
	LineNo      int             `json:"line_no"`
	AccountCode string          `json:"account_code"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse asiento con sus renglones.
type JournalEntryResponse struct {
	ID            string                `json:"id"`
	BranchID      string                `json:"branch_id"`
	EntryDate     time.Time             `json:"entry_date"`
	EntryType     string                `json:"entry_type"`
	ReferenceType string                `json:"reference_type"`
	ReferenceID   string                `json:"reference_id"`
	Description   string                `json:"description,omitempty"`
	Status        string                `json:"status"`
	TotalDebit    decimal.Decimal       `json:"total_debit"`
	TotalCredit   decimal.Decimal       `json:"total_credit"`
	ReversalOf    string                `json:"reversal_of,omitempty"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	Lines         []JournalLineResponse `json:"lines"`
}

// BalanceResponse saldo entre sucursales de una referencia.
type BalanceResponse struct {
	ID            string          `json:"id"`
	FromBranchID  string          `json:"from_branch_id"`
	ToBranchID    string          `json:"to_branch_id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SettledAt     *time.Time      `json:"settled_at,omitempty"`
}

// BalanceSummaryResponse respuesta de GET /api/interbranch-balances.
// net > 0: to_branch le debe a from_branch.
type BalanceSummaryResponse struct {
	FromBranchID   string            `json:"from_branch_id"`
	ToBranchID     string            `json:"to_branch_id"`
	PendingOwed    decimal.Decimal   `json:"pending_owed"`
	PendingOwing   decimal.Decimal   `json:"pending_owing"`
	SettledOwed    decimal.Decimal   `json:"settled_owed"`
	SettledOwing   decimal.Decimal   `json:"settled_owing"`
	Net            decimal.Decimal   `json:"net"`
	PendingEntries int               `json:"pending_entries"`
	Balances       []BalanceResponse `json:"balances"`
}

// SettleBalancesRequest body para POST /api/interbranch-balances/settle.
type SettleBalancesRequest struct {
	FromBranchID string          `json:"from_branch_id"`
	ToBranchID   string          `json:"to_branch_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// SettleBalancesResponse saldos liquidados por el pago.
type SettleBalancesResponse struct {
	Settled       []BalanceResponse `json:"settled"`
	SettledAmount decimal.Decimal   `json:"settled_amount"`
	Remainder     decimal.Decimal   `json:"remainder"`
}

// PayrollAllocationRequest body para POST /api/payroll-allocations.
type PayrollAllocationRequest struct {
	EmployeeID      string          `json:"employee_id"`
	HomeBranchID    string          `json:"home_branch_id"`
	VisitedBranchID string          `json:"visited_branch_id"`
	Period          string          `json:"period"` // YYYY-MM
	Amount          decimal.Decimal `json:"amount"`
	SplitPercentage decimal.Decimal `json:"split_percentage"`
	Notes           string          `json:"notes,omitempty"`
	AutoApprove     bool            `json:"auto_approve,omitempty"`
}

// PayrollAllocationResponse asignación de nómina.
type PayrollAllocationResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	HomeBranchID    string          `json:"home_branch_id"`
	VisitedBranchID string          `json:"visited_branch_id"`
	Period          string          `json:"period"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SplitPercentage decimal.Decimal `json:"split_percentage"`
	CompanyPortion  decimal.Decimal `json:"company_portion"`
	BranchPortion   decimal.Decimal `json:"branch_portion"`
	Status          string          `json:"status"`
	JournalEntryID  string          `json:"journal_entry_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
}

// PayrollSettlementResponse asignación y, si ya se procesó, su asiento y saldo.
type PayrollSettlementResponse struct {
	Allocation PayrollAllocationResponse `json:"allocation"`
	Entry      *JournalEntryResponse     `json:"entry,omitempty"`
	Balance    *BalanceResponse          `json:"balance,omitempty"`
}
