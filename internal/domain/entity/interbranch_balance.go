package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del saldo entre sucursales.
const (
	BalanceStatusPending = "pending"
	BalanceStatusSettled = "settled"
)

// InterBranchBalance saldo acumulado que ToBranch le debe a FromBranch por una referencia.
// Clave natural: (tenant, from, to, referenceId). Solo se modifica sumando deltas.
type InterBranchBalance struct {
	ID            string
	TenantID      string
	FromBranchID  string
	ToBranchID    string
	ReferenceType string
	ReferenceID   string
	Amount        decimal.Decimal
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SettledAt     *time.Time
}

// BalanceSummary agregado por par de sucursales.
// Net > 0 significa que To le debe a From.
type BalanceSummary struct {
	FromBranchID   string
	ToBranchID     string
	PendingOwed    decimal.Decimal // To → From, pendiente
	PendingOwing   decimal.Decimal // From → To, pendiente
	SettledOwed    decimal.Decimal
	SettledOwing   decimal.Decimal
	Net            decimal.Decimal
	PendingEntries int
}
