package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// InterBranchBalanceRepository saldos entre sucursales. Nunca se sobrescribe un monto.
type InterBranchBalanceRepository interface {
	// Accrue suma delta al saldo de (from, to, referenceID) en una sola sentencia (upsert aditivo).
	Accrue(ctx context.Context, b *entity.InterBranchBalance) (*entity.InterBranchBalance, error)
	// ListPendingForUpdate bloquea los saldos pendientes del par, del más antiguo al más nuevo.
	ListPendingForUpdate(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error)
	MarkSettled(ctx context.Context, tenantID string, ids []string, at time.Time) error
	ListByPair(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error)
	GetByReference(ctx context.Context, tenantID, fromBranchID, toBranchID, referenceID string) (*entity.InterBranchBalance, error)
	// Totals devuelve (pendiente, liquidado) de from → to.
	Totals(ctx context.Context, tenantID, fromBranchID, toBranchID string) (pending, settled decimal.Decimal, pendingCount int, err error)
}
