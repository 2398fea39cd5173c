package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// BalanceTracker acumula lo que una sucursal le debe a otra.
type BalanceTracker struct {
	txRunner repository.TxRunner
	balances repository.InterBranchBalanceRepository
	now      func() time.Time
}

// NewBalanceTracker construye el tracker. balances es el repo de lectura fuera de tx.
func NewBalanceTracker(txRunner repository.TxRunner, balances repository.InterBranchBalanceRepository) *BalanceTracker {
	return &BalanceTracker{txRunner: txRunner, balances: balances, now: time.Now}
}

// AccrueInput delta a sumar al saldo de (from, to, referencia).
type AccrueInput struct {
	FromBranchID  string
	ToBranchID    string
	ReferenceType string
	ReferenceID   string
	Amount        decimal.Decimal // siempre delta, nunca total
}

// AccrueInTx upsert aditivo dentro de la transacción del caller.
func (b *BalanceTracker) AccrueInTx(ctx context.Context, tx repository.Tx, rc domain.RequestContext, in AccrueInput) (*entity.InterBranchBalance, error) {
	if in.FromBranchID == "" || in.ToBranchID == "" || in.FromBranchID == in.ToBranchID {
		return nil, fmt.Errorf("%w: par de sucursales inválido", domain.ErrInvalidInput)
	}
	if in.ReferenceID == "" {
		return nil, fmt.Errorf("%w: referencia requerida", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto a acumular debe ser mayor a cero", domain.ErrInvalidInput)
	}
	now := b.now()
	return tx.Balances.Accrue(ctx, &entity.InterBranchBalance{
		ID:            uuid.New().String(),
		TenantID:      rc.TenantID,
		FromBranchID:  in.FromBranchID,
		ToBranchID:    in.ToBranchID,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Amount:        in.Amount,
		Status:        entity.BalanceStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// SettleResult resultado de aplicar un pago entre sucursales.
type SettleResult struct {
	Settled       []*entity.InterBranchBalance
	SettledAmount decimal.Decimal
	Remainder     decimal.Decimal // monto del pago que no alcanzó a cubrir un saldo completo
}

// Settle marca saldos pendientes de from → to como liquidados, del más antiguo al más nuevo,
// mientras el acumulado quepa en amount. Se detiene en el primer saldo que no cabe completo.
func (b *BalanceTracker) Settle(ctx context.Context, rc domain.RequestContext, fromBranchID, toBranchID string, amount decimal.Decimal) (*SettleResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if fromBranchID == "" || toBranchID == "" || fromBranchID == toBranchID {
		return nil, fmt.Errorf("%w: par de sucursales inválido", domain.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto del pago debe ser mayor a cero", domain.ErrInvalidInput)
	}

	res := &SettleResult{SettledAmount: decimal.Zero, Remainder: amount}
	err := b.txRunner.Run(ctx, func(tx repository.Tx) error {
		pending, err := tx.Balances.ListPendingForUpdate(ctx, rc.TenantID, fromBranchID, toBranchID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(pending))
		covered := decimal.Zero
		for _, row := range pending {
			next := covered.Add(row.Amount)
			if next.GreaterThan(amount) {
				break
			}
			covered = next
			ids = append(ids, row.ID)
			res.Settled = append(res.Settled, row)
		}
		if len(ids) == 0 {
			return nil
		}
		now := b.now()
		if err := tx.Balances.MarkSettled(ctx, rc.TenantID, ids, now); err != nil {
			return err
		}
		for _, row := range res.Settled {
			row.Status = entity.BalanceStatusSettled
			row.SettledAt = &now
			row.UpdatedAt = now
		}
		res.SettledAmount = covered
		res.Remainder = amount.Sub(covered)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Summary totales del par en ambos sentidos. Net > 0: to le debe a from.
func (b *BalanceTracker) Summary(ctx context.Context, rc domain.RequestContext, fromBranchID, toBranchID string) (*entity.BalanceSummary, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if fromBranchID == "" || toBranchID == "" || fromBranchID == toBranchID {
		return nil, fmt.Errorf("%w: par de sucursales inválido", domain.ErrInvalidInput)
	}
	owedPending, owedSettled, owedCount, err := b.balances.Totals(ctx, rc.TenantID, fromBranchID, toBranchID)
	if err != nil {
		return nil, err
	}
	owingPending, owingSettled, owingCount, err := b.balances.Totals(ctx, rc.TenantID, toBranchID, fromBranchID)
	if err != nil {
		return nil, err
	}
	return &entity.BalanceSummary{
		FromBranchID:   fromBranchID,
		ToBranchID:     toBranchID,
		PendingOwed:    owedPending,
		PendingOwing:   owingPending,
		SettledOwed:    owedSettled,
		SettledOwing:   owingSettled,
		Net:            owedPending.Sub(owingPending),
		PendingEntries: owedCount + owingCount,
	}, nil
}

// ListByPair saldos individuales from → to.
func (b *BalanceTracker) ListByPair(ctx context.Context, rc domain.RequestContext, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return b.balances.ListByPair(ctx, rc.TenantID, fromBranchID, toBranchID)
}
