// Package settlement es la frontera transaccional del motor: cada operación pública corre en
// exactamente una transacción y aplica todos sus efectos o ninguno.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/domain"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// TransferLinesFunc construye los renglones de origen y destino para un traslado valorizado.
type TransferLinesFunc func(acc acct.Accounts, total decimal.Decimal) (source, destination []entity.JournalLine)

// Orchestrator secuencia Stock Ledger, Journal Poster y Balance Tracker en una sola tx.
type Orchestrator struct {
	txRunner      repository.TxRunner
	transfers     *inventory.TransferManager
	poster        *accounting.JournalPoster
	balances      *accounting.BalanceTracker
	payroll       *accounting.PayrollAllocator
	accounts      acct.Accounts
	transferLines TransferLinesFunc
	log           *logger.Logger
	now           func() time.Time
}

// Option configura el orquestador.
type Option func(*Orchestrator)

// WithAccounts plan de cuentas de los asientos automáticos.
func WithAccounts(a acct.Accounts) Option {
	return func(o *Orchestrator) { o.accounts = a }
}

// WithTransferLines reemplaza el constructor de renglones de traslado.
func WithTransferLines(fn TransferLinesFunc) Option {
	return func(o *Orchestrator) { o.transferLines = fn }
}

// WithLogger logger de liquidaciones.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithClock reloj para fechas de asiento.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	txRunner repository.TxRunner,
	transfers *inventory.TransferManager,
	poster *accounting.JournalPoster,
	balances *accounting.BalanceTracker,
	payroll *accounting.PayrollAllocator,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		txRunner:      txRunner,
		transfers:     transfers,
		poster:        poster,
		balances:      balances,
		payroll:       payroll,
		accounts:      acct.DefaultAccounts(),
		transferLines: acct.TransferLines,
		log:           logger.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TransferSettlement resultado de liquidar un traslado.
type TransferSettlement struct {
	Transfer         *entity.Transfer
	Movements        []*entity.StockMovement
	SourceEntry      *entity.JournalEntry // nil si el traslado no tiene valor
	DestinationEntry *entity.JournalEntry
	Balance          *entity.InterBranchBalance
	Total            decimal.Decimal
}

// ExecuteTransferSettlement aplica stock, contabiliza en origen y destino y acumula el saldo
// entre sucursales. El traslado debe estar approved; ante cualquier error nada persiste y el
// traslado sigue approved.
func (o *Orchestrator) ExecuteTransferSettlement(ctx context.Context, rc domain.RequestContext, transferID string) (*TransferSettlement, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	var res *TransferSettlement
	err := o.txRunner.Run(ctx, func(tx repository.Tx) error {
		t, err := tx.Transfers.GetForUpdate(ctx, rc.TenantID, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusApproved {
			return fmt.Errorf("%w: el traslado %s está en %s", domain.ErrInvalidStateTransition, t.Number, t.Status)
		}

		movements, err := o.transfers.ApplyStockEffects(ctx, tx, rc, t)
		if err != nil {
			return err
		}
		res = &TransferSettlement{Transfer: t, Movements: movements, Total: t.TotalAmount()}
		if !res.Total.IsPositive() {
			return nil
		}

		sourceLines, destLines := o.transferLines(o.accounts, res.Total)
		entryDate := o.now()
		res.SourceEntry, err = o.poster.PostInTx(ctx, tx, rc, accounting.PostInput{
			BranchID:      t.FromBranchID,
			EntryType:     entity.JournalEntryTypeTransfer,
			ReferenceType: inventory.ReferenceTypeTransfer,
			ReferenceID:   t.ID,
			Description:   "Traslado " + t.Number + " (salida)",
			EntryDate:     entryDate,
			Lines:         sourceLines,
		})
		if err != nil {
			return err
		}
		res.DestinationEntry, err = o.poster.PostInTx(ctx, tx, rc, accounting.PostInput{
			BranchID:      t.ToBranchID,
			EntryType:     entity.JournalEntryTypeTransfer,
			ReferenceType: inventory.ReferenceTypeTransfer,
			ReferenceID:   t.ID,
			Description:   "Traslado " + t.Number + " (entrada)",
			EntryDate:     entryDate,
			Lines:         destLines,
		})
		if err != nil {
			return err
		}
		res.Balance, err = o.balances.AccrueInTx(ctx, tx, rc, accounting.AccrueInput{
			FromBranchID:  t.FromBranchID,
			ToBranchID:    t.ToBranchID,
			ReferenceType: inventory.ReferenceTypeTransfer,
			ReferenceID:   t.ID,
			Amount:        res.Total,
		})
		return err
	})
	if err != nil {
		o.log.Warn().Err(err).
			Str("tenant_id", rc.TenantID).
			Str("transfer_id", transferID).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("liquidación de traslado abortada")
		return nil, err
	}
	o.log.Info().
		Str("tenant_id", rc.TenantID).
		Str("transfer_id", res.Transfer.ID).
		Str("number", res.Transfer.Number).
		Str("from_branch_id", res.Transfer.FromBranchID).
		Str("to_branch_id", res.Transfer.ToBranchID).
		Str("total", res.Total.StringFixed(acct.CurrencyPlaces)).
		Int("movements", len(res.Movements)).
		Msg("traslado liquidado")
	return res, nil
}

// PayrollSettlement resultado de una asignación de nómina.
type PayrollSettlement struct {
	Allocation *entity.PayrollAllocation
	Entry      *entity.JournalEntry // nil mientras la asignación esté pending
	Balance    *entity.InterBranchBalance
}

// ExecutePayrollAllocation valida y reparte el monto. Con AutoApprove contabiliza en la sucursal
// base y acumula la porción de la sucursal visitada en la misma tx; si no, queda pending sin
// efecto contable.
func (o *Orchestrator) ExecutePayrollAllocation(ctx context.Context, rc domain.RequestContext, req accounting.AllocationRequest) (*PayrollSettlement, error) {
	a, err := o.payroll.Prepare(ctx, rc, req)
	if err != nil {
		return nil, err
	}
	res := &PayrollSettlement{Allocation: a}
	err = o.txRunner.Run(ctx, func(tx repository.Tx) error {
		if req.AutoApprove {
			if err := o.payroll.Approve(rc, a); err != nil {
				return err
			}
		}
		if err := tx.Payroll.Create(ctx, a); err != nil {
			return err
		}
		if !req.AutoApprove {
			return nil
		}
		res.Entry, res.Balance, err = o.payroll.PostInTx(ctx, tx, rc, a)
		if err != nil {
			return err
		}
		return tx.Payroll.Update(ctx, a)
	})
	if err != nil {
		o.log.Warn().Err(err).
			Str("tenant_id", rc.TenantID).
			Str("employee_id", req.EmployeeID).
			Str("period", req.Period).
			Msg("asignación de nómina abortada")
		return nil, err
	}
	o.logPayroll(rc, a)
	return res, nil
}

// ApprovePayrollAllocation pending → approved → processed en una sola tx, por el mismo camino
// de contabilización que AutoApprove.
func (o *Orchestrator) ApprovePayrollAllocation(ctx context.Context, rc domain.RequestContext, allocationID string) (*PayrollSettlement, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	var res *PayrollSettlement
	err := o.txRunner.Run(ctx, func(tx repository.Tx) error {
		a, err := tx.Payroll.GetForUpdate(ctx, rc.TenantID, allocationID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if err := o.payroll.Approve(rc, a); err != nil {
			return err
		}
		entry, balance, err := o.payroll.PostInTx(ctx, tx, rc, a)
		if err != nil {
			return err
		}
		if err := tx.Payroll.Update(ctx, a); err != nil {
			return err
		}
		res = &PayrollSettlement{Allocation: a, Entry: entry, Balance: balance}
		return nil
	})
	if err != nil {
		o.log.Warn().Err(err).
			Str("tenant_id", rc.TenantID).
			Str("allocation_id", allocationID).
			Msg("aprobación de nómina abortada")
		return nil, err
	}
	o.logPayroll(rc, res.Allocation)
	return res, nil
}

// RejectPayrollAllocation pending → rejected.
func (o *Orchestrator) RejectPayrollAllocation(ctx context.Context, rc domain.RequestContext, allocationID string) (*entity.PayrollAllocation, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	var out *entity.PayrollAllocation
	err := o.txRunner.Run(ctx, func(tx repository.Tx) error {
		a, err := tx.Payroll.GetForUpdate(ctx, rc.TenantID, allocationID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if err := o.payroll.Reject(rc, a); err != nil {
			return err
		}
		if err := tx.Payroll.Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) logPayroll(rc domain.RequestContext, a *entity.PayrollAllocation) {
	o.log.Info().
		Str("tenant_id", rc.TenantID).
		Str("allocation_id", a.ID).
		Str("status", string(a.Status)).
		Str("home_branch_id", a.HomeBranchID).
		Str("visited_branch_id", a.VisitedBranchID).
		Str("company_portion", a.CompanyPortion.StringFixed(acct.CurrencyPlaces)).
		Str("branch_portion", a.BranchPortion.StringFixed(acct.CurrencyPlaces)).
		Msg("asignación de nómina registrada")
}
