package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// ReferenceTypeAdjustment referencia de los movimientos de ajuste manual.
const ReferenceTypeAdjustment = "adjustment"

// AdjustmentUseCase registra entradas y salidas manuales de stock en una sucursal
// (conteo físico, recepción de compras, mermas) con bloqueo de fila y Commit/Rollback.
type AdjustmentUseCase struct {
	txRunner repository.TxRunner
	branches repository.BranchRepository
	ledger   *StockLedger
	now      func() time.Time
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner repository.TxRunner, branches repository.BranchRepository, ledger *StockLedger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, branches: branches, ledger: ledger, now: time.Now}
}

// AdjustmentInput cantidad con signo: positiva suma (in), negativa resta (out).
type AdjustmentInput struct {
	ProductID string
	BranchID  string
	Quantity  decimal.Decimal
	Reason    string
}

// AdjustmentResult movimiento registrado y saldo resultante.
type AdjustmentResult struct {
	Movement *entity.StockMovement
	Quantity decimal.Decimal
}

// RegisterAdjustment una salida nunca deja la existencia negativa (ErrInsufficientStock).
func (uc *AdjustmentUseCase) RegisterAdjustment(ctx context.Context, rc domain.RequestContext, in AdjustmentInput) (*AdjustmentResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if in.ProductID == "" || in.BranchID == "" {
		return nil, fmt.Errorf("%w: product_id y branch_id requeridos", domain.ErrInvalidInput)
	}
	if in.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: la cantidad del ajuste no puede ser cero", domain.ErrInvalidInput)
	}
	if !entity.FitsScale(in.Quantity, entity.QuantityPlaces) {
		return nil, fmt.Errorf("%w: la cantidad admite a lo sumo %d decimales", domain.ErrInvalidInput, entity.QuantityPlaces)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: el ajuste requiere motivo", domain.ErrInvalidInput)
	}
	b, err := uc.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if b.TenantID != rc.TenantID {
		return nil, domain.ErrForbidden
	}

	res := &AdjustmentResult{}
	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		key := []entity.StockKey{{ProductID: in.ProductID, BranchID: in.BranchID}}
		if err := uc.ledger.LockInOrder(ctx, tx.Stock, rc.TenantID, key); err != nil {
			return err
		}
		direction := entity.MovementDirectionIn
		qty := in.Quantity
		if qty.IsNegative() {
			direction = entity.MovementDirectionOut
			qty = qty.Neg()
			prior, err := uc.ledger.ReserveAndDecrement(ctx, tx.Stock, rc.TenantID, in.ProductID, in.BranchID, qty)
			if err != nil {
				return err
			}
			res.Quantity = prior.Sub(qty)
		} else {
			next, err := uc.ledger.Increment(ctx, tx.Stock, rc.TenantID, in.ProductID, in.BranchID, qty)
			if err != nil {
				return err
			}
			res.Quantity = next
		}
		id := uuid.New().String()
		res.Movement = &entity.StockMovement{
			ID:            id,
			TenantID:      rc.TenantID,
			ProductID:     in.ProductID,
			BranchID:      in.BranchID,
			Direction:     direction,
			Quantity:      qty,
			ReferenceType: ReferenceTypeAdjustment,
			ReferenceID:   id,
			CreatedAt:     uc.now(),
			CreatedBy:     rc.ActorID,
		}
		return tx.Movements.Create(ctx, res.Movement)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
