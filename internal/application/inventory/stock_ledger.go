package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// StockLedger guarda las cantidades por (producto, sucursal). No abre ni confirma
// transacciones: todas sus operaciones corren sobre el repo de la transacción del caller,
// así se componen atómicamente con la contabilización.
type StockLedger struct{}

// NewStockLedger construye el libro de stock.
func NewStockLedger() *StockLedger { return &StockLedger{} }

// ReserveAndDecrement bloquea la fila (SELECT FOR UPDATE), verifica cantidad >= qty y descuenta.
// Devuelve el saldo previo. El registro del movimiento es responsabilidad del caller.
func (l *StockLedger) ReserveAndDecrement(
	ctx context.Context,
	stockRepo repository.StockRepository,
	tenantID, productID, branchID string,
	qty decimal.Decimal,
) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	stock, err := stockRepo.GetForUpdate(ctx, tenantID, productID, branchID)
	if err != nil {
		return decimal.Zero, err
	}
	prior := stock.Quantity
	if prior.LessThan(qty) {
		return prior, fmt.Errorf("%w: producto %s en sucursal %s (disponible %s, solicitado %s)",
			domain.ErrInsufficientStock, productID, branchID, prior, qty)
	}
	if err := stockRepo.SetQuantity(ctx, tenantID, productID, branchID, prior.Sub(qty)); err != nil {
		return prior, err
	}
	return prior, nil
}

// Increment suma qty en destino; crea la fila si no existe.
func (l *StockLedger) Increment(
	ctx context.Context,
	stockRepo repository.StockRepository,
	tenantID, productID, branchID string,
	qty decimal.Decimal,
) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	return stockRepo.Increment(ctx, tenantID, productID, branchID, qty)
}

// LockInOrder bloquea todas las filas indicadas en el orden recibido (debe ser canónico).
func (l *StockLedger) LockInOrder(ctx context.Context, stockRepo repository.StockRepository, tenantID string, keys []entity.StockKey) error {
	if len(keys) == 0 {
		return nil
	}
	return stockRepo.LockInOrder(ctx, tenantID, keys)
}
