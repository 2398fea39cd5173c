package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// StockRepository puerto de stock por (producto, sucursal).
// Las operaciones de escritura se usan dentro de la transacción del caller.
type StockRepository interface {
	// Get devuelve la fila o cantidad cero si no existe.
	Get(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); cantidad cero si no existe.
	GetForUpdate(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error)
	// LockInOrder crea las filas ausentes con cantidad cero y bloquea todas en el orden recibido.
	LockInOrder(ctx context.Context, tenantID string, keys []entity.StockKey) error
	// SetQuantity fija la cantidad de una fila ya bloqueada.
	SetQuantity(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) error
	// Increment suma qty (upsert) y devuelve la cantidad resultante.
	Increment(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) (decimal.Decimal, error)
	ListByBranch(ctx context.Context, tenantID, branchID string) ([]*entity.StockLevel, error)
}
