package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// StockQuery lecturas de stock fuera de transacción (reportes, validaciones del caller).
type StockQuery struct {
	stock repository.StockRepository
}

// NewStockQuery construye la consulta sobre el repo atado al pool.
func NewStockQuery(stock repository.StockRepository) *StockQuery {
	return &StockQuery{stock: stock}
}

// Get cantidad de un producto en una sucursal; cero si nunca tuvo stock.
func (q *StockQuery) Get(ctx context.Context, rc domain.RequestContext, productID, branchID string) (*entity.StockLevel, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if productID == "" || branchID == "" {
		return nil, fmt.Errorf("%w: product_id y branch_id requeridos", domain.ErrInvalidInput)
	}
	return q.stock.Get(ctx, rc.TenantID, productID, branchID)
}

// ListByBranch stock de todos los productos de una sucursal.
func (q *StockQuery) ListByBranch(ctx context.Context, rc domain.RequestContext, branchID string) ([]*entity.StockLevel, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id requerido", domain.ErrInvalidInput)
	}
	return q.stock.ListByBranch(ctx, rc.TenantID, branchID)
}
