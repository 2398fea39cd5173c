package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo bitácora de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, product_id, branch_id, direction, quantity,
			reference_type, reference_id, item_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ProductID, m.BranchID, m.Direction, m.Quantity,
		m.ReferenceType, m.ReferenceID, nullIfEmpty(m.ItemID), m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByReference lista los movimientos de un documento en orden de inserción.
func (r *StockMovementRepo) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, tenant_id, product_id, branch_id, direction, quantity,
			reference_type, reference_id, COALESCE(item_id, ''), created_at, created_by
		FROM stock_movements
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, tenantID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.ProductID, &m.BranchID, &m.Direction, &m.Quantity,
			&m.ReferenceType, &m.ReferenceID, &m.ItemID, &m.CreatedAt, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
