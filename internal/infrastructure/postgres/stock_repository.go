package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una sucursal.
func (r *StockRepo) Get(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, branch_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2 AND branch_id = $3`
	return r.scanOne(ctx, query, tenantID, productID, branchID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, branch_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2 AND branch_id = $3
		FOR UPDATE`
	return r.scanOne(ctx, query, tenantID, productID, branchID)
}

func (r *StockRepo) scanOne(ctx context.Context, query, tenantID, productID, branchID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, tenantID, productID, branchID).Scan(
		&s.TenantID, &s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// LockInOrder crea con cantidad cero las filas ausentes y las bloquea una por una en el
// orden recibido. Todas las transacciones usan el mismo orden, por lo que no hay espera circular.
func (r *StockRepo) LockInOrder(ctx context.Context, tenantID string, keys []entity.StockKey) error {
	insert := `
		INSERT INTO stock_levels (tenant_id, product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (tenant_id, product_id, branch_id) DO NOTHING`
	lock := `
		SELECT 1 FROM stock_levels
		WHERE tenant_id = $1 AND product_id = $2 AND branch_id = $3
		FOR UPDATE`
	for _, k := range keys {
		if _, err := r.q.Exec(ctx, insert, tenantID, k.ProductID, k.BranchID); err != nil {
			return fmt.Errorf("ensure stock row %s/%s: %w", k.ProductID, k.BranchID, err)
		}
		var one int
		if err := r.q.QueryRow(ctx, lock, tenantID, k.ProductID, k.BranchID).Scan(&one); err != nil {
			return fmt.Errorf("lock stock row %s/%s: %w", k.ProductID, k.BranchID, err)
		}
	}
	return nil
}

// SetQuantity fija la cantidad de una fila ya bloqueada.
func (r *StockRepo) SetQuantity(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) error {
	query := `
		INSERT INTO stock_levels (tenant_id, product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tenant_id, product_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, tenantID, productID, branchID, qty); err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: cantidad negativa para %s en %s", domain.ErrInsufficientStock, productID, branchID)
		}
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// Increment suma qty a la fila (creándola si no existe) y devuelve la cantidad resultante.
func (r *StockRepo) Increment(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_levels (tenant_id, product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tenant_id, product_id, branch_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var out decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, productID, branchID, qty).Scan(&out); err != nil {
		if isCheckViolation(err) {
			return decimal.Zero, fmt.Errorf("%w: cantidad negativa para %s en %s", domain.ErrInsufficientStock, productID, branchID)
		}
		return decimal.Zero, fmt.Errorf("increment stock: %w", err)
	}
	return out, nil
}

// ListByBranch lista el stock de una sucursal ordenado por producto.
func (r *StockRepo) ListByBranch(ctx context.Context, tenantID, branchID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, branch_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND branch_id = $2
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, tenantID, branchID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.StockLevel, 0)
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.TenantID, &s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
