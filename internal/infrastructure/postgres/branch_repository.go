package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de persistencia para sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// Save inserta o actualiza una sucursal (semillas y pruebas de integración).
// El tenant de una sucursal existente no cambia.
func (r *BranchRepo) Save(ctx context.Context, b *entity.Branch) error {
	query := `
		INSERT INTO branches (id, tenant_id, code, name, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name,
			address = EXCLUDED.address, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at
		WHERE branches.tenant_id = EXCLUDED.tenant_id`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.TenantID, b.Code, b.Name, b.Address, b.Active, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save branch: %w", err)
	}
	return nil
}

// GetByID obtiene una sucursal por ID.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	query := `
		SELECT id, tenant_id, code, name, address, active, created_at, updated_at
		FROM branches WHERE id = $1`
	var b entity.Branch
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.TenantID, &b.Code, &b.Name, &b.Address, &b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// ListByTenant lista sucursales del tenant con paginación.
func (r *BranchRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Branch, error) {
	query := `
		SELECT id, tenant_id, code, name, address, active, created_at, updated_at
		FROM branches WHERE tenant_id = $1 ORDER BY code LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.Branch, 0)
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Code, &b.Name, &b.Address, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
