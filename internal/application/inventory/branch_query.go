package inventory

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// BranchQuery lecturas de sucursales del tenant.
type BranchQuery struct {
	branches repository.BranchRepository
}

// NewBranchQuery construye la consulta.
func NewBranchQuery(branches repository.BranchRepository) *BranchQuery {
	return &BranchQuery{branches: branches}
}

// List sucursales del tenant con paginación (limit por defecto 20, máximo 100).
func (q *BranchQuery) List(ctx context.Context, rc domain.RequestContext, limit, offset int) ([]*entity.Branch, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return q.branches.ListByTenant(ctx, rc.TenantID, limit, offset)
}

// Get sucursal por ID. Una sucursal de otro tenant responde ErrNotFound.
func (q *BranchQuery) Get(ctx context.Context, rc domain.RequestContext, id string) (*entity.Branch, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	b, err := q.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.TenantID != rc.TenantID {
		return nil, domain.ErrNotFound
	}
	return b, nil
}
