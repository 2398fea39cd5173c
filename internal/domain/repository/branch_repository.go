package repository

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// BranchRepository lectura de sucursales (el alta pertenece al módulo de administración).
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Branch, error)
}
