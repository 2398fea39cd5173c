package repository

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// PayrollAllocationRepository asignaciones de nómina entre sucursales.
type PayrollAllocationRepository interface {
	// Create persiste la asignación. ErrDuplicateReference si ya existe para (empleado, sucursal visitada, periodo).
	Create(ctx context.Context, a *entity.PayrollAllocation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error)
	Update(ctx context.Context, a *entity.PayrollAllocation) error
}
