package repository

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// TransferFilter campos de filtro admitidos por el listado de traslados.
// Solo estos campos llegan al SQL, siempre como parámetros posicionales.
type TransferFilter struct {
	Status        entity.TransferStatus
	Type          entity.TransferType
	FromBranchID  string
	ToBranchID    string
	ReferenceType string
	ReferenceID   string
}

// TransferRepository puerto de persistencia de traslados e ítems.
type TransferRepository interface {
	// Create persiste cabecera e ítems. ErrDuplicateReference si la referencia ya tiene traslado activo.
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	// GetForUpdate bloquea la cabecera del traslado.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	// UpdateStatus guarda estado y marcas de tiempo del ciclo de vida.
	UpdateStatus(ctx context.Context, t *entity.Transfer) error
	List(ctx context.Context, tenantID string, f TransferFilter, limit, offset int) ([]*entity.Transfer, error)
}

// SequenceRepository numeradores por tenant.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor de (tenant, scope, año) de forma atómica.
	Next(ctx context.Context, tenantID, scope string, year int) (int64, error)
}
