package repository

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// JournalRepository asientos y renglones (escritura única por asiento).
type JournalRepository interface {
	// Create persiste el asiento con sus renglones. ErrDuplicateReference si ya existe un
	// asiento contabilizado para (sucursal, tipo, referencia).
	Create(ctx context.Context, e *entity.JournalEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status entity.JournalEntryStatus) error
	ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.JournalEntry, error)
}
