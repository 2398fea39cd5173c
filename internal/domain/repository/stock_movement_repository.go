package repository

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// StockMovementRepository bitácora append-only de movimientos: sin Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error)
}
