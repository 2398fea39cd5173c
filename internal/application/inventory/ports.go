package inventory

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// TransferSlipGenerator genera la representación imprimible (PDF) de un traslado.
type TransferSlipGenerator interface {
	GenerateTransferSlip(ctx context.Context, t *entity.Transfer, from, to *entity.Branch) ([]byte, error)
}
