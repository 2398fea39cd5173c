package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// SlipUseCase arma la guía de traslado que acompaña la mercancía.
type SlipUseCase struct {
	transfers repository.TransferRepository
	branches  repository.BranchRepository
	generator TransferSlipGenerator
}

// NewSlipUseCase construye el caso de uso.
func NewSlipUseCase(transfers repository.TransferRepository, branches repository.BranchRepository, generator TransferSlipGenerator) *SlipUseCase {
	return &SlipUseCase{transfers: transfers, branches: branches, generator: generator}
}

// DownloadTransferSlip solo para traslados aprobados o posteriores (no draft, pending ni cancelled).
//
// Retorna:
//   - domain.ErrNotFound                si el traslado no existe en el tenant.
//   - domain.ErrInvalidStateTransition  si aún no está aprobado o fue cancelado.
func (uc *SlipUseCase) DownloadTransferSlip(ctx context.Context, rc domain.RequestContext, transferID string) (pdfBytes []byte, filename string, err error) {
	t, err := uc.transfers.GetByID(ctx, rc.TenantID, transferID)
	if err != nil {
		return nil, "", fmt.Errorf("guía: obtener traslado: %w", err)
	}
	if t == nil {
		return nil, "", domain.ErrNotFound
	}
	switch t.Status {
	case entity.TransferStatusApproved, entity.TransferStatusInTransit, entity.TransferStatusReceived:
	default:
		return nil, "", fmt.Errorf("%w: el traslado está en estado %s", domain.ErrInvalidStateTransition, t.Status)
	}

	from, err := uc.branch(ctx, t.FromBranchID)
	if err != nil {
		return nil, "", err
	}
	to, err := uc.branch(ctx, t.ToBranchID)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateTransferSlip(ctx, t, from, to)
	if err != nil {
		return nil, "", fmt.Errorf("guía: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("traslado_%s.pdf", t.Number), nil
}

func (uc *SlipUseCase) branch(ctx context.Context, id string) (*entity.Branch, error) {
	b, err := uc.branches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("guía: obtener sucursal: %w", err)
	}
	if b == nil {
		// sucursal dada de baja: se imprime solo el identificador
		return &entity.Branch{ID: id, Code: id, Name: id}, nil
	}
	return b, nil
}
