// Package production reparte la salida de una corrida de producción entre sucursales.
package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// ReferenceTypeProduction referencia de los traslados originados en producción.
const ReferenceTypeProduction = "production"

// RetryPolicy reintentos por destino ante ErrLockTimeout.
type RetryPolicy struct {
	MaxRetries int           // reintentos adicionales al primer intento
	Base       time.Duration // primera espera; se duplica en cada reintento
}

// DefaultPolicy política a partir de la configuración.
func DefaultPolicy(maxRetries, baseMS int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, Base: time.Duration(baseMS) * time.Millisecond}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Base
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.5
	eb.MaxElapsedTime = 0
	eb.Reset()
	retries := max(p.MaxRetries, 0)
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// DistributeUseCase crea y liquida un traslado de producción por destino.
type DistributeUseCase struct {
	transfers    *inventory.TransferManager
	orchestrator *settlement.Orchestrator
	retry        RetryPolicy
	log          *logger.Logger
}

// NewDistributeUseCase construye el caso de uso. retry aplica solo a ErrLockTimeout.
func NewDistributeUseCase(transfers *inventory.TransferManager, orchestrator *settlement.Orchestrator, retry RetryPolicy, log *logger.Logger) *DistributeUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &DistributeUseCase{transfers: transfers, orchestrator: orchestrator, retry: retry, log: log}
}

// Destination cantidades que recibe una sucursal.
type Destination struct {
	BranchID string
	Items    []inventory.TransferItemInput
}

// DistributeInput salida de una corrida.
type DistributeInput struct {
	ProductionRunID string
	SourceBranchID  string
	Priority        string
	Notes           string
	Destinations    []Destination
}

// DestinationResult resultado por destino. Err nil significa liquidado.
// PendingTransferID queda informado cuando el traslado se creó pero no se pudo liquidar:
// sigue approved y el caller puede liquidarlo, cancelarlo o repetir la corrida.
// Resumed indica que el destino ya tenía un traslado de una ejecución anterior de la corrida.
type DestinationResult struct {
	BranchID          string
	Transfer          *entity.Transfer
	Settlement        *settlement.TransferSettlement
	Attempts          int
	Resumed           bool
	PendingTransferID string
	Err               error
}

// Distribute cada destino es su propia liquidación: un destino fallido no deshace los ya
// liquidados. Solo ErrLockTimeout se reintenta, con backoff exponencial y jitter.
// Repetir una corrida retoma los traslados approved que quedaron sin liquidar y da por
// liquidados los que ya salieron.
func (uc *DistributeUseCase) Distribute(ctx context.Context, rc domain.RequestContext, in DistributeInput) ([]DestinationResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if in.ProductionRunID == "" || in.SourceBranchID == "" {
		return nil, fmt.Errorf("%w: corrida y sucursal origen requeridas", domain.ErrInvalidInput)
	}
	if len(in.Destinations) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un destino", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.Destinations))
	for _, d := range in.Destinations {
		if _, dup := seen[d.BranchID]; dup {
			return nil, fmt.Errorf("%w: destino %s repetido", domain.ErrInvalidInput, d.BranchID)
		}
		seen[d.BranchID] = struct{}{}
	}

	results := make([]DestinationResult, 0, len(in.Destinations))
	for _, d := range in.Destinations {
		res := DestinationResult{BranchID: d.BranchID}
		res.Transfer, res.Err = uc.transfers.CreateTransfer(ctx, rc, inventory.CreateTransferInput{
			FromBranchID:  in.SourceBranchID,
			ToBranchID:    d.BranchID,
			Type:          entity.TransferTypeProduction,
			Priority:      in.Priority,
			ReferenceType: ReferenceTypeProduction,
			ReferenceID:   in.ProductionRunID,
			Notes:         in.Notes,
			AutoApprove:   true,
			Items:         d.Items,
		})
		if errors.Is(res.Err, domain.ErrDuplicateReference) {
			uc.resume(ctx, rc, in, &res)
		}
		if res.Err == nil && res.Transfer.Status == entity.TransferStatusApproved {
			uc.settle(ctx, rc, &res)
		}
		if res.Err != nil {
			if res.Transfer != nil && res.Transfer.Status == entity.TransferStatusApproved {
				res.PendingTransferID = res.Transfer.ID
			}
			uc.log.Warn().Err(res.Err).
				Str("production_run_id", in.ProductionRunID).
				Str("to_branch_id", d.BranchID).
				Str("pending_transfer_id", res.PendingTransferID).
				Int("attempts", res.Attempts).
				Msg("destino de producción no liquidado")
		}
		results = append(results, res)
		if ctx.Err() != nil {
			break
		}
	}
	return results, nil
}

// resume busca el traslado activo que una ejecución anterior de la corrida dejó para el destino.
// Si no aparece se conserva ErrDuplicateReference.
func (uc *DistributeUseCase) resume(ctx context.Context, rc domain.RequestContext, in DistributeInput, res *DestinationResult) {
	list, err := uc.transfers.ListTransfers(ctx, rc, repository.TransferFilter{
		Type:          entity.TransferTypeProduction,
		FromBranchID:  in.SourceBranchID,
		ToBranchID:    res.BranchID,
		ReferenceType: ReferenceTypeProduction,
		ReferenceID:   in.ProductionRunID,
	}, 100, 0)
	if err != nil {
		res.Err = err
		return
	}
	for _, t := range list {
		switch t.Status {
		case entity.TransferStatusApproved, entity.TransferStatusInTransit, entity.TransferStatusReceived:
			full, err := uc.transfers.GetTransfer(ctx, rc, t.ID)
			if err != nil {
				res.Err = err
				return
			}
			res.Transfer, res.Resumed, res.Err = full, true, nil
			uc.log.Info().
				Str("production_run_id", in.ProductionRunID).
				Str("to_branch_id", res.BranchID).
				Str("transfer_id", full.ID).
				Str("status", string(full.Status)).
				Msg("destino retomado de una ejecución anterior")
			return
		}
	}
}

// settle liquida el traslado del destino. ErrLockTimeout se reintenta según la política;
// cualquier otro error corta los reintentos.
func (uc *DistributeUseCase) settle(ctx context.Context, rc domain.RequestContext, res *DestinationResult) {
	transferID := res.Transfer.ID
	operation := func() error {
		res.Attempts++
		s, err := uc.orchestrator.ExecuteTransferSettlement(ctx, rc, transferID)
		if err != nil {
			if domain.IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		res.Settlement = s
		res.Transfer = s.Transfer
		return nil
	}
	notify := func(err error, wait time.Duration) {
		uc.log.Debug().Err(err).
			Str("transfer_id", transferID).
			Int("attempt", res.Attempts).
			Dur("wait", wait).
			Msg("contención al liquidar destino, reintentando")
	}
	res.Err = backoff.RetryNotify(operation, uc.retry.backOff(ctx), notify)
}

// TotalQuantity cantidad total repartida con éxito.
func TotalQuantity(results []DestinationResult) decimal.Decimal {
	total := decimal.Zero
	for _, r := range results {
		if r.Err != nil || r.Transfer == nil {
			continue
		}
		for _, it := range r.Transfer.Items {
			total = total.Add(it.Quantity)
		}
	}
	return total
}
