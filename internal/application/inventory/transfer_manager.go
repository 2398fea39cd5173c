package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	invdomain "github.com/jhoicas/interbranch-api/internal/domain/inventory"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// ReferenceTypeTransfer tipo de referencia con que los movimientos y asientos apuntan al traslado.
const ReferenceTypeTransfer = "transfer"

// DefaultTransferPrefix prefijo del número de traslado si no se configura otro.
const DefaultTransferPrefix = "TRF"

// TransferManager crea traslados y avanza su máquina de estados.
type TransferManager struct {
	txRunner  repository.TxRunner
	transfers repository.TransferRepository
	movements repository.StockMovementRepository
	branches  repository.BranchRepository
	ledger    *StockLedger
	prefix    string
	now       func() time.Time
}

// NewTransferManager construye el gestor. transfers/movements son repos de lectura (fuera de tx).
func NewTransferManager(
	txRunner repository.TxRunner,
	transfers repository.TransferRepository,
	movements repository.StockMovementRepository,
	branches repository.BranchRepository,
	ledger *StockLedger,
	prefix string,
) *TransferManager {
	if prefix == "" {
		prefix = DefaultTransferPrefix
	}
	return &TransferManager{
		txRunner:  txRunner,
		transfers: transfers,
		movements: movements,
		branches:  branches,
		ledger:    ledger,
		prefix:    strings.ToUpper(prefix),
		now:       time.Now,
	}
}

// CreateTransferInput datos para crear un traslado.
type CreateTransferInput struct {
	FromBranchID  string
	ToBranchID    string
	Type          entity.TransferType
	Priority      string
	ReferenceType string
	ReferenceID   string
	Notes         string
	AutoApprove   bool // producción llega preautorizada
	Items         []TransferItemInput
}

// TransferItemInput línea solicitada.
type TransferItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateTransfer valida, numera y persiste el traslado en draft (o approved si AutoApprove).
func (m *TransferManager) CreateTransfer(ctx context.Context, rc domain.RequestContext, in CreateTransferInput) (*entity.Transfer, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if err := validateCreateInput(&in); err != nil {
		return nil, err
	}
	if err := m.checkBranch(ctx, rc, in.FromBranchID); err != nil {
		return nil, err
	}
	if err := m.checkBranch(ctx, rc, in.ToBranchID); err != nil {
		return nil, err
	}

	now := m.now()
	t := &entity.Transfer{
		ID:            uuid.New().String(),
		TenantID:      rc.TenantID,
		FromBranchID:  in.FromBranchID,
		ToBranchID:    in.ToBranchID,
		Type:          in.Type,
		Status:        entity.TransferStatusDraft,
		Priority:      in.Priority,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		CreatedBy:     rc.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, it := range in.Items {
		t.Items = append(t.Items, entity.TransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			LineNo:     i + 1,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	if in.AutoApprove {
		if err := invdomain.Transition(t, entity.TransferStatusApproved); err != nil {
			return nil, err
		}
		t.ApprovedBy = rc.ActorID
		t.ApprovedAt = &now
	}

	err := m.txRunner.Run(ctx, func(tx repository.Tx) error {
		seq, err := tx.Sequences.Next(ctx, rc.TenantID, m.prefix, now.Year())
		if err != nil {
			return err
		}
		t.Number = FormatTransferNumber(m.prefix, now.Year(), seq)
		return tx.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FormatTransferNumber <PREFIX>-<año>-<secuencia de 4 dígitos>.
func FormatTransferNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// Submit draft → pending.
func (m *TransferManager) Submit(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error) {
	return m.advance(ctx, rc, id, entity.TransferStatusPending, nil)
}

// Approve draft|pending → approved.
func (m *TransferManager) Approve(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error) {
	return m.advance(ctx, rc, id, entity.TransferStatusApproved, func(t *entity.Transfer, now time.Time) {
		t.ApprovedBy = rc.ActorID
		t.ApprovedAt = &now
	})
}

// Cancel draft|pending → cancelled. Nunca se tomó un bloqueo de stock, no hay efectos que revertir.
func (m *TransferManager) Cancel(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error) {
	return m.advance(ctx, rc, id, entity.TransferStatusCancelled, func(t *entity.Transfer, now time.Time) {
		t.CancelledAt = &now
	})
}

// MarkReceived in_transit → received (terminal).
func (m *TransferManager) MarkReceived(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error) {
	return m.advance(ctx, rc, id, entity.TransferStatusReceived, func(t *entity.Transfer, now time.Time) {
		t.ReceivedAt = &now
	})
}

func (m *TransferManager) advance(
	ctx context.Context,
	rc domain.RequestContext,
	id string,
	to entity.TransferStatus,
	stamp func(t *entity.Transfer, now time.Time),
) (*entity.Transfer, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := m.txRunner.Run(ctx, func(tx repository.Tx) error {
		t, err := tx.Transfers.GetForUpdate(ctx, rc.TenantID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := invdomain.Transition(t, to); err != nil {
			return err
		}
		now := m.now()
		t.UpdatedAt = now
		if stamp != nil {
			stamp(t, now)
		}
		if err := tx.Transfers.UpdateStatus(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyStockEffects corre dentro de la transacción del caller con el traslado ya bloqueado.
// Bloquea todas las filas de stock en orden canónico, aplica los ítems en orden de inserción
// (salida en origen antes que entrada en destino), registra un movimiento out y uno in por
// ítem y deja el traslado en in_transit. Cualquier error aborta la transacción completa.
func (m *TransferManager) ApplyStockEffects(ctx context.Context, tx repository.Tx, rc domain.RequestContext, t *entity.Transfer) ([]*entity.StockMovement, error) {
	if t.Status != entity.TransferStatusApproved {
		return nil, fmt.Errorf("%w: el traslado %s está en %s, se requiere approved",
			domain.ErrInvalidStateTransition, t.Number, t.Status)
	}
	if err := m.ledger.LockInOrder(ctx, tx.Stock, rc.TenantID, invdomain.LockOrder(t)); err != nil {
		return nil, err
	}

	items := append([]entity.TransferItem(nil), t.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })

	now := m.now()
	movements := make([]*entity.StockMovement, 0, len(items)*2)
	for _, it := range items {
		if _, err := m.ledger.ReserveAndDecrement(ctx, tx.Stock, rc.TenantID, it.ProductID, t.FromBranchID, it.Quantity); err != nil {
			return nil, err
		}
		if _, err := m.ledger.Increment(ctx, tx.Stock, rc.TenantID, it.ProductID, t.ToBranchID, it.Quantity); err != nil {
			return nil, err
		}
		for _, mv := range []*entity.StockMovement{
			newMovement(rc, t, it, t.FromBranchID, entity.MovementDirectionOut, now),
			newMovement(rc, t, it, t.ToBranchID, entity.MovementDirectionIn, now),
		} {
			if err := tx.Movements.Create(ctx, mv); err != nil {
				return nil, err
			}
			movements = append(movements, mv)
		}
	}

	if err := invdomain.Transition(t, entity.TransferStatusInTransit); err != nil {
		return nil, err
	}
	t.ShippedAt = &now
	t.UpdatedAt = now
	if err := tx.Transfers.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}
	return movements, nil
}

func newMovement(rc domain.RequestContext, t *entity.Transfer, it entity.TransferItem, branchID, direction string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		TenantID:      rc.TenantID,
		ProductID:     it.ProductID,
		BranchID:      branchID,
		Direction:     direction,
		Quantity:      it.Quantity,
		ReferenceType: ReferenceTypeTransfer,
		ReferenceID:   t.ID,
		ItemID:        it.ID,
		CreatedAt:     now,
		CreatedBy:     rc.ActorID,
	}
}

// GetTransfer obtiene un traslado del tenant con sus ítems.
func (m *TransferManager) GetTransfer(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error) {
	t, err := m.transfers.GetByID(ctx, rc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ListTransfers lista traslados del tenant con filtro tipado.
func (m *TransferManager) ListTransfers(ctx context.Context, rc domain.RequestContext, f repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return m.transfers.List(ctx, rc.TenantID, f, limit, offset)
}

// ListMovements movimientos de auditoría generados por el traslado.
func (m *TransferManager) ListMovements(ctx context.Context, rc domain.RequestContext, id string) ([]*entity.StockMovement, error) {
	if _, err := m.GetTransfer(ctx, rc, id); err != nil {
		return nil, err
	}
	return m.movements.ListByReference(ctx, rc.TenantID, ReferenceTypeTransfer, id)
}

func (m *TransferManager) checkBranch(ctx context.Context, rc domain.RequestContext, id string) error {
	b, err := m.branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, id)
	}
	if b.TenantID != rc.TenantID {
		return domain.ErrForbidden
	}
	if !b.Active {
		return fmt.Errorf("%w: sucursal %s inactiva", domain.ErrInvalidInput, id)
	}
	return nil
}

func validateCreateInput(in *CreateTransferInput) error {
	if in.FromBranchID == "" || in.ToBranchID == "" {
		return fmt.Errorf("%w: sucursal origen y destino requeridas", domain.ErrInvalidInput)
	}
	if in.FromBranchID == in.ToBranchID {
		return fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = entity.TransferTypeManual
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Type)
	}
	switch in.Priority {
	case "":
		in.Priority = entity.TransferPriorityNormal
	case entity.TransferPriorityLow, entity.TransferPriorityNormal, entity.TransferPriorityHigh, entity.TransferPriorityUrgent:
	default:
		return fmt.Errorf("%w: prioridad %q", domain.ErrInvalidInput, in.Priority)
	}
	if (in.ReferenceType == "") != (in.ReferenceID == "") {
		return fmt.Errorf("%w: reference_type y reference_id van juntos", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: el traslado requiere al menos un ítem", domain.ErrInvalidInput)
	}
	gross := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: ítem %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("%w: ítem %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: ítem %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		if !entity.FitsScale(it.Quantity, entity.QuantityPlaces) || !entity.FitsScale(it.UnitPrice, entity.QuantityPlaces) {
			return fmt.Errorf("%w: ítem %d con más de %d decimales", domain.ErrInvalidInput, i+1, entity.QuantityPlaces)
		}
		gross = gross.Add(it.Quantity.Mul(it.UnitPrice))
	}
	// un valor positivo que redondea a cero movería stock sin asiento ni saldo
	if gross.IsPositive() && gross.Round(entity.AmountPlaces).IsZero() {
		return fmt.Errorf("%w: el valor del traslado (%s) es menor a la unidad monetaria mínima", domain.ErrInvalidInput, gross)
	}
	return nil
}
