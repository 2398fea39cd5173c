package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ─────────────────────────────────────────────────────────────────────────────

const tenantID = "tenant-1"

var rc = domain.RequestContext{TenantID: tenantID, ActorID: "user-1"}

func newManager(t *testing.T) (*inventory.TransferManager, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	branches := store.Branches()
	branches.Save(&entity.Branch{ID: "A", TenantID: tenantID, Code: "A", Active: true})
	branches.Save(&entity.Branch{ID: "B", TenantID: tenantID, Code: "B", Active: true})
	branches.Save(&entity.Branch{ID: "OFF", TenantID: tenantID, Code: "OFF", Active: false})
	branches.Save(&entity.Branch{ID: "Z", TenantID: "tenant-2", Code: "Z", Active: true})
	repos := store.Repos()
	return inventory.NewTransferManager(store, repos.Transfers, repos.Movements, branches, inventory.NewStockLedger(), "trf"), store
}

func validInput() inventory.CreateTransferInput {
	return inventory.CreateTransferInput{
		FromBranchID: "A",
		ToBranchID:   "B",
		Items: []inventory.TransferItemInput{
			{ProductID: "X", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)},
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateTransfer
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateTransfer_DraftNumerado(t *testing.T) {
	m, _ := newManager(t)
	year := time.Now().Year()

	t1, err := m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)
	t2, err := m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusDraft, t1.Status)
	assert.Equal(t, entity.TransferTypeManual, t1.Type)
	assert.Equal(t, entity.TransferPriorityNormal, t1.Priority)
	assert.Equal(t, fmt.Sprintf("TRF-%d-0001", year), t1.Number)
	assert.Equal(t, fmt.Sprintf("TRF-%d-0002", year), t2.Number)
	require.Len(t, t1.Items, 1)
	assert.Equal(t, 1, t1.Items[0].LineNo)
	assert.Equal(t, "user-1", t1.CreatedBy)
}

func TestCreateTransfer_AutoApprove(t *testing.T) {
	m, _ := newManager(t)
	in := validInput()
	in.AutoApprove = true

	tr, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, tr.Status)
	assert.Equal(t, "user-1", tr.ApprovedBy)
	assert.NotNil(t, tr.ApprovedAt)
}

func TestCreateTransfer_Validaciones(t *testing.T) {
	m, _ := newManager(t)
	tests := []struct {
		name   string
		mutate func(in *inventory.CreateTransferInput)
		err    error
	}{
		{"mismo origen y destino", func(in *inventory.CreateTransferInput) { in.ToBranchID = "A" }, domain.ErrInvalidInput},
		{"sin ítems", func(in *inventory.CreateTransferInput) { in.Items = nil }, domain.ErrInvalidInput},
		{"cantidad cero", func(in *inventory.CreateTransferInput) { in.Items[0].Quantity = decimal.Zero }, domain.ErrInvalidInput},
		{"precio negativo", func(in *inventory.CreateTransferInput) { in.Items[0].UnitPrice = decimal.NewFromInt(-1) }, domain.ErrInvalidInput},
		{"tipo desconocido", func(in *inventory.CreateTransferInput) { in.Type = "gift" }, domain.ErrInvalidInput},
		{"prioridad desconocida", func(in *inventory.CreateTransferInput) { in.Priority = "ya" }, domain.ErrInvalidInput},
		{"referencia incompleta", func(in *inventory.CreateTransferInput) { in.ReferenceID = "run-1" }, domain.ErrInvalidInput},
		{"cantidad con cinco decimales", func(in *inventory.CreateTransferInput) { in.Items[0].Quantity = decimal.RequireFromString("0.00006") }, domain.ErrInvalidInput},
		{"cantidad menor a la escala", func(in *inventory.CreateTransferInput) { in.Items[0].Quantity = decimal.RequireFromString("0.00001") }, domain.ErrInvalidInput},
		{"precio con cinco decimales", func(in *inventory.CreateTransferInput) { in.Items[0].UnitPrice = decimal.RequireFromString("10.00001") }, domain.ErrInvalidInput},
		{"valor menor a un centavo", func(in *inventory.CreateTransferInput) {
			in.Items[0].Quantity = decimal.NewFromInt(1)
			in.Items[0].UnitPrice = decimal.RequireFromString("0.004")
		}, domain.ErrInvalidInput},
		{"sucursal inexistente", func(in *inventory.CreateTransferInput) { in.ToBranchID = "NOPE" }, domain.ErrNotFound},
		{"sucursal de otro tenant", func(in *inventory.CreateTransferInput) { in.ToBranchID = "Z" }, domain.ErrForbidden},
		{"sucursal inactiva", func(in *inventory.CreateTransferInput) { in.ToBranchID = "OFF" }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Items = append([]inventory.TransferItemInput(nil), in.Items...)
			tt.mutate(&in)
			_, err := m.CreateTransfer(context.Background(), rc, in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateTransfer_EscalasAdmitidas(t *testing.T) {
	m, _ := newManager(t)
	in := validInput()
	in.Items = []inventory.TransferItemInput{
		{ProductID: "X", Quantity: decimal.RequireFromString("2.5000"), UnitPrice: decimal.RequireFromString("0.0040")},
		{ProductID: "Y", Quantity: decimal.RequireFromString("0.0001"), UnitPrice: decimal.Zero},
	}

	tr, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)
	assert.True(t, tr.TotalAmount().Equal(decimal.RequireFromString("0.01")))
}

func TestCreateTransfer_PreciosEnCeroSinValor(t *testing.T) {
	m, _ := newManager(t)
	in := validInput()
	in.Items[0].UnitPrice = decimal.Zero

	tr, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)
	assert.True(t, tr.TotalAmount().IsZero())
}

func TestCreateTransfer_RequestContextVacio(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.CreateTransfer(context.Background(), domain.RequestContext{TenantID: tenantID}, validInput())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateTransfer_ReferenciaDuplicada(t *testing.T) {
	m, _ := newManager(t)
	in := validInput()
	in.ReferenceType, in.ReferenceID = "requisition", "req-9"

	first, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)
	_, err = m.CreateTransfer(context.Background(), rc, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	_, err = m.Cancel(context.Background(), rc, first.ID)
	require.NoError(t, err)
	_, err = m.CreateTransfer(context.Background(), rc, in)
	assert.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ─────────────────────────────────────────────────────────────────────────────

func TestSubmitApprove(t *testing.T) {
	m, _ := newManager(t)
	tr, err := m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)

	tr, err = m.Submit(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, tr.Status)

	tr, err = m.Approve(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, tr.Status)

	_, err = m.Cancel(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	stored, err := m.GetTransfer(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, stored.Status)
}

func TestCancelDraft_SinEfectos(t *testing.T) {
	m, store := newManager(t)
	tr, err := m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)

	tr, err = m.Cancel(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, tr.Status)
	assert.NotNil(t, tr.CancelledAt)

	levels, err := store.Repos().Stock.ListByBranch(context.Background(), tenantID, "A")
	require.NoError(t, err)
	assert.Empty(t, levels)
	entries, err := store.Repos().Journal.ListByReference(context.Background(), tenantID, inventory.ReferenceTypeTransfer, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = m.Approve(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestMarkReceived_RequiereInTransit(t *testing.T) {
	m, _ := newManager(t)
	in := validInput()
	in.AutoApprove = true
	tr, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)

	_, err = m.MarkReceived(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestAdvance_NoEncontrado(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Approve(context.Background(), rc, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyStockEffects
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyStockEffects_MueveStockYRegistraMovimientos(t *testing.T) {
	m, store := newManager(t)
	store.SetStock(tenantID, "X", "A", decimal.NewFromInt(12))
	in := validInput()
	in.AutoApprove = true
	tr, err := m.CreateTransfer(context.Background(), rc, in)
	require.NoError(t, err)

	err = store.Run(context.Background(), func(tx repository.Tx) error {
		locked, err := tx.Transfers.GetForUpdate(context.Background(), tenantID, tr.ID)
		if err != nil {
			return err
		}
		movs, err := m.ApplyStockEffects(context.Background(), tx, rc, locked)
		if err != nil {
			return err
		}
		require.Len(t, movs, 2)
		assert.Equal(t, entity.MovementDirectionOut, movs[0].Direction)
		assert.Equal(t, entity.MovementDirectionIn, movs[1].Direction)
		return nil
	})
	require.NoError(t, err)

	a, _ := store.Repos().Stock.Get(context.Background(), tenantID, "X", "A")
	b, _ := store.Repos().Stock.Get(context.Background(), tenantID, "X", "B")
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(5)))

	movs, err := m.ListMovements(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	stored, _ := m.GetTransfer(context.Background(), rc, tr.ID)
	assert.Equal(t, entity.TransferStatusInTransit, stored.Status)
}

func TestApplyStockEffects_RequiereApproved(t *testing.T) {
	m, store := newManager(t)
	tr, err := m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)

	err = store.Run(context.Background(), func(tx repository.Tx) error {
		_, err := m.ApplyStockEffects(context.Background(), tx, rc, tr)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestStockLedger_ReserveAndDecrementInsuficiente(t *testing.T) {
	_, store := newManager(t)
	store.SetStock(tenantID, "X", "A", decimal.NewFromInt(3))
	ledger := inventory.NewStockLedger()

	err := store.Run(context.Background(), func(tx repository.Tx) error {
		prior, err := ledger.ReserveAndDecrement(context.Background(), tx.Stock, tenantID, "X", "A", decimal.NewFromInt(4))
		assert.True(t, prior.Equal(decimal.NewFromInt(3)))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	lvl, _ := store.Repos().Stock.Get(context.Background(), tenantID, "X", "A")
	assert.True(t, lvl.Quantity.Equal(decimal.NewFromInt(3)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Listado
// ─────────────────────────────────────────────────────────────────────────────

func TestListTransfers_Filtro(t *testing.T) {
	m, _ := newManager(t)
	approved := validInput()
	approved.AutoApprove = true
	_, err := m.CreateTransfer(context.Background(), rc, approved)
	require.NoError(t, err)
	_, err = m.CreateTransfer(context.Background(), rc, validInput())
	require.NoError(t, err)

	all, err := m.ListTransfers(context.Background(), rc, repository.TransferFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := m.ListTransfers(context.Background(), rc, repository.TransferFilter{Status: entity.TransferStatusDraft}, 10, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, entity.TransferStatusDraft, drafts[0].Status)

	other, err := m.ListTransfers(context.Background(), domain.RequestContext{TenantID: "tenant-2", ActorID: "x"}, repository.TransferFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFormatTransferNumber(t *testing.T) {
	assert.Equal(t, "TRF-2026-0042", inventory.FormatTransferNumber("TRF", 2026, 42))
	assert.Equal(t, "TRF-2026-12345", inventory.FormatTransferNumber("TRF", 2026, 12345))
}
