package settlement_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/internal/domain"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ─────────────────────────────────────────────────────────────────────────────

const tenantID = "tenant-1"

var rc = domain.RequestContext{TenantID: tenantID, ActorID: "user-1"}

type fixture struct {
	store     *memory.Store
	repos     repository.Tx
	transfers *inventory.TransferManager
	balances  *accounting.BalanceTracker
	poster    *accounting.JournalPoster
	orch      *settlement.Orchestrator
}

func newFixture(t *testing.T, opts ...settlement.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	branches := store.Branches()
	for _, id := range []string{"A", "B", "C"} {
		branches.Save(&entity.Branch{ID: id, TenantID: tenantID, Code: id, Name: "Sucursal " + id, Active: true})
	}
	branches.Save(&entity.Branch{ID: "Z", TenantID: "tenant-2", Code: "Z", Name: "Ajena", Active: true})

	repos := store.Repos()
	tm := inventory.NewTransferManager(store, repos.Transfers, repos.Movements, branches, inventory.NewStockLedger(), "TRF")
	poster := accounting.NewJournalPoster(store, repos.Journal, branches)
	bt := accounting.NewBalanceTracker(store, repos.Balances)
	pa := accounting.NewPayrollAllocator(repos.Payroll, branches, poster, bt, acct.DefaultAccounts())
	return &fixture{
		store:     store,
		repos:     repos,
		transfers: tm,
		balances:  bt,
		poster:    poster,
		orch:      settlement.NewOrchestrator(store, tm, poster, bt, pa, opts...),
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) stock(t *testing.T, product, branch string) decimal.Decimal {
	t.Helper()
	lvl, err := f.repos.Stock.Get(context.Background(), tenantID, product, branch)
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *fixture) transfer(t *testing.T, from, to string, qty, price int64, autoApprove bool) *entity.Transfer {
	t.Helper()
	tr, err := f.transfers.CreateTransfer(context.Background(), rc, inventory.CreateTransferInput{
		FromBranchID: from,
		ToBranchID:   to,
		AutoApprove:  autoApprove,
		Items:        []inventory.TransferItemInput{{ProductID: "X", Quantity: dec(qty), UnitPrice: dec(price)}},
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) journalFor(t *testing.T, referenceType, id string) []*entity.JournalEntry {
	t.Helper()
	entries, err := f.repos.Journal.ListByReference(context.Background(), tenantID, referenceType, id)
	require.NoError(t, err)
	return entries
}

func (f *fixture) movementsFor(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.repos.Movements.ListByReference(context.Background(), tenantID, inventory.ReferenceTypeTransfer, id)
	require.NoError(t, err)
	return movs
}

// ─────────────────────────────────────────────────────────────────────────────
// Liquidación de traslados
// ─────────────────────────────────────────────────────────────────────────────

func TestExecuteTransferSettlement_TrasladoAutoaprobado(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(120))
	tr := f.transfer(t, "A", "B", 50, 1000, true)

	res, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.NoError(t, err)

	assert.True(t, f.stock(t, "X", "A").Equal(dec(70)))
	assert.True(t, f.stock(t, "X", "B").Equal(dec(50)))
	assert.Equal(t, entity.TransferStatusInTransit, res.Transfer.Status)
	assert.True(t, res.Total.Equal(dec(50000)))
	assert.Len(t, res.Movements, 2)

	entries := f.journalFor(t, inventory.ReferenceTypeTransfer, tr.ID)
	require.Len(t, entries, 2)
	byBranch := map[string]*entity.JournalEntry{}
	for _, e := range entries {
		assert.Equal(t, entity.JournalEntryStatusPosted, e.Status)
		assert.True(t, e.TotalDebit.Equal(dec(50000)))
		assert.True(t, e.TotalCredit.Equal(e.TotalDebit))
		byBranch[e.BranchID] = e
	}
	require.Contains(t, byBranch, "A")
	require.Contains(t, byBranch, "B")

	bal, err := f.repos.Balances.GetByReference(context.Background(), tenantID, "A", "B", tr.ID)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, bal.Amount.Equal(dec(50000)))
	assert.Equal(t, entity.BalanceStatusPending, bal.Status)

	stored, err := f.transfers.GetTransfer(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, stored.Status)
	assert.NotNil(t, stored.ShippedAt)
}

func TestExecuteTransferSettlement_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(120))
	tr := f.transfer(t, "A", "B", 200, 1000, true)

	_, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, domain.IsRetryable(err))

	assert.True(t, f.stock(t, "X", "A").Equal(dec(120)))
	assert.True(t, f.stock(t, "X", "B").IsZero())
	assert.Empty(t, f.movementsFor(t, tr.ID))
	assert.Empty(t, f.journalFor(t, inventory.ReferenceTypeTransfer, tr.ID))

	stored, _ := f.transfers.GetTransfer(context.Background(), rc, tr.ID)
	assert.Equal(t, entity.TransferStatusApproved, stored.Status)
}

func TestExecuteTransferSettlement_SegundaLlamadaRechazada(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(120))
	tr := f.transfer(t, "A", "B", 50, 1000, true)

	_, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.NoError(t, err)

	_, err = f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.transfers.MarkReceived(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	_, err = f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	assert.Len(t, f.movementsFor(t, tr.ID), 2)
	assert.Len(t, f.journalFor(t, inventory.ReferenceTypeTransfer, tr.ID), 2)
	assert.True(t, f.stock(t, "X", "A").Equal(dec(70)))
}

func TestExecuteTransferSettlement_DraftNoSeLiquida(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(120))
	tr := f.transfer(t, "A", "B", 10, 1000, false)

	_, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, f.stock(t, "X", "A").Equal(dec(120)))
}

func TestExecuteTransferSettlement_TodoONada(t *testing.T) {
	unbalanced := func(acc acct.Accounts, total decimal.Decimal) (src, dst []entity.JournalLine) {
		src, dst = acct.TransferLines(acc, total)
		dst[1].Credit = dst[1].Credit.Sub(decimal.New(1, -2))
		return src, dst
	}
	f := newFixture(t, settlement.WithTransferLines(unbalanced))
	f.store.SetStock(tenantID, "X", "A", dec(120))
	tr := f.transfer(t, "A", "B", 50, 1000, true)

	_, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.ErrorIs(t, err, domain.ErrUnbalancedEntry)

	assert.True(t, f.stock(t, "X", "A").Equal(dec(120)))
	assert.True(t, f.stock(t, "X", "B").IsZero())
	assert.Empty(t, f.movementsFor(t, tr.ID))
	assert.Empty(t, f.journalFor(t, inventory.ReferenceTypeTransfer, tr.ID))
	bal, _ := f.repos.Balances.GetByReference(context.Background(), tenantID, "A", "B", tr.ID)
	assert.Nil(t, bal)

	stored, _ := f.transfers.GetTransfer(context.Background(), rc, tr.ID)
	assert.Equal(t, entity.TransferStatusApproved, stored.Status)
}

func TestExecuteTransferSettlement_TrasladoSinValorSoloMueveStock(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(10))
	tr := f.transfer(t, "A", "B", 4, 0, true)

	res, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	assert.Nil(t, res.SourceEntry)
	assert.Nil(t, res.Balance)
	assert.True(t, f.stock(t, "X", "B").Equal(dec(4)))
	assert.Empty(t, f.journalFor(t, inventory.ReferenceTypeTransfer, tr.ID))
}

func TestExecuteTransferSettlement_NoExisteEnOtroTenant(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(10))
	tr := f.transfer(t, "A", "B", 4, 10, true)

	other := domain.RequestContext{TenantID: "tenant-2", ActorID: "intruso"}
	_, err := f.orch.ExecuteTransferSettlement(context.Background(), other, tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecuteTransferSettlement_SentidosOpuestos(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(100))
	f.store.SetStock(tenantID, "X", "B", dec(100))
	ab := f.transfer(t, "A", "B", 30, 10, true)
	ba := f.transfer(t, "B", "A", 20, 10, true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{ab.ID, ba.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.orch.ExecuteTransferSettlement(context.Background(), rc, id)
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, f.stock(t, "X", "A").Equal(dec(90)))
	assert.True(t, f.stock(t, "X", "B").Equal(dec(110)))

	summary, err := f.balances.Summary(context.Background(), rc, "A", "B")
	require.NoError(t, err)
	assert.True(t, summary.PendingOwed.Equal(dec(300)))
	assert.True(t, summary.PendingOwing.Equal(dec(200)))
	assert.True(t, summary.Net.Equal(dec(100)))
}

func TestExecuteTransferSettlement_ConcurrentesNuncaNegativo(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(100))
	const n = 10
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.transfer(t, "A", "B", 15, 1, true).ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.orch.ExecuteTransferSettlement(context.Background(), rc, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				insufficient++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 6, ok)
	assert.Equal(t, 4, insufficient)
	assert.True(t, f.stock(t, "X", "A").Equal(dec(10)))
	assert.True(t, f.stock(t, "X", "B").Equal(dec(90)))
}

func TestConservacionDeStock_TrasladoRecibido(t *testing.T) {
	f := newFixture(t)
	f.store.SetStock(tenantID, "X", "A", dec(40))
	f.store.SetStock(tenantID, "Y", "A", dec(40))
	tr, err := f.transfers.CreateTransfer(context.Background(), rc, inventory.CreateTransferInput{
		FromBranchID: "A", ToBranchID: "C", AutoApprove: true,
		Items: []inventory.TransferItemInput{
			{ProductID: "Y", Quantity: dec(5), UnitPrice: dec(3)},
			{ProductID: "X", Quantity: dec(7), UnitPrice: dec(2)},
		},
	})
	require.NoError(t, err)
	_, err = f.orch.ExecuteTransferSettlement(context.Background(), rc, tr.ID)
	require.NoError(t, err)
	_, err = f.transfers.MarkReceived(context.Background(), rc, tr.ID)
	require.NoError(t, err)

	out, in := map[string]decimal.Decimal{}, map[string]decimal.Decimal{}
	for _, m := range f.movementsFor(t, tr.ID) {
		switch m.Direction {
		case entity.MovementDirectionOut:
			assert.Equal(t, "A", m.BranchID)
			out[m.ItemID] = out[m.ItemID].Add(m.Quantity)
		case entity.MovementDirectionIn:
			assert.Equal(t, "C", m.BranchID)
			in[m.ItemID] = in[m.ItemID].Add(m.Quantity)
		}
	}
	require.Len(t, out, 2)
	for item, q := range out {
		assert.True(t, q.Equal(in[item]), "ítem %s", item)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Nómina
// ─────────────────────────────────────────────────────────────────────────────

func payrollRequest(autoApprove bool) accounting.AllocationRequest {
	return accounting.AllocationRequest{
		EmployeeID:      "emp-1",
		HomeBranchID:    "A",
		VisitedBranchID: "B",
		Period:          "2026-09",
		Amount:          dec(3000000),
		SplitPercentage: dec(50),
		AutoApprove:     autoApprove,
	}
}

func TestExecutePayrollAllocation_MitadYMitadAutoaprobada(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(true))
	require.NoError(t, err)

	a := res.Allocation
	assert.Equal(t, entity.PayrollStatusProcessed, a.Status)
	assert.True(t, a.CompanyPortion.Equal(dec(1500000)))
	assert.True(t, a.BranchPortion.Equal(dec(1500000)))
	require.NotNil(t, res.Entry)
	assert.Equal(t, "A", res.Entry.BranchID)
	assert.Equal(t, res.Entry.ID, a.JournalEntryID)
	require.Len(t, res.Entry.Lines, 2)
	acc := acct.DefaultAccounts()
	assert.Equal(t, acc.SalaryExpense, res.Entry.Lines[0].AccountCode)
	assert.True(t, res.Entry.Lines[0].Debit.Equal(dec(1500000)))
	assert.Equal(t, acc.InterBranchPayable, res.Entry.Lines[1].AccountCode)
	assert.True(t, res.Entry.Lines[1].Credit.Equal(dec(1500000)))

	bal, err := f.repos.Balances.GetByReference(context.Background(), tenantID, "A", "B", a.ID)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, bal.Amount.Equal(dec(1500000)))

	stored, err := f.repos.Payroll.GetByID(context.Background(), tenantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayrollStatusProcessed, stored.Status)
}

func TestExecutePayrollAllocation_PendienteSinEfectoContable(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(false))
	require.NoError(t, err)
	assert.Equal(t, entity.PayrollStatusPending, res.Allocation.Status)
	assert.Nil(t, res.Entry)
	assert.Empty(t, f.journalFor(t, accounting.ReferenceTypePayrollAllocation, res.Allocation.ID))

	approved, err := f.orch.ApprovePayrollAllocation(context.Background(), rc, res.Allocation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayrollStatusProcessed, approved.Allocation.Status)
	assert.Equal(t, "user-1", approved.Allocation.ApprovedBy)
	assert.Len(t, f.journalFor(t, accounting.ReferenceTypePayrollAllocation, res.Allocation.ID), 1)

	_, err = f.orch.ApprovePayrollAllocation(context.Background(), rc, res.Allocation.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Len(t, f.journalFor(t, accounting.ReferenceTypePayrollAllocation, res.Allocation.ID), 1)
}

func TestRejectPayrollAllocation(t *testing.T) {
	f := newFixture(t)
	res, err := f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(false))
	require.NoError(t, err)

	rejected, err := f.orch.RejectPayrollAllocation(context.Background(), rc, res.Allocation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayrollStatusRejected, rejected.Status)

	_, err = f.orch.ApprovePayrollAllocation(context.Background(), rc, res.Allocation.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// rechazada libera el periodo para una nueva solicitud
	_, err = f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(false))
	assert.NoError(t, err)
}

func TestExecutePayrollAllocation_Duplicada(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(true))
	require.NoError(t, err)

	_, err = f.orch.ExecutePayrollAllocation(context.Background(), rc, payrollRequest(true))
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestExecutePayrollAllocation_Validaciones(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(r *accounting.AllocationRequest)
		err    error
	}{
		{"misma sucursal", func(r *accounting.AllocationRequest) { r.VisitedBranchID = "A" }, domain.ErrInvalidInput},
		{"sin empleado", func(r *accounting.AllocationRequest) { r.EmployeeID = "" }, domain.ErrInvalidInput},
		{"periodo inválido", func(r *accounting.AllocationRequest) { r.Period = "2026/09" }, domain.ErrInvalidInput},
		{"porcentaje fuera de rango", func(r *accounting.AllocationRequest) { r.SplitPercentage = dec(101) }, domain.ErrInvalidInput},
		{"monto cero", func(r *accounting.AllocationRequest) { r.Amount = decimal.Zero }, domain.ErrInvalidInput},
		{"sucursal inexistente", func(r *accounting.AllocationRequest) { r.VisitedBranchID = "NOPE" }, domain.ErrNotFound},
		{"sucursal de otro tenant", func(r *accounting.AllocationRequest) { r.VisitedBranchID = "Z" }, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := payrollRequest(true)
			tt.mutate(&req)
			_, err := f.orch.ExecutePayrollAllocation(context.Background(), rc, req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
