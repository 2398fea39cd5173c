//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/internal/domain"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/postgres"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

const tenantID = "tenant-1"

var rc = domain.RequestContext{TenantID: tenantID, ActorID: "user-1"}

type pgFixture struct {
	pool      *pgxpool.Pool
	repos     repository.Tx
	transfers *inventory.TransferManager
	balances  *accounting.BalanceTracker
	orch      *settlement.Orchestrator
}

// setupPostgres levanta un PostgreSQL desechable, aplica las migraciones y arma el motor.
func setupPostgres(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("interbranch"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, logger.NewNop()))

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	branches := postgres.NewBranchRepository(pool)
	now := time.Now()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, branches.Save(ctx, &entity.Branch{
			ID: id, TenantID: tenantID, Code: id, Name: "Sucursal " + id, Active: true, CreatedAt: now, UpdatedAt: now,
		}))
	}

	runner := postgres.NewTxRunner(pool, 5*time.Second)
	repos := postgres.Repositories(pool)
	tm := inventory.NewTransferManager(runner, repos.Transfers, repos.Movements, branches, inventory.NewStockLedger(), "TRF")
	poster := accounting.NewJournalPoster(runner, repos.Journal, branches)
	bt := accounting.NewBalanceTracker(runner, repos.Balances)
	pa := accounting.NewPayrollAllocator(repos.Payroll, branches, poster, bt, acct.DefaultAccounts())
	return &pgFixture{
		pool:      pool,
		repos:     repos,
		transfers: tm,
		balances:  bt,
		orch:      settlement.NewOrchestrator(runner, tm, poster, bt, pa),
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *pgFixture) seedStock(t *testing.T, product, branch string, qty int64) {
	t.Helper()
	_, err := f.repos.Stock.Increment(context.Background(), tenantID, product, branch, dec(qty))
	require.NoError(t, err)
}

func (f *pgFixture) stock(t *testing.T, product, branch string) decimal.Decimal {
	t.Helper()
	lvl, err := f.repos.Stock.Get(context.Background(), tenantID, product, branch)
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *pgFixture) approvedTransfer(t *testing.T, qty, price int64) *entity.Transfer {
	t.Helper()
	tr, err := f.transfers.CreateTransfer(context.Background(), rc, inventory.CreateTransferInput{
		FromBranchID: "A",
		ToBranchID:   "B",
		AutoApprove:  true,
		Items:        []inventory.TransferItemInput{{ProductID: "X", Quantity: dec(qty), UnitPrice: dec(price)}},
	})
	require.NoError(t, err)
	return tr
}

// ─────────────────────────────────────────────────────────────────────────────
// Liquidación de traslado
// ─────────────────────────────────────────────────────────────────────────────

func TestIntegration_TransferSettlement_Exitoso(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	f.seedStock(t, "X", "A", 100)

	tr := f.approvedTransfer(t, 10, 5000)
	out, err := f.orch.ExecuteTransferSettlement(ctx, rc, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusInTransit, out.Transfer.Status)
	assert.True(t, f.stock(t, "X", "A").Equal(dec(90)))
	assert.True(t, f.stock(t, "X", "B").Equal(dec(10)))
	require.NotNil(t, out.SourceEntry)
	require.NotNil(t, out.DestinationEntry)
	assert.True(t, out.SourceEntry.TotalDebit.Equal(out.SourceEntry.TotalCredit))
	assert.True(t, out.DestinationEntry.TotalDebit.Equal(dec(50000)))

	bal, err := f.repos.Balances.GetByReference(ctx, tenantID, "A", "B", tr.ID)
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, bal.Amount.Equal(dec(50000)))
	assert.Equal(t, entity.BalanceStatusPending, bal.Status)

	movs, err := f.repos.Movements.ListByReference(ctx, tenantID, inventory.ReferenceTypeTransfer, tr.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestIntegration_TransferSettlement_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	f.seedStock(t, "X", "A", 5)

	tr := f.approvedTransfer(t, 10, 5000)
	_, err := f.orch.ExecuteTransferSettlement(ctx, rc, tr.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stock(t, "X", "A").Equal(dec(5)))
	assert.True(t, f.stock(t, "X", "B").IsZero())
	got, err := f.repos.Transfers.GetByID(ctx, tenantID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, got.Status)
	entries, err := f.repos.Journal.ListByReference(ctx, tenantID, inventory.ReferenceTypeTransfer, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	bal, err := f.repos.Balances.GetByReference(ctx, tenantID, "A", "B", tr.ID)
	require.NoError(t, err)
	assert.Nil(t, bal)
}

func TestIntegration_TransferSettlement_SegundaEjecucionRechazada(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	f.seedStock(t, "X", "A", 100)

	tr := f.approvedTransfer(t, 10, 5000)
	_, err := f.orch.ExecuteTransferSettlement(ctx, rc, tr.ID)
	require.NoError(t, err)
	_, err = f.orch.ExecuteTransferSettlement(ctx, rc, tr.ID)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, f.stock(t, "X", "A").Equal(dec(90)))
}

func TestIntegration_TransferSettlement_ConcurrenciaNuncaNegativo(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	f.seedStock(t, "X", "A", 60)

	transfers := make([]*entity.Transfer, 10)
	for i := range transfers {
		transfers[i] = f.approvedTransfer(t, 10, 100)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for _, tr := range transfers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.orch.ExecuteTransferSettlement(ctx, rc, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(tr.ID)
	}
	wg.Wait()

	assert.Equal(t, 6, ok)
	assert.Equal(t, 4, insufficient)
	assert.True(t, f.stock(t, "X", "A").IsZero())
	assert.True(t, f.stock(t, "X", "B").Equal(dec(60)))

	sum, err := f.balances.Summary(ctx, rc, "A", "B")
	require.NoError(t, err)
	assert.True(t, sum.PendingOwed.Equal(dec(6000)))
	assert.Equal(t, 6, sum.PendingEntries)
}

func TestIntegration_TransferSettlement_SentidosOpuestos(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	for _, b := range []string{"A", "B"} {
		f.seedStock(t, "X", b, 100)
		f.seedStock(t, "Y", b, 100)
	}

	// los ítems van en orden inverso según el sentido para que el orden de inserción
	// no coincida con el de bloqueo
	const perDirection = 12
	var ids []string
	for i := 0; i < perDirection; i++ {
		ab, err := f.transfers.CreateTransfer(ctx, rc, inventory.CreateTransferInput{
			FromBranchID: "A", ToBranchID: "B", AutoApprove: true,
			Items: []inventory.TransferItemInput{
				{ProductID: "X", Quantity: dec(2), UnitPrice: dec(100)},
				{ProductID: "Y", Quantity: dec(1), UnitPrice: dec(50)},
			},
		})
		require.NoError(t, err)
		ba, err := f.transfers.CreateTransfer(ctx, rc, inventory.CreateTransferInput{
			FromBranchID: "B", ToBranchID: "A", AutoApprove: true,
			Items: []inventory.TransferItemInput{
				{ProductID: "Y", Quantity: dec(1), UnitPrice: dec(50)},
				{ProductID: "X", Quantity: dec(1), UnitPrice: dec(100)},
			},
		})
		require.NoError(t, err)
		ids = append(ids, ab.ID, ba.ID)
	}

	start := make(chan struct{})
	errs := make(chan error, len(ids))
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			<-start
			_, err := f.orch.ExecuteTransferSettlement(ctx, rc, id)
			errs <- err
		}(id)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.False(t, errors.Is(err, domain.ErrLockTimeout), "bloqueo mutuo o timeout: %v", err)
		assert.NoError(t, err)
	}

	// A: 100 - 12*2 + 12*1 ; B: 100 + 12*2 - 12*1 ; Y se compensa
	assert.True(t, f.stock(t, "X", "A").Equal(dec(88)))
	assert.True(t, f.stock(t, "X", "B").Equal(dec(112)))
	assert.True(t, f.stock(t, "Y", "A").Equal(dec(100)))
	assert.True(t, f.stock(t, "Y", "B").Equal(dec(100)))

	sum, err := f.balances.Summary(ctx, rc, "A", "B")
	require.NoError(t, err)
	assert.True(t, sum.PendingOwed.Equal(dec(perDirection*250)))
	assert.True(t, sum.PendingOwing.Equal(dec(perDirection*150)))
	assert.Equal(t, 2*perDirection, sum.PendingEntries)
}

// ─────────────────────────────────────────────────────────────────────────────
// Saldos y nómina
// ─────────────────────────────────────────────────────────────────────────────

func TestIntegration_Accrue_SumaConcurrente(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(f.pool, 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(ctx, func(tx repository.Tx) error {
				_, err := f.balances.AccrueInTx(ctx, tx, rc, accounting.AccrueInput{
					FromBranchID: "A", ToBranchID: "C", ReferenceType: "manual", ReferenceID: "REF-1", Amount: dec(125),
				})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	bal, err := f.repos.Balances.GetByReference(ctx, tenantID, "A", "C", "REF-1")
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, bal.Amount.Equal(dec(1000)))
}

func TestIntegration_PayrollAllocation_DuplicadoRechazado(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()
	req := accounting.AllocationRequest{
		EmployeeID:      "EMP-1",
		HomeBranchID:    "A",
		VisitedBranchID: "B",
		Period:          "2024-03",
		Amount:          dec(3000000),
		SplitPercentage: dec(50),
		AutoApprove:     true,
	}
	out, err := f.orch.ExecutePayrollAllocation(ctx, rc, req)
	require.NoError(t, err)
	assert.Equal(t, entity.PayrollStatusProcessed, out.Allocation.Status)
	require.NotNil(t, out.Balance)
	assert.True(t, out.Balance.Amount.Equal(dec(1500000)))

	_, err = f.orch.ExecutePayrollAllocation(ctx, rc, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}
