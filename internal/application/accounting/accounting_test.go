package accounting_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
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

var rc = domain.RequestContext{TenantID: tenantID, ActorID: "contador-1"}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for _, id := range []string{"A", "B"} {
		store.Branches().Save(&entity.Branch{ID: id, TenantID: tenantID, Code: id, Active: true})
	}
	return store
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func adjustment(ref string, amount int64) accounting.PostInput {
	return accounting.PostInput{
		BranchID:      "A",
		ReferenceType: "manual",
		ReferenceID:   ref,
		Description:   "Ajuste de cierre",
		Lines: []entity.JournalLine{
			acct.Debit("1140", "Inventario", dec(amount)),
			acct.Credit("4210", "Aprovechamientos", dec(amount)),
		},
	}
}

// accrue acumula un delta en su propia transacción.
func accrue(t *testing.T, store *memory.Store, bt *accounting.BalanceTracker, from, to, ref string, amount int64) {
	t.Helper()
	err := store.Run(context.Background(), func(tx repository.Tx) error {
		_, err := bt.AccrueInTx(context.Background(), tx, rc, accounting.AccrueInput{
			FromBranchID: from, ToBranchID: to, ReferenceType: "transfer", ReferenceID: ref, Amount: dec(amount),
		})
		return err
	})
	require.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// JournalPoster
// ─────────────────────────────────────────────────────────────────────────────

func TestPost_AjusteBalanceado(t *testing.T) {
	store := newStore(t)
	p := accounting.NewJournalPoster(store, store.Repos().Journal, store.Branches())

	e, err := p.Post(context.Background(), rc, adjustment("cierre-09", 250))
	require.NoError(t, err)
	assert.Equal(t, entity.JournalEntryTypeAdjustment, e.EntryType)
	assert.Equal(t, entity.JournalEntryStatusPosted, e.Status)
	assert.True(t, e.TotalDebit.Equal(dec(250)))
	assert.True(t, e.TotalCredit.Equal(dec(250)))
	require.Len(t, e.Lines, 2)
	assert.Equal(t, 2, e.Lines[1].LineNo)
	assert.Equal(t, e.ID, e.Lines[0].EntryID)

	got, err := p.GetEntry(context.Background(), rc, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestPost_DescuadradoNoEscribe(t *testing.T) {
	store := newStore(t)
	p := accounting.NewJournalPoster(store, store.Repos().Journal, store.Branches())
	in := adjustment("cierre-09", 250)
	in.Lines[1].Credit = decimal.RequireFromString("249.99")

	_, err := p.Post(context.Background(), rc, in)
	require.ErrorIs(t, err, domain.ErrUnbalancedEntry)

	entries, err := p.ListByReference(context.Background(), rc, "manual", "cierre-09")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPost_SoloAjustes(t *testing.T) {
	store := newStore(t)
	p := accounting.NewJournalPoster(store, store.Repos().Journal, store.Branches())
	in := adjustment("x", 1)
	in.EntryType = entity.JournalEntryTypeTransfer

	_, err := p.Post(context.Background(), rc, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPost_ReferenciaDuplicada(t *testing.T) {
	store := newStore(t)
	p := accounting.NewJournalPoster(store, store.Repos().Journal, store.Branches())
	_, err := p.Post(context.Background(), rc, adjustment("cierre-09", 10))
	require.NoError(t, err)

	_, err = p.Post(context.Background(), rc, adjustment("cierre-09", 10))
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestReverse(t *testing.T) {
	store := newStore(t)
	p := accounting.NewJournalPoster(store, store.Repos().Journal, store.Branches())
	orig, err := p.Post(context.Background(), rc, adjustment("cierre-09", 80))
	require.NoError(t, err)

	rev, err := p.Reverse(context.Background(), rc, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, rev.ReversalOf)
	assert.Equal(t, accounting.ReferenceTypeJournalEntry, rev.ReferenceType)
	assert.True(t, rev.Lines[0].Credit.Equal(dec(80)))
	assert.True(t, rev.Lines[1].Debit.Equal(dec(80)))

	stored, err := p.GetEntry(context.Background(), rc, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JournalEntryStatusReversed, stored.Status)

	_, err = p.Reverse(context.Background(), rc, orig.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = p.Reverse(context.Background(), rc, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// BalanceTracker
// ─────────────────────────────────────────────────────────────────────────────

func TestAccrueInTx_Aditivo(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)

	accrue(t, store, bt, "A", "B", "ref-1", 100)
	accrue(t, store, bt, "A", "B", "ref-1", 40)

	b, err := store.Repos().Balances.GetByReference(context.Background(), tenantID, "A", "B", "ref-1")
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(dec(140)))
}

func TestAccrueInTx_MontoNoPositivo(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)
	err := store.Run(context.Background(), func(tx repository.Tx) error {
		_, err := bt.AccrueInTx(context.Background(), tx, rc, accounting.AccrueInput{
			FromBranchID: "A", ToBranchID: "B", ReferenceID: "r", Amount: decimal.Zero,
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettle_FilasCompletasDelMasAntiguo(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)
	accrue(t, store, bt, "A", "B", "ref-1", 100)
	time.Sleep(time.Millisecond)
	accrue(t, store, bt, "A", "B", "ref-2", 50)
	time.Sleep(time.Millisecond)
	accrue(t, store, bt, "A", "B", "ref-3", 30)

	res, err := bt.Settle(context.Background(), rc, "A", "B", dec(170))
	require.NoError(t, err)
	require.Len(t, res.Settled, 2)
	assert.Equal(t, "ref-1", res.Settled[0].ReferenceID)
	assert.Equal(t, "ref-2", res.Settled[1].ReferenceID)
	assert.True(t, res.SettledAmount.Equal(dec(150)))
	assert.True(t, res.Remainder.Equal(dec(20)))

	summary, err := bt.Summary(context.Background(), rc, "A", "B")
	require.NoError(t, err)
	assert.True(t, summary.PendingOwed.Equal(dec(30)))
	assert.True(t, summary.SettledOwed.Equal(dec(150)))
	assert.Equal(t, 1, summary.PendingEntries)
}

func TestSettle_PagoMenorQueElPrimerSaldo(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)
	accrue(t, store, bt, "A", "B", "ref-1", 100)

	res, err := bt.Settle(context.Background(), rc, "A", "B", dec(99))
	require.NoError(t, err)
	assert.Empty(t, res.Settled)
	assert.True(t, res.Remainder.Equal(dec(99)))
}

func TestSettle_ReacumularVuelveAPendiente(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)
	accrue(t, store, bt, "A", "B", "ref-1", 100)
	_, err := bt.Settle(context.Background(), rc, "A", "B", dec(100))
	require.NoError(t, err)

	accrue(t, store, bt, "A", "B", "ref-1", 5)
	b, _ := store.Repos().Balances.GetByReference(context.Background(), tenantID, "A", "B", "ref-1")
	assert.Equal(t, entity.BalanceStatusPending, b.Status)
	assert.True(t, b.Amount.Equal(dec(105)))
}

func TestSummary_NetoEnAmbosSentidos(t *testing.T) {
	store := newStore(t)
	bt := accounting.NewBalanceTracker(store, store.Repos().Balances)
	accrue(t, store, bt, "A", "B", "ref-1", 300)
	accrue(t, store, bt, "B", "A", "ref-2", 450)

	s, err := bt.Summary(context.Background(), rc, "A", "B")
	require.NoError(t, err)
	assert.True(t, s.Net.Equal(dec(-150)))
	assert.Equal(t, 2, s.PendingEntries)

	_, err = bt.Summary(context.Background(), rc, "A", "A")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
