// Package memory implementa los repositorios del motor en memoria. Cada transacción trabaja
// sobre una copia del estado confirmado y la publica solo si fn termina sin error; las
// transacciones se serializan con un único mutex, así nunca hay esperas por bloqueo de fila.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

type stockKey struct {
	tenantID  string
	productID string
	branchID  string
}

type balanceKey struct {
	tenantID    string
	fromBranch  string
	toBranch    string
	referenceID string
}

type seqKey struct {
	tenantID string
	scope    string
	year     int
}

type state struct {
	branches  map[string]entity.Branch
	stock     map[stockKey]entity.StockLevel
	movements []entity.StockMovement
	transfers map[string]entity.Transfer
	sequences map[seqKey]int64
	journal   map[string]entity.JournalEntry
	balances  map[balanceKey]entity.InterBranchBalance
	payroll   map[string]entity.PayrollAllocation
	// orden de inserción para desempatar listados con la misma marca de tiempo
	order   map[string]int64
	counter int64
}

func newState() *state {
	return &state{
		branches:  map[string]entity.Branch{},
		stock:     map[stockKey]entity.StockLevel{},
		transfers: map[string]entity.Transfer{},
		sequences: map[seqKey]int64{},
		journal:   map[string]entity.JournalEntry{},
		balances:  map[balanceKey]entity.InterBranchBalance{},
		payroll:   map[string]entity.PayrollAllocation{},
		order:     map[string]int64{},
	}
}

// clone copia superficial: los valores guardados nunca se modifican en sitio, solo se reemplazan.
func (s *state) clone() *state {
	return &state{
		branches:  maps.Clone(s.branches),
		stock:     maps.Clone(s.stock),
		movements: slices.Clone(s.movements),
		transfers: maps.Clone(s.transfers),
		sequences: maps.Clone(s.sequences),
		journal:   maps.Clone(s.journal),
		balances:  maps.Clone(s.balances),
		payroll:   maps.Clone(s.payroll),
		order:     maps.Clone(s.order),
		counter:   s.counter,
	}
}

func (s *state) stamp(id string) {
	s.counter++
	s.order[id] = s.counter
}

// Store estado confirmado más el mutex que serializa transacciones.
type Store struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{committed: newState()}
}

// view resuelve sobre qué estado opera un repo: el de una tx en curso o el confirmado.
type view struct {
	tx    *state
	store *Store
}

func (v view) read() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.RLock()
	return v.store.committed, v.store.mu.RUnlock
}

// write fuera de tx: se serializa con las transacciones y escribe sobre el estado confirmado.
func (v view) write() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.txMu.Lock()
	v.store.mu.Lock()
	return v.store.committed, func() {
		v.store.mu.Unlock()
		v.store.txMu.Unlock()
	}
}

// Run implementa repository.TxRunner: fn ve un estado aislado que se publica solo si retorna nil.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(s.txRepos(view{tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *Store) txRepos(v view) repository.Tx {
	return repository.Tx{
		Stock:     &StockRepository{v: v},
		Movements: &StockMovementRepository{v: v},
		Transfers: &TransferRepository{v: v},
		Sequences: &SequenceRepository{v: v},
		Journal:   &JournalRepository{v: v},
		Balances:  &InterBranchBalanceRepository{v: v},
		Payroll:   &PayrollAllocationRepository{v: v},
	}
}

// Repos repositorios sobre el estado confirmado (lecturas fuera de tx).
func (s *Store) Repos() repository.Tx {
	return s.txRepos(view{store: s})
}

// Branches repositorio de sucursales sobre el estado confirmado.
func (s *Store) Branches() *BranchRepository {
	return &BranchRepository{v: view{store: s}}
}
