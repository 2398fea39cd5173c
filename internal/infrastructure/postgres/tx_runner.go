package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera por cada
// bloqueo de fila; al vencer, la operación falla con ErrLockTimeout y puede reintentarse.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		ms := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(Repositories(tx)); err != nil {
		return classifyError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Repositories agrupa los repositorios sobre q. Con el pool se obtiene la vista confirmada
// que usan las consultas fuera de transacción.
func Repositories(q Querier) repository.Tx {
	return repository.Tx{
		Stock:     NewStockRepository(q),
		Movements: NewStockMovementRepository(q),
		Transfers: NewTransferRepository(q),
		Sequences: NewSequenceRepository(q),
		Journal:   NewJournalRepository(q),
		Balances:  NewInterBranchBalanceRepository(q),
		Payroll:   NewPayrollAllocationRepository(q),
	}
}
