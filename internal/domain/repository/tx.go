package repository

import "context"

// Tx repositorios atados a una misma transacción de BD.
type Tx struct {
	Stock     StockRepository
	Movements StockMovementRepository
	Transfers TransferRepository
	Sequences SequenceRepository
	Journal   JournalRepository
	Balances  InterBranchBalanceRepository
	Payroll   PayrollAllocationRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en
// cualquier otro caso. Es la frontera de atomicidad del motor de liquidación.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
