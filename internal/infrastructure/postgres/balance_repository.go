package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.InterBranchBalanceRepository = (*InterBranchBalanceRepo)(nil)

// InterBranchBalanceRepo saldos entre sucursales sobre PostgreSQL (usable con pool o tx).
type InterBranchBalanceRepo struct {
	q Querier
}

// NewInterBranchBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInterBranchBalanceRepository(q Querier) *InterBranchBalanceRepo {
	return &InterBranchBalanceRepo{q: q}
}

const balanceColumns = `
	id, tenant_id, from_branch_id, to_branch_id, reference_type, reference_id, amount, status,
	created_at, updated_at, settled_at`

func scanBalance(row pgx.Row) (*entity.InterBranchBalance, error) {
	var b entity.InterBranchBalance
	err := row.Scan(
		&b.ID, &b.TenantID, &b.FromBranchID, &b.ToBranchID, &b.ReferenceType, &b.ReferenceID,
		&b.Amount, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Accrue upsert aditivo: dos acumulaciones concurrentes de la misma clave se suman,
// nunca se pisan. Una referencia liquidada que vuelve a acumular queda pendiente otra vez.
func (r *InterBranchBalanceRepo) Accrue(ctx context.Context, b *entity.InterBranchBalance) (*entity.InterBranchBalance, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO interbranch_balances (id, tenant_id, from_branch_id, to_branch_id, reference_type,
			reference_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, $8)
		ON CONFLICT (tenant_id, from_branch_id, to_branch_id, reference_id)
		DO UPDATE SET amount = interbranch_balances.amount + EXCLUDED.amount,
			status = 'pending', settled_at = NULL, updated_at = EXCLUDED.updated_at
		RETURNING ` + balanceColumns
	out, err := scanBalance(r.q.QueryRow(ctx, query,
		b.ID, b.TenantID, b.FromBranchID, b.ToBranchID, b.ReferenceType, b.ReferenceID, b.Amount, b.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("accrue balance: %w", err)
	}
	return out, nil
}

// ListPendingForUpdate bloquea los saldos pendientes del par, del más antiguo al más nuevo.
func (r *InterBranchBalanceRepo) ListPendingForUpdate(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM interbranch_balances
		WHERE tenant_id = $1 AND from_branch_id = $2 AND to_branch_id = $3 AND status = 'pending'
		ORDER BY created_at, seq
		FOR UPDATE`
	return r.list(ctx, query, tenantID, fromBranchID, toBranchID)
}

// MarkSettled marca como liquidados los saldos pendientes indicados.
func (r *InterBranchBalanceRepo) MarkSettled(ctx context.Context, tenantID string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE interbranch_balances SET status = 'settled', settled_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = ANY($2) AND status = 'pending'`
	cmd, err := r.q.Exec(ctx, query, tenantID, ids, at)
	if err != nil {
		return fmt.Errorf("settle balances: %w", err)
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%w: %d de %d saldos pendientes", domain.ErrNotFound, cmd.RowsAffected(), len(ids))
	}
	return nil
}

// ListByPair lista todos los saldos from → to, del más antiguo al más nuevo.
func (r *InterBranchBalanceRepo) ListByPair(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM interbranch_balances
		WHERE tenant_id = $1 AND from_branch_id = $2 AND to_branch_id = $3
		ORDER BY created_at, seq`
	return r.list(ctx, query, tenantID, fromBranchID, toBranchID)
}

func (r *InterBranchBalanceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InterBranchBalance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.InterBranchBalance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByReference obtiene el saldo de una referencia. nil si no existe.
func (r *InterBranchBalanceRepo) GetByReference(ctx context.Context, tenantID, fromBranchID, toBranchID, referenceID string) (*entity.InterBranchBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM interbranch_balances
		WHERE tenant_id = $1 AND from_branch_id = $2 AND to_branch_id = $3 AND reference_id = $4`
	b, err := scanBalance(r.q.QueryRow(ctx, query, tenantID, fromBranchID, toBranchID, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// Totals suma pendiente y liquidado de from → to.
func (r *InterBranchBalanceRepo) Totals(ctx context.Context, tenantID, fromBranchID, toBranchID string) (decimal.Decimal, decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'settled'), 0),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM interbranch_balances
		WHERE tenant_id = $1 AND from_branch_id = $2 AND to_branch_id = $3`
	var pending, settled decimal.Decimal
	var count int
	if err := r.q.QueryRow(ctx, query, tenantID, fromBranchID, toBranchID).Scan(&pending, &settled, &count); err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("balance totals: %w", err)
	}
	return pending, settled, count, nil
}
