package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

var _ repository.PayrollAllocationRepository = (*PayrollAllocationRepo)(nil)

// PayrollAllocationRepo asignaciones de nómina sobre PostgreSQL (usable con pool o tx).
type PayrollAllocationRepo struct {
	q Querier
}

// NewPayrollAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPayrollAllocationRepository(q Querier) *PayrollAllocationRepo {
	return &PayrollAllocationRepo{q: q}
}

const payrollColumns = `
	id, tenant_id, employee_id, home_branch_id, visited_branch_id, period, allocated_amount,
	split_percentage, company_portion, branch_portion, status, COALESCE(journal_entry_id, ''), notes,
	created_by, COALESCE(approved_by, ''), created_at, updated_at, processed_at`

func scanAllocation(row pgx.Row) (*entity.PayrollAllocation, error) {
	var a entity.PayrollAllocation
	err := row.Scan(
		&a.ID, &a.TenantID, &a.EmployeeID, &a.HomeBranchID, &a.VisitedBranchID, &a.Period, &a.AllocatedAmount,
		&a.SplitPercentage, &a.CompanyPortion, &a.BranchPortion, &a.Status, &a.JournalEntryID, &a.Notes,
		&a.CreatedBy, &a.ApprovedBy, &a.CreatedAt, &a.UpdatedAt, &a.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste la asignación.
func (r *PayrollAllocationRepo) Create(ctx context.Context, a *entity.PayrollAllocation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payroll_allocations (id, tenant_id, employee_id, home_branch_id, visited_branch_id, period,
			allocated_amount, split_percentage, company_portion, branch_portion, status, journal_entry_id, notes,
			created_by, approved_by, created_at, updated_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.TenantID, a.EmployeeID, a.HomeBranchID, a.VisitedBranchID, a.Period,
		a.AllocatedAmount, a.SplitPercentage, a.CompanyPortion, a.BranchPortion, a.Status,
		nullIfEmpty(a.JournalEntryID), a.Notes, a.CreatedBy, nullIfEmpty(a.ApprovedBy),
		a.CreatedAt, a.UpdatedAt, a.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: asignación de %s en %s para %s", domain.ErrDuplicateReference,
				a.EmployeeID, a.VisitedBranchID, a.Period)
		}
		return fmt.Errorf("create payroll allocation: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación. nil si no existe en el tenant.
func (r *PayrollAllocationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error) {
	return r.getOne(ctx, `SELECT `+payrollColumns+` FROM payroll_allocations WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate obtiene la asignación y bloquea la fila.
func (r *PayrollAllocationRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error) {
	return r.getOne(ctx, `SELECT `+payrollColumns+` FROM payroll_allocations WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PayrollAllocationRepo) getOne(ctx context.Context, query, tenantID, id string) (*entity.PayrollAllocation, error) {
	a, err := scanAllocation(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payroll allocation: %w", err)
	}
	return a, nil
}

// Update guarda estado, aprobación y vínculo con el asiento. Montos y reparto no cambian.
func (r *PayrollAllocationRepo) Update(ctx context.Context, a *entity.PayrollAllocation) error {
	query := `
		UPDATE payroll_allocations SET status = $3, journal_entry_id = $4, approved_by = $5,
			updated_at = $6, processed_at = $7
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		a.TenantID, a.ID, a.Status, nullIfEmpty(a.JournalEntryID), nullIfEmpty(a.ApprovedBy), a.UpdatedAt, a.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: asignación de %s en %s para %s", domain.ErrDuplicateReference,
				a.EmployeeID, a.VisitedBranchID, a.Period)
		}
		return fmt.Errorf("update payroll allocation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
