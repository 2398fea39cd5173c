package accounting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// ReferenceTypePayrollAllocation referencia de asientos y saldos originados en nómina.
const ReferenceTypePayrollAllocation = "payroll_allocation"

// PayrollAllocator reparte el costo de un empleado entre su sucursal base y la visitada.
// Comparte el JournalPoster y el BalanceTracker con los traslados.
type PayrollAllocator struct {
	payroll  repository.PayrollAllocationRepository
	branches repository.BranchRepository
	poster   *JournalPoster
	balances *BalanceTracker
	accounts acct.Accounts
	now      func() time.Time
}

// NewPayrollAllocator construye el asignador.
func NewPayrollAllocator(
	payroll repository.PayrollAllocationRepository,
	branches repository.BranchRepository,
	poster *JournalPoster,
	balances *BalanceTracker,
	accounts acct.Accounts,
) *PayrollAllocator {
	return &PayrollAllocator{
		payroll:  payroll,
		branches: branches,
		poster:   poster,
		balances: balances,
		accounts: accounts,
		now:      time.Now,
	}
}

// AllocationRequest solicitud de asignación de nómina. HomeBranchID lo define el caller.
type AllocationRequest struct {
	EmployeeID      string
	HomeBranchID    string
	VisitedBranchID string
	Period          string // YYYY-MM
	Amount          decimal.Decimal
	SplitPercentage decimal.Decimal
	Notes           string
	AutoApprove     bool
}

// Prepare valida la solicitud y calcula las porciones. No persiste nada.
func (p *PayrollAllocator) Prepare(ctx context.Context, rc domain.RequestContext, req AllocationRequest) (*entity.PayrollAllocation, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.EmployeeID) == "" {
		return nil, fmt.Errorf("%w: empleado requerido", domain.ErrInvalidInput)
	}
	if req.HomeBranchID == req.VisitedBranchID {
		return nil, fmt.Errorf("%w: la sucursal visitada debe ser distinta de la sucursal base", domain.ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01", req.Period); err != nil {
		return nil, fmt.Errorf("%w: periodo %q, se espera YYYY-MM", domain.ErrInvalidInput, req.Period)
	}
	company, branch, err := acct.SplitPayroll(req.Amount, req.SplitPercentage)
	if err != nil {
		return nil, err
	}
	if err := checkBranch(ctx, p.branches, rc, req.HomeBranchID); err != nil {
		return nil, err
	}
	if err := checkBranch(ctx, p.branches, rc, req.VisitedBranchID); err != nil {
		return nil, err
	}

	now := p.now()
	return &entity.PayrollAllocation{
		ID:              uuid.New().String(),
		TenantID:        rc.TenantID,
		EmployeeID:      req.EmployeeID,
		HomeBranchID:    req.HomeBranchID,
		VisitedBranchID: req.VisitedBranchID,
		Period:          req.Period,
		AllocatedAmount: req.Amount,
		SplitPercentage: req.SplitPercentage,
		CompanyPortion:  company,
		BranchPortion:   branch,
		Status:          entity.PayrollStatusPending,
		Notes:           req.Notes,
		CreatedBy:       rc.ActorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// PostInTx contabiliza una asignación aprobada en la sucursal base, acumula la porción de la
// sucursal visitada (base → visitada) y la deja en processed. Corre en la tx del caller.
func (p *PayrollAllocator) PostInTx(ctx context.Context, tx repository.Tx, rc domain.RequestContext, a *entity.PayrollAllocation) (*entity.JournalEntry, *entity.InterBranchBalance, error) {
	if a.Status != entity.PayrollStatusApproved {
		return nil, nil, fmt.Errorf("%w: asignación en estado %s, se requiere approved", domain.ErrInvalidStateTransition, a.Status)
	}
	entry, err := p.poster.PostInTx(ctx, tx, rc, PostInput{
		BranchID:      a.HomeBranchID,
		EntryType:     entity.JournalEntryTypePayrollAllocation,
		ReferenceType: ReferenceTypePayrollAllocation,
		ReferenceID:   a.ID,
		Description:   fmt.Sprintf("Nómina %s empleado %s", a.Period, a.EmployeeID),
		Lines:         acct.PayrollLines(p.accounts, a.CompanyPortion, a.BranchPortion),
	})
	if err != nil {
		return nil, nil, err
	}

	var balance *entity.InterBranchBalance
	if a.BranchPortion.IsPositive() {
		balance, err = p.balances.AccrueInTx(ctx, tx, rc, AccrueInput{
			FromBranchID:  a.HomeBranchID,
			ToBranchID:    a.VisitedBranchID,
			ReferenceType: ReferenceTypePayrollAllocation,
			ReferenceID:   a.ID,
			Amount:        a.BranchPortion,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	now := p.now()
	a.Status = entity.PayrollStatusProcessed
	a.JournalEntryID = entry.ID
	a.ProcessedAt = &now
	a.UpdatedAt = now
	return entry, balance, nil
}

// Approve pending → approved sobre la asignación bloqueada.
func (p *PayrollAllocator) Approve(rc domain.RequestContext, a *entity.PayrollAllocation) error {
	if a.Status != entity.PayrollStatusPending {
		return fmt.Errorf("%w: asignación en estado %s", domain.ErrInvalidStateTransition, a.Status)
	}
	a.Status = entity.PayrollStatusApproved
	a.ApprovedBy = rc.ActorID
	a.UpdatedAt = p.now()
	return nil
}

// Reject pending → rejected. Sin efecto contable.
func (p *PayrollAllocator) Reject(rc domain.RequestContext, a *entity.PayrollAllocation) error {
	if a.Status != entity.PayrollStatusPending {
		return fmt.Errorf("%w: asignación en estado %s", domain.ErrInvalidStateTransition, a.Status)
	}
	a.Status = entity.PayrollStatusRejected
	a.ApprovedBy = rc.ActorID
	a.UpdatedAt = p.now()
	return nil
}

// GetAllocation asignación del tenant.
func (p *PayrollAllocator) GetAllocation(ctx context.Context, rc domain.RequestContext, id string) (*entity.PayrollAllocation, error) {
	a, err := p.payroll.GetByID(ctx, rc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
