package memory

import (
	"context"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// PayrollAllocationRepository implementa repository.PayrollAllocationRepository.
type PayrollAllocationRepository struct{ v view }

func (r *PayrollAllocationRepository) Create(ctx context.Context, a *entity.PayrollAllocation) error {
	st, release := r.v.write()
	defer release()
	for _, o := range st.payroll {
		if o.TenantID == a.TenantID && o.Status != entity.PayrollStatusRejected &&
			o.EmployeeID == a.EmployeeID && o.VisitedBranchID == a.VisitedBranchID && o.Period == a.Period {
			return domain.ErrDuplicateReference
		}
	}
	st.payroll[a.ID] = *a
	st.stamp(a.ID)
	return nil
}

func (r *PayrollAllocationRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error) {
	st, release := r.v.read()
	defer release()
	a, ok := st.payroll[id]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	return &a, nil
}

func (r *PayrollAllocationRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PayrollAllocation, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *PayrollAllocationRepository) Update(ctx context.Context, a *entity.PayrollAllocation) error {
	st, release := r.v.write()
	defer release()
	cur, ok := st.payroll[a.ID]
	if !ok || cur.TenantID != a.TenantID {
		return domain.ErrNotFound
	}
	st.payroll[a.ID] = *a
	return nil
}
