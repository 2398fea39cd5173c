package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// StockRepository implementa repository.StockRepository.
type StockRepository struct{ v view }

func (r *StockRepository) Get(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error) {
	st, release := r.v.read()
	defer release()
	return stockOrZero(st, tenantID, productID, branchID), nil
}

// GetForUpdate en memoria la tx ya es exclusiva; equivale a Get.
func (r *StockRepository) GetForUpdate(ctx context.Context, tenantID, productID, branchID string) (*entity.StockLevel, error) {
	return r.Get(ctx, tenantID, productID, branchID)
}

func (r *StockRepository) LockInOrder(ctx context.Context, tenantID string, keys []entity.StockKey) error {
	st, release := r.v.write()
	defer release()
	now := time.Now()
	for _, k := range keys {
		key := stockKey{tenantID, k.ProductID, k.BranchID}
		if _, ok := st.stock[key]; !ok {
			st.stock[key] = entity.StockLevel{TenantID: tenantID, ProductID: k.ProductID, BranchID: k.BranchID, Quantity: decimal.Zero, UpdatedAt: now}
		}
	}
	return nil
}

func (r *StockRepository) SetQuantity(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return fmt.Errorf("%w: cantidad negativa para %s en %s", domain.ErrInsufficientStock, productID, branchID)
	}
	st, release := r.v.write()
	defer release()
	st.stock[stockKey{tenantID, productID, branchID}] = entity.StockLevel{
		TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: qty, UpdatedAt: time.Now(),
	}
	return nil
}

func (r *StockRepository) Increment(ctx context.Context, tenantID, productID, branchID string, qty decimal.Decimal) (decimal.Decimal, error) {
	st, release := r.v.write()
	defer release()
	key := stockKey{tenantID, productID, branchID}
	cur := st.stock[key].Quantity
	next := cur.Add(qty)
	if next.IsNegative() {
		return cur, fmt.Errorf("%w: cantidad negativa para %s en %s", domain.ErrInsufficientStock, productID, branchID)
	}
	st.stock[key] = entity.StockLevel{TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: next, UpdatedAt: time.Now()}
	return next, nil
}

func (r *StockRepository) ListByBranch(ctx context.Context, tenantID, branchID string) ([]*entity.StockLevel, error) {
	st, release := r.v.read()
	defer release()
	out := make([]*entity.StockLevel, 0)
	for k, s := range st.stock {
		if k.tenantID == tenantID && k.branchID == branchID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func stockOrZero(st *state, tenantID, productID, branchID string) *entity.StockLevel {
	if s, ok := st.stock[stockKey{tenantID, productID, branchID}]; ok {
		return &s
	}
	return &entity.StockLevel{TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}
}

// StockMovementRepository implementa repository.StockMovementRepository (append-only).
type StockMovementRepository struct{ v view }

func (r *StockMovementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	st, release := r.v.write()
	defer release()
	st.movements = append(st.movements, *m)
	return nil
}

func (r *StockMovementRepository) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	st, release := r.v.read()
	defer release()
	out := make([]*entity.StockMovement, 0)
	for _, m := range st.movements {
		if m.TenantID == tenantID && m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}
