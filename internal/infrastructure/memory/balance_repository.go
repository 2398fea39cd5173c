package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// InterBranchBalanceRepository implementa repository.InterBranchBalanceRepository.
type InterBranchBalanceRepository struct{ v view }

// Accrue suma b.Amount al saldo existente de la clave natural o lo crea.
func (r *InterBranchBalanceRepository) Accrue(ctx context.Context, b *entity.InterBranchBalance) (*entity.InterBranchBalance, error) {
	st, release := r.v.write()
	defer release()
	k := balanceKey{b.TenantID, b.FromBranchID, b.ToBranchID, b.ReferenceID}
	cur, ok := st.balances[k]
	if !ok {
		cur = *b
		cur.Status = entity.BalanceStatusPending
		st.stamp(cur.ID)
	} else {
		cur.Amount = cur.Amount.Add(b.Amount)
		cur.Status = entity.BalanceStatusPending
		cur.SettledAt = nil
		cur.UpdatedAt = b.UpdatedAt
	}
	st.balances[k] = cur
	out := cur
	return &out, nil
}

func (r *InterBranchBalanceRepository) ListPendingForUpdate(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error) {
	st, release := r.v.read()
	defer release()
	out := pairRows(st, tenantID, fromBranchID, toBranchID, entity.BalanceStatusPending)
	return out, nil
}

func (r *InterBranchBalanceRepository) MarkSettled(ctx context.Context, tenantID string, ids []string, at time.Time) error {
	st, release := r.v.write()
	defer release()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	marked := 0
	for k, b := range st.balances {
		if _, ok := want[b.ID]; !ok || b.TenantID != tenantID || b.Status != entity.BalanceStatusPending {
			continue
		}
		b.Status = entity.BalanceStatusSettled
		b.SettledAt = &at
		b.UpdatedAt = at
		st.balances[k] = b
		marked++
	}
	if marked != len(ids) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InterBranchBalanceRepository) ListByPair(ctx context.Context, tenantID, fromBranchID, toBranchID string) ([]*entity.InterBranchBalance, error) {
	st, release := r.v.read()
	defer release()
	return pairRows(st, tenantID, fromBranchID, toBranchID, ""), nil
}

func (r *InterBranchBalanceRepository) GetByReference(ctx context.Context, tenantID, fromBranchID, toBranchID, referenceID string) (*entity.InterBranchBalance, error) {
	st, release := r.v.read()
	defer release()
	b, ok := st.balances[balanceKey{tenantID, fromBranchID, toBranchID, referenceID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *InterBranchBalanceRepository) Totals(ctx context.Context, tenantID, fromBranchID, toBranchID string) (decimal.Decimal, decimal.Decimal, int, error) {
	st, release := r.v.read()
	defer release()
	pending, settled, count := decimal.Zero, decimal.Zero, 0
	for _, b := range pairRows(st, tenantID, fromBranchID, toBranchID, "") {
		if b.Status == entity.BalanceStatusPending {
			pending = pending.Add(b.Amount)
			count++
		} else {
			settled = settled.Add(b.Amount)
		}
	}
	return pending, settled, count, nil
}

// pairRows saldos del par ordenados del más antiguo al más nuevo. status vacío = todos.
func pairRows(st *state, tenantID, from, to, status string) []*entity.InterBranchBalance {
	out := make([]*entity.InterBranchBalance, 0)
	for k, b := range st.balances {
		if k.tenantID != tenantID || k.fromBranch != from || k.toBranch != to {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return st.order[out[i].ID] < st.order[out[j].ID]
	})
	return out
}
