package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// TransferRepository implementa repository.TransferRepository.
type TransferRepository struct{ v view }

func (r *TransferRepository) Create(ctx context.Context, t *entity.Transfer) error {
	st, release := r.v.write()
	defer release()
	if t.ReferenceID != "" {
		for _, o := range st.transfers {
			if o.TenantID == t.TenantID && o.Status != entity.TransferStatusCancelled &&
				o.ReferenceType == t.ReferenceType && o.ReferenceID == t.ReferenceID &&
				o.FromBranchID == t.FromBranchID && o.ToBranchID == t.ToBranchID {
				return domain.ErrDuplicateReference
			}
		}
	}
	for _, o := range st.transfers {
		if o.TenantID == t.TenantID && o.Number == t.Number {
			return domain.ErrDuplicateReference
		}
	}
	cp := *t
	cp.Items = slices.Clone(t.Items)
	st.transfers[t.ID] = cp
	st.stamp(t.ID)
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	st, release := r.v.read()
	defer release()
	t, ok := st.transfers[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	t.Items = slices.Clone(t.Items)
	return &t, nil
}

func (r *TransferRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, tenantID, id)
}

// UpdateStatus guarda estado y marcas de tiempo; los ítems no cambian.
func (r *TransferRepository) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	st, release := r.v.write()
	defer release()
	cur, ok := st.transfers[t.ID]
	if !ok || cur.TenantID != t.TenantID {
		return domain.ErrNotFound
	}
	cur.Status = t.Status
	cur.UpdatedAt = t.UpdatedAt
	cur.ApprovedBy = t.ApprovedBy
	cur.ApprovedAt = t.ApprovedAt
	cur.ShippedAt = t.ShippedAt
	cur.ReceivedAt = t.ReceivedAt
	cur.CancelledAt = t.CancelledAt
	st.transfers[t.ID] = cur
	return nil
}

func (r *TransferRepository) List(ctx context.Context, tenantID string, f repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	st, release := r.v.read()
	defer release()
	out := make([]*entity.Transfer, 0)
	for _, t := range st.transfers {
		if t.TenantID != tenantID || !matches(t, f) {
			continue
		}
		t := t
		t.Items = slices.Clone(t.Items)
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return st.order[out[i].ID] > st.order[out[j].ID]
	})
	if offset >= len(out) {
		return []*entity.Transfer{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func matches(t entity.Transfer, f repository.TransferFilter) bool {
	switch {
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.FromBranchID != "" && t.FromBranchID != f.FromBranchID:
		return false
	case f.ToBranchID != "" && t.ToBranchID != f.ToBranchID:
		return false
	case f.ReferenceType != "" && t.ReferenceType != f.ReferenceType:
		return false
	case f.ReferenceID != "" && t.ReferenceID != f.ReferenceID:
		return false
	}
	return true
}

// SequenceRepository implementa repository.SequenceRepository.
type SequenceRepository struct{ v view }

func (r *SequenceRepository) Next(ctx context.Context, tenantID, scope string, year int) (int64, error) {
	st, release := r.v.write()
	defer release()
	k := seqKey{tenantID, scope, year}
	st.sequences[k]++
	return st.sequences[k], nil
}
