package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// BranchRepository implementa repository.BranchRepository.
type BranchRepository struct{ v view }

func (r *BranchRepository) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	st, release := r.v.read()
	defer release()
	b, ok := st.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BranchRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Branch, error) {
	st, release := r.v.read()
	defer release()
	out := make([]*entity.Branch, 0)
	for _, b := range st.branches {
		if b.TenantID == tenantID {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if offset >= len(out) {
		return []*entity.Branch{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// Save alta o reemplazo de una sucursal (semillas y tests).
func (r *BranchRepository) Save(b *entity.Branch) {
	st, release := r.v.write()
	defer release()
	st.branches[b.ID] = *b
}
