package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// JournalRepository implementa repository.JournalRepository.
type JournalRepository struct{ v view }

func (r *JournalRepository) Create(ctx context.Context, e *entity.JournalEntry) error {
	st, release := r.v.write()
	defer release()
	if e.Status == entity.JournalEntryStatusPosted {
		for _, o := range st.journal {
			if o.TenantID == e.TenantID && o.Status == entity.JournalEntryStatusPosted &&
				o.BranchID == e.BranchID && o.EntryType == e.EntryType &&
				o.ReferenceType == e.ReferenceType && o.ReferenceID == e.ReferenceID {
				return domain.ErrDuplicateReference
			}
		}
	}
	cp := *e
	cp.Lines = slices.Clone(e.Lines)
	st.journal[e.ID] = cp
	st.stamp(e.ID)
	return nil
}

func (r *JournalRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error) {
	st, release := r.v.read()
	defer release()
	e, ok := st.journal[id]
	if !ok || e.TenantID != tenantID {
		return nil, nil
	}
	e.Lines = slices.Clone(e.Lines)
	return &e, nil
}

func (r *JournalRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *JournalRepository) UpdateStatus(ctx context.Context, tenantID, id string, status entity.JournalEntryStatus) error {
	st, release := r.v.write()
	defer release()
	e, ok := st.journal[id]
	if !ok || e.TenantID != tenantID {
		return domain.ErrNotFound
	}
	e.Status = status
	st.journal[id] = e
	return nil
}

func (r *JournalRepository) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.JournalEntry, error) {
	st, release := r.v.read()
	defer release()
	out := make([]*entity.JournalEntry, 0)
	for _, e := range st.journal {
		if e.TenantID == tenantID && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			e := e
			e.Lines = slices.Clone(e.Lines)
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return st.order[out[i].ID] < st.order[out[j].ID] })
	return out, nil
}
