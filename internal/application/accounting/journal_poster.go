package accounting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/interbranch-api/internal/domain"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
)

// ReferenceTypeJournalEntry referencia de los asientos de reverso.
const ReferenceTypeJournalEntry = "journal_entry"

// JournalPoster contabiliza asientos de partida doble.
type JournalPoster struct {
	txRunner repository.TxRunner
	journal  repository.JournalRepository
	branches repository.BranchRepository
	now      func() time.Time
}

// NewJournalPoster construye el contabilizador. journal es el repo de lectura fuera de tx.
func NewJournalPoster(txRunner repository.TxRunner, journal repository.JournalRepository, branches repository.BranchRepository) *JournalPoster {
	return &JournalPoster{txRunner: txRunner, journal: journal, branches: branches, now: time.Now}
}

// PostInput datos de un asiento.
type PostInput struct {
	BranchID      string
	EntryType     entity.JournalEntryType
	ReferenceType string
	ReferenceID   string
	Description   string
	EntryDate     time.Time // cero = ahora
	ReversalOf    string
	Lines         []entity.JournalLine
}

// PostInTx valida los renglones antes de cualquier escritura y persiste el asiento en estado
// posted usando los repos de la transacción del caller.
func (p *JournalPoster) PostInTx(ctx context.Context, tx repository.Tx, rc domain.RequestContext, in PostInput) (*entity.JournalEntry, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if in.BranchID == "" || in.EntryType == "" {
		return nil, fmt.Errorf("%w: sucursal y tipo de asiento requeridos", domain.ErrInvalidInput)
	}
	if in.ReferenceType == "" || in.ReferenceID == "" {
		return nil, fmt.Errorf("%w: el asiento requiere referencia", domain.ErrInvalidInput)
	}
	debit, credit, err := acct.ValidateLines(in.Lines)
	if err != nil {
		return nil, err
	}

	now := p.now()
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}
	e := &entity.JournalEntry{
		ID:            uuid.New().String(),
		TenantID:      rc.TenantID,
		BranchID:      in.BranchID,
		EntryDate:     entryDate,
		EntryType:     in.EntryType,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Description:   in.Description,
		Status:        entity.JournalEntryStatusPosted,
		TotalDebit:    debit,
		TotalCredit:   credit,
		ReversalOf:    in.ReversalOf,
		CreatedBy:     rc.ActorID,
		CreatedAt:     now,
		Lines:         make([]entity.JournalLine, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		l.ID = uuid.New().String()
		l.EntryID = e.ID
		l.LineNo = i + 1
		e.Lines = append(e.Lines, l)
	}
	if err := tx.Journal.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Post contabiliza un asiento de ajuste manual en su propia transacción.
func (p *JournalPoster) Post(ctx context.Context, rc domain.RequestContext, in PostInput) (*entity.JournalEntry, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if in.EntryType == "" {
		in.EntryType = entity.JournalEntryTypeAdjustment
	}
	if in.EntryType != entity.JournalEntryTypeAdjustment {
		return nil, fmt.Errorf("%w: solo se admiten asientos de ajuste manuales", domain.ErrInvalidInput)
	}
	if err := p.checkBranch(ctx, rc, in.BranchID); err != nil {
		return nil, err
	}
	var out *entity.JournalEntry
	err := p.txRunner.Run(ctx, func(tx repository.Tx) error {
		e, err := p.PostInTx(ctx, tx, rc, in)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reverse posted → reversed: contabiliza un ajuste espejo que referencia al original.
// Los saldos entre sucursales no se tocan.
func (p *JournalPoster) Reverse(ctx context.Context, rc domain.RequestContext, entryID string) (*entity.JournalEntry, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	var out *entity.JournalEntry
	err := p.txRunner.Run(ctx, func(tx repository.Tx) error {
		orig, err := tx.Journal.GetForUpdate(ctx, rc.TenantID, entryID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Status != entity.JournalEntryStatusPosted {
			return fmt.Errorf("%w: asiento en estado %s", domain.ErrInvalidStateTransition, orig.Status)
		}
		rev, err := p.PostInTx(ctx, tx, rc, PostInput{
			BranchID:      orig.BranchID,
			EntryType:     entity.JournalEntryTypeAdjustment,
			ReferenceType: ReferenceTypeJournalEntry,
			ReferenceID:   orig.ID,
			Description:   strings.TrimSpace("Reverso " + orig.Description),
			ReversalOf:    orig.ID,
			Lines:         acct.ReversalLines(orig.Lines),
		})
		if err != nil {
			return err
		}
		if err := tx.Journal.UpdateStatus(ctx, rc.TenantID, orig.ID, entity.JournalEntryStatusReversed); err != nil {
			return err
		}
		out = rev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntry asiento con renglones.
func (p *JournalPoster) GetEntry(ctx context.Context, rc domain.RequestContext, id string) (*entity.JournalEntry, error) {
	e, err := p.journal.GetByID(ctx, rc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

// ListByReference asientos de una referencia (ambas sucursales de un traslado, reversos, etc.).
func (p *JournalPoster) ListByReference(ctx context.Context, rc domain.RequestContext, referenceType, referenceID string) ([]*entity.JournalEntry, error) {
	if referenceType == "" || referenceID == "" {
		return nil, fmt.Errorf("%w: reference_type y reference_id requeridos", domain.ErrInvalidInput)
	}
	return p.journal.ListByReference(ctx, rc.TenantID, referenceType, referenceID)
}

func (p *JournalPoster) checkBranch(ctx context.Context, rc domain.RequestContext, id string) error {
	return checkBranch(ctx, p.branches, rc, id)
}

// checkBranch exige que la sucursal exista, pertenezca al tenant y esté activa.
func checkBranch(ctx context.Context, branches repository.BranchRepository, rc domain.RequestContext, id string) error {
	if id == "" {
		return fmt.Errorf("%w: sucursal requerida", domain.ErrInvalidInput)
	}
	b, err := branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, id)
	}
	if b.TenantID != rc.TenantID {
		return domain.ErrForbidden
	}
	if !b.Active {
		return fmt.Errorf("%w: sucursal %s inactiva", domain.ErrInvalidInput, id)
	}
	return nil
}
