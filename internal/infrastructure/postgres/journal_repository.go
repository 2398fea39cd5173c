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

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo asientos contables sobre PostgreSQL (usable con pool o tx).
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const journalColumns = `
	id, tenant_id, branch_id, entry_date, entry_type, reference_type, reference_id, description,
	status, total_debit, total_credit, COALESCE(reversal_of, ''), created_by, created_at`

func scanEntry(row pgx.Row) (*entity.JournalEntry, error) {
	var e entity.JournalEntry
	err := row.Scan(
		&e.ID, &e.TenantID, &e.BranchID, &e.EntryDate, &e.EntryType, &e.ReferenceType, &e.ReferenceID,
		&e.Description, &e.Status, &e.TotalDebit, &e.TotalCredit, &e.ReversalOf, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create persiste cabecera y renglones del asiento.
func (r *JournalRepo) Create(ctx context.Context, e *entity.JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO journal_entries (id, tenant_id, branch_id, entry_date, entry_type, reference_type,
			reference_id, description, status, total_debit, total_credit, reversal_of, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.BranchID, e.EntryDate, e.EntryType, e.ReferenceType, e.ReferenceID,
		e.Description, e.Status, e.TotalDebit, e.TotalCredit, nullIfEmpty(e.ReversalOf), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: asiento %s %s/%s en sucursal %s", domain.ErrDuplicateReference,
				e.EntryType, e.ReferenceType, e.ReferenceID, e.BranchID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: débitos %s, créditos %s", domain.ErrUnbalancedEntry, e.TotalDebit, e.TotalCredit)
		}
		return fmt.Errorf("create journal entry: %w", err)
	}

	lineQuery := `
		INSERT INTO journal_lines (id, entry_id, line_no, account_code, description, debit, credit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range e.Lines {
		l := &e.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.EntryID = e.ID
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, e.ID, l.LineNo, l.AccountCode, l.Description, l.Debit, l.Credit); err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: renglón %d", domain.ErrUnbalancedEntry, l.LineNo)
			}
			return fmt.Errorf("create journal line %d: %w", l.LineNo, err)
		}
	}
	return nil
}

// GetByID obtiene un asiento con sus renglones. nil si no existe en el tenant.
func (r *JournalRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error) {
	return r.getOne(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate obtiene el asiento y bloquea la cabecera.
func (r *JournalRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.JournalEntry, error) {
	return r.getOne(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *JournalRepo) getOne(ctx context.Context, query, tenantID, id string) (*entity.JournalEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.JournalEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateStatus solo cambia el estado: montos y renglones son inmutables.
func (r *JournalRepo) UpdateStatus(ctx context.Context, tenantID, id string, status entity.JournalEntryStatus) error {
	cmd, err := r.q.Exec(ctx, `UPDATE journal_entries SET status = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("update journal entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByReference lista los asientos de un documento en orden de creación.
func (r *JournalRepo) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, tenantID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	out := make([]*entity.JournalEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachLines carga los renglones de todos los asientos en una sola consulta.
func (r *JournalRepo) attachLines(ctx context.Context, entries []*entity.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, len(entries))
	byID := make(map[string]*entity.JournalEntry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
	}
	query := `
		SELECT id, entry_id, line_no, account_code, description, debit, credit
		FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list journal lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.LineNo, &l.AccountCode, &l.Description, &l.Debit, &l.Credit); err != nil {
			return fmt.Errorf("scan journal line: %w", err)
		}
		if e, ok := byID[l.EntryID]; ok {
			e.Lines = append(e.Lines, l)
		}
	}
	return rows.Err()
}
