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

var (
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// TransferRepo traslados e ítems sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `
	id, tenant_id, number, from_branch_id, to_branch_id, type, status, priority,
	COALESCE(reference_type, ''), COALESCE(reference_id, ''), notes, created_by, created_at, updated_at,
	COALESCE(approved_by, ''), approved_at, shipped_at, received_at, cancelled_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Number, &t.FromBranchID, &t.ToBranchID, &t.Type, &t.Status, &t.Priority,
		&t.ReferenceType, &t.ReferenceID, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.ApprovedBy, &t.ApprovedAt, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste cabecera e ítems del traslado.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transfers (id, tenant_id, number, from_branch_id, to_branch_id, type, status, priority,
			reference_type, reference_id, notes, created_by, created_at, updated_at,
			approved_by, approved_at, shipped_at, received_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.Number, t.FromBranchID, t.ToBranchID, t.Type, t.Status, t.Priority,
		nullIfEmpty(t.ReferenceType), nullIfEmpty(t.ReferenceID), t.Notes, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
		nullIfEmpty(t.ApprovedBy), t.ApprovedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s (%s/%s)", domain.ErrDuplicateReference, t.Number, t.ReferenceType, t.ReferenceID)
		}
		return fmt.Errorf("create transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO transfer_items (id, transfer_id, line_no, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = t.ID
		if _, err := r.q.Exec(ctx, itemQuery, it.ID, t.ID, it.LineNo, it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return fmt.Errorf("create transfer item %d: %w", it.LineNo, err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus ítems. nil si no existe en el tenant.
func (r *TransferRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE tenant_id = $1 AND id = $2`
	return r.getOne(ctx, query, tenantID, id)
}

// GetForUpdate obtiene el traslado y bloquea la cabecera (SELECT FOR UPDATE).
func (r *TransferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	return r.getOne(ctx, query, tenantID, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query, tenantID, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	items, err := r.items(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *TransferRepo) items(ctx context.Context, transferID string) ([]entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, line_no, product_id, quantity, unit_price
		FROM transfer_items WHERE transfer_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	out := make([]entity.TransferItem, 0)
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.LineNo, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus guarda estado y marcas de tiempo; los ítems no se tocan.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $3, updated_at = $4, approved_by = $5, approved_at = $6,
			shipped_at = $7, received_at = $8, cancelled_at = $9
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		t.TenantID, t.ID, t.Status, t.UpdatedAt, nullIfEmpty(t.ApprovedBy), t.ApprovedAt,
		t.ShippedAt, t.ReceivedAt, t.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista traslados del tenant, del más reciente al más antiguo.
// Solo los campos de TransferFilter llegan al WHERE y siempre como parámetros.
func (r *TransferRepo) List(ctx context.Context, tenantID string, f repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	add := func(column string, value any) {
		query += fmt.Sprintf(" AND %s = $%d", column, pos)
		args = append(args, value)
		pos++
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.FromBranchID != "" {
		add("from_branch_id", f.FromBranchID)
	}
	if f.ToBranchID != "" {
		add("to_branch_id", f.ToBranchID)
	}
	if f.ReferenceType != "" {
		add("reference_type", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		add("reference_id", f.ReferenceID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	out := make([]*entity.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range out {
		items, err := r.items(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Items = items
	}
	return out, nil
}

// SequenceRepo numeradores por (tenant, scope, año).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador en una sola sentencia y devuelve el nuevo valor.
func (r *SequenceRepo) Next(ctx context.Context, tenantID, scope string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (tenant_id, scope, year, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, scope, year)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var next int64
	if err := r.q.QueryRow(ctx, query, tenantID, scope, year).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence %s/%d: %w", scope, year, err)
	}
	return next, nil
}
