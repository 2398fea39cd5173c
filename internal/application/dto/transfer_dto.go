package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea solicitada del traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromBranchID  string                `json:"from_branch_id"`
	ToBranchID    string                `json:"to_branch_id"`
	Type          string                `json:"type,omitempty"`     // manual (defecto) | production | requisition
	Priority      string                `json:"priority,omitempty"` // low | normal (defecto) | high | urgent
	ReferenceType string                `json:"reference_type,omitempty"`
	ReferenceID   string                `json:"reference_id,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	AutoApprove   bool                  `json:"auto_approve,omitempty"`
	Items         []TransferItemRequest `json:"items"`
}

// TransferItemResponse línea del traslado.
type TransferItemResponse struct {
	ID        string          `json:"id"`
	LineNo    int             `json:"line_no"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TransferResponse traslado con sus ítems.
type TransferResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	FromBranchID  string                 `json:"from_branch_id"`
	ToBranchID    string                 `json:"to_branch_id"`
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	Priority      string                 `json:"priority"`
	ReferenceType string                 `json:"reference_type,omitempty"`
	ReferenceID   string                 `json:"reference_id,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	CreatedBy     string                 `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	ApprovedBy    string                 `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time             `json:"approved_at,omitempty"`
	ShippedAt     *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt    *time.Time             `json:"received_at,omitempty"`
	CancelledAt   *time.Time             `json:"cancelled_at,omitempty"`
	Items         []TransferItemResponse `json:"items"`
}

// TransferListResponse página de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockMovementResponse movimiento de auditoría.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	BranchID      string          `json:"branch_id"`
	Direction     string          `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	ItemID        string          `json:"item_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
}

// TransferSettlementResponse resultado de POST /api/transfers/:id/settle.
type TransferSettlementResponse struct {
	Transfer         TransferResponse        `json:"transfer"`
	Movements        []StockMovementResponse `json:"movements"`
	SourceEntry      *JournalEntryResponse   `json:"source_entry,omitempty"`
	DestinationEntry *JournalEntryResponse   `json:"destination_entry,omitempty"`
	Balance          *BalanceResponse        `json:"balance,omitempty"`
	Total            decimal.Decimal         `json:"total"`
}

// DistributeDestinationRequest cantidades para una sucursal destino.
type DistributeDestinationRequest struct {
	BranchID string                `json:"branch_id"`
	Items    []TransferItemRequest `json:"items"`
}

// DistributeRequest body para POST /api/production-distributions.
type DistributeRequest struct {
	ProductionRunID string                         `json:"production_run_id"`
	SourceBranchID  string                         `json:"source_branch_id"`
	Priority        string                         `json:"priority,omitempty"`
	Notes           string                         `json:"notes,omitempty"`
	Destinations    []DistributeDestinationRequest `json:"destinations"`
}

// DestinationResultResponse resultado por destino: settled o failed.
type DestinationResultResponse struct {
	BranchID          string            `json:"branch_id"`
	Status            string            `json:"status"`
	Transfer          *TransferResponse `json:"transfer,omitempty"`
	Attempts          int               `json:"attempts"`
	Resumed           bool              `json:"resumed,omitempty"`
	PendingTransferID string            `json:"pending_transfer_id,omitempty"`
	ErrorCode         string            `json:"error_code,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// DistributeResponse resultados de la distribución.
type DistributeResponse struct {
	ProductionRunID string                      `json:"production_run_id"`
	Settled         int                         `json:"settled"`
	Failed          int                         `json:"failed"`
	TotalQuantity   decimal.Decimal             `json:"total_quantity"`
	Results         []DestinationResultResponse `json:"results"`
}
