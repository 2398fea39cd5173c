package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del documento de traslado.
type TransferStatus string

// Estados del traslado. draft → pending → approved → in_transit → received;
// draft|pending → cancelled.
const (
	TransferStatusDraft     TransferStatus = "draft"
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusInTransit TransferStatus = "in_transit"
	TransferStatusReceived  TransferStatus = "received"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// TransferType origen del traslado.
type TransferType string

const (
	TransferTypeManual      TransferType = "manual"
	TransferTypeProduction  TransferType = "production"
	TransferTypeRequisition TransferType = "requisition"
)

// Valid indica si el tipo es conocido.
func (t TransferType) Valid() bool {
	switch t {
	case TransferTypeManual, TransferTypeProduction, TransferTypeRequisition:
		return true
	}
	return false
}

// Prioridades admitidas.
const (
	TransferPriorityLow    = "low"
	TransferPriorityNormal = "normal"
	TransferPriorityHigh   = "high"
	TransferPriorityUrgent = "urgent"
)

// Transfer documento que mueve stock de una sucursal a otra.
type Transfer struct {
	ID            string
	TenantID      string
	Number        string // <PREFIX>-<año>-<secuencia de 4 dígitos>
	FromBranchID  string
	ToBranchID    string
	Type          TransferType
	Status        TransferStatus
	Priority      string
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ApprovedBy    string
	ApprovedAt    *time.Time
	ShippedAt     *time.Time
	ReceivedAt    *time.Time
	CancelledAt   *time.Time
	Items         []TransferItem
}

// TransferItem línea del traslado. Inmutable desde in_transit.
type TransferItem struct {
	ID         string
	TransferID string
	LineNo     int // orden de inserción; define el orden de aplicación
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// Subtotal cantidad por precio unitario.
func (i TransferItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// AmountPlaces decimales de la unidad monetaria mínima.
const AmountPlaces = 2

// GrossAmount suma de subtotales sin redondear.
func (t *Transfer) GrossAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// TotalAmount valor del traslado redondeado a la unidad monetaria mínima.
func (t *Transfer) TotalAmount() decimal.Decimal {
	return t.GrossAmount().Round(AmountPlaces)
}
