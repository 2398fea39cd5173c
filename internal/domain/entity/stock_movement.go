package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de un movimiento de stock.
const (
	MovementDirectionIn  = "in"
	MovementDirectionOut = "out"
)

// StockMovement es el registro de auditoría inmutable de una entrada o salida de stock.
// Un traslado genera una fila "out" en origen y una "in" en destino por cada ítem.
// Quantity siempre es positiva; la dirección indica el signo.
type StockMovement struct {
	ID            string
	TenantID      string
	ProductID     string
	BranchID      string
	Direction     string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	ItemID        string // ítem del traslado que originó el movimiento
	CreatedAt     time.Time
	CreatedBy     string
}
