package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el stock actual de un producto en una sucursal.
// Nunca se elimina: solo llega a cero. Quantity >= 0 después de cada commit.
type StockLevel struct {
	TenantID  string
	ProductID string
	BranchID  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// QuantityPlaces decimales que admiten cantidades y precios unitarios en la persistencia.
const QuantityPlaces = 4

// FitsScale indica si v se representa con a lo sumo places decimales sin redondear.
func FitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}

// StockKey identifica una fila de stock (producto + sucursal).
type StockKey struct {
	ProductID string
	BranchID  string
}
