package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelResponse existencia de un producto en una sucursal.
type StockLevelResponse struct {
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// StockAdjustmentRequest body para POST /api/stock/adjustments.
// quantity con signo: positiva suma, negativa resta.
type StockAdjustmentRequest struct {
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
}

// StockAdjustmentResponse movimiento registrado y existencia resultante.
type StockAdjustmentResponse struct {
	Movement StockMovementResponse `json:"movement"`
	Quantity decimal.Decimal       `json:"quantity"`
}

// BranchResponse sucursal del tenant.
type BranchResponse struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Active  bool   `json:"active"`
}
