package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollAllocationStatus estado de la asignación de nómina.
type PayrollAllocationStatus string

const (
	PayrollStatusPending   PayrollAllocationStatus = "pending"
	PayrollStatusApproved  PayrollAllocationStatus = "approved"
	PayrollStatusProcessed PayrollAllocationStatus = "processed"
	PayrollStatusRejected  PayrollAllocationStatus = "rejected"
)

// PayrollAllocation reparto del costo de un empleado entre su sucursal base (pagadora)
// y la sucursal visitada.
type PayrollAllocation struct {
	ID              string
	TenantID        string
	EmployeeID      string
	HomeBranchID    string
	VisitedBranchID string
	Period          string // YYYY-MM
	AllocatedAmount decimal.Decimal
	SplitPercentage decimal.Decimal // porción que asume la empresa (sucursal base)
	CompanyPortion  decimal.Decimal
	BranchPortion   decimal.Decimal
	Status          PayrollAllocationStatus
	JournalEntryID  string
	Notes           string
	CreatedBy       string
	ApprovedBy      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProcessedAt     *time.Time
}
