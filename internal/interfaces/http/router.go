package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/production"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/pkg/jwt"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transfers    *inventory.TransferManager
	Slips        *inventory.SlipUseCase
	StockQuery   *inventory.StockQuery
	Adjustments  *inventory.AdjustmentUseCase
	BranchQuery  *inventory.BranchQuery
	Journal      *accounting.JournalPoster
	Balances     *accounting.BalanceTracker
	Payroll      *accounting.PayrollAllocator
	Orchestrator *settlement.Orchestrator
	Distribute   *production.DistributeUseCase
	Logger       *logger.Logger
	JWTSecret    string
}

// Router registra las rutas de la API. Todo /api exige Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	warehouseRoles := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	accountingRoles := RequireRole(jwt.RoleAdmin, jwt.RoleContador)
	payrollRoles := RequireRole(jwt.RoleAdmin, jwt.RoleRRHH)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleContador, jwt.RoleRRHH)

	// Transfers
	transferHandler := NewTransferHandler(deps.Transfers, deps.Orchestrator, deps.Slips, log)
	transfers := protected.Group("/transfers", warehouseRoles)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/submit", transferHandler.Submit)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	transfers.Post("/:id/settle", transferHandler.Settle)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Get("/:id/movements", transferHandler.Movements)
	transfers.Get("/:id/slip", transferHandler.Slip)

	// Production distributions
	productionHandler := NewProductionHandler(deps.Distribute, log)
	protected.Post("/production-distributions", warehouseRoles, productionHandler.Distribute)

	// Payroll allocations
	payrollHandler := NewPayrollHandler(deps.Orchestrator, deps.Payroll, log)
	payroll := protected.Group("/payroll-allocations", payrollRoles)
	payroll.Post("/", payrollHandler.Create)
	payroll.Get("/:id", payrollHandler.GetByID)
	payroll.Post("/:id/approve", payrollHandler.Approve)
	payroll.Post("/:id/reject", payrollHandler.Reject)

	// Inter-branch balances
	balanceHandler := NewBalanceHandler(deps.Balances, log)
	balances := protected.Group("/interbranch-balances", accountingRoles)
	balances.Get("/", balanceHandler.Summary)
	balances.Post("/settle", balanceHandler.Settle)

	// Journal entries
	journalHandler := NewJournalHandler(deps.Journal, log)
	journal := protected.Group("/journal-entries", accountingRoles)
	journal.Get("/", journalHandler.ListByReference)
	journal.Post("/", journalHandler.Post)
	journal.Get("/:id", journalHandler.GetByID)
	journal.Post("/:id/reverse", journalHandler.Reverse)

	// Stock
	stockHandler := NewStockHandler(deps.StockQuery, deps.Adjustments, log)
	protected.Get("/stock", anyRole, stockHandler.Get)
	protected.Post("/stock/adjustments", warehouseRoles, stockHandler.Adjust)

	// Branches
	branchHandler := NewBranchHandler(deps.BranchQuery, log)
	protected.Get("/branches", anyRole, branchHandler.List)
	protected.Get("/branches/:id", anyRole, branchHandler.GetByID)
}
