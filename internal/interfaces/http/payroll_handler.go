package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// PayrollHandler asignaciones de nómina entre sucursales (protegido).
type PayrollHandler struct {
	orchestrator *settlement.Orchestrator
	allocator    *accounting.PayrollAllocator
	log          *logger.Logger
}

// NewPayrollHandler construye el handler.
func NewPayrollHandler(orchestrator *settlement.Orchestrator, allocator *accounting.PayrollAllocator, log *logger.Logger) *PayrollHandler {
	return &PayrollHandler{orchestrator: orchestrator, allocator: allocator, log: log}
}

// Create godoc
// @Summary      Registrar asignación de nómina
// @Description  Con auto_approve=true se contabiliza y se acumula el saldo en la misma transacción.
// @Tags         payroll
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PayrollAllocationRequest  true  "Asignación"
// @Success      201   {object}  dto.PayrollSettlementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/payroll-allocations [post]
func (h *PayrollHandler) Create(c *fiber.Ctx) error {
	var in dto.PayrollAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.orchestrator.ExecutePayrollAllocation(c.UserContext(), RequestContext(c), accounting.AllocationRequest{
		EmployeeID:      in.EmployeeID,
		HomeBranchID:    in.HomeBranchID,
		VisitedBranchID: in.VisitedBranchID,
		Period:          in.Period,
		Amount:          in.Amount,
		SplitPercentage: in.SplitPercentage,
		Notes:           in.Notes,
		AutoApprove:     in.AutoApprove,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPayrollSettlementResponse(out))
}

// GetByID godoc
// @Summary      Obtener asignación de nómina
// @Tags         payroll
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.PayrollAllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payroll-allocations/{id} [get]
func (h *PayrollHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.allocator.GetAllocation(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toAllocationResponse(a))
}

// Approve godoc
// @Summary      Aprobar y procesar asignación (pending → processed)
// @Tags         payroll
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.PayrollSettlementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/payroll-allocations/{id}/approve [post]
func (h *PayrollHandler) Approve(c *fiber.Ctx) error {
	out, err := h.orchestrator.ApprovePayrollAllocation(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toPayrollSettlementResponse(out))
}

// Reject godoc
// @Summary      Rechazar asignación (pending → rejected)
// @Tags         payroll
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.PayrollAllocationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/payroll-allocations/{id}/reject [post]
func (h *PayrollHandler) Reject(c *fiber.Ctx) error {
	a, err := h.orchestrator.RejectPayrollAllocation(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toAllocationResponse(a))
}
