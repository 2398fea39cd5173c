package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// BalanceHandler consulta y liquida saldos entre sucursales (protegido).
type BalanceHandler struct {
	tracker *accounting.BalanceTracker
	log     *logger.Logger
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(tracker *accounting.BalanceTracker, log *logger.Logger) *BalanceHandler {
	return &BalanceHandler{tracker: tracker, log: log}
}

// Summary godoc
// @Summary      Resumen de saldos entre dos sucursales
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        from_branch_id  query  string  true  "Sucursal acreedora"
// @Param        to_branch_id    query  string  true  "Sucursal deudora"
// @Success      200  {object}  dto.BalanceSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/interbranch-balances [get]
func (h *BalanceHandler) Summary(c *fiber.Ctx) error {
	from, to := c.Query("from_branch_id"), c.Query("to_branch_id")
	rc := RequestContext(c)
	sum, err := h.tracker.Summary(c.UserContext(), rc, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.tracker.ListByPair(c.UserContext(), rc, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BalanceSummaryResponse{
		FromBranchID:   sum.FromBranchID,
		ToBranchID:     sum.ToBranchID,
		PendingOwed:    sum.PendingOwed,
		PendingOwing:   sum.PendingOwing,
		SettledOwed:    sum.SettledOwed,
		SettledOwing:   sum.SettledOwing,
		Net:            sum.Net,
		PendingEntries: sum.PendingEntries,
		Balances:       toBalancesResponse(list),
	})
}

// Settle godoc
// @Summary      Registrar pago entre sucursales
// @Description  Liquida saldos pendientes del más antiguo al más nuevo mientras quepan en el monto.
// @Tags         balances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettleBalancesRequest  true  "Pago"
// @Success      200   {object}  dto.SettleBalancesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/interbranch-balances/settle [post]
func (h *BalanceHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleBalancesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.tracker.Settle(c.UserContext(), RequestContext(c), in.FromBranchID, in.ToBranchID, in.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SettleBalancesResponse{
		Settled:       toBalancesResponse(res.Settled),
		SettledAmount: res.SettledAmount,
		Remainder:     res.Remainder,
	})
}
