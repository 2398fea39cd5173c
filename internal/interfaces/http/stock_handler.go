package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// StockHandler existencias por sucursal y ajustes (protegido).
type StockHandler struct {
	query       *inventory.StockQuery
	adjustments *inventory.AdjustmentUseCase
	log         *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(query *inventory.StockQuery, adjustments *inventory.AdjustmentUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{query: query, adjustments: adjustments, log: log}
}

// Get godoc
// @Summary      Consultar stock
// @Description  Con product_id devuelve la existencia puntual; sin él, todas las existencias de la sucursal.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  true   "Sucursal"
// @Param        product_id  query  string  false  "Producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	rc := RequestContext(c)
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	if productID == "" {
		list, err := h.query.ListByBranch(c.UserContext(), rc, branchID)
		if err != nil {
			return respondError(c, h.log, err)
		}
		out := make([]dto.StockLevelResponse, len(list))
		for i, s := range list {
			out[i] = toStockLevelResponse(s)
		}
		return c.JSON(out)
	}
	s, err := h.query.Get(c.UserContext(), rc, productID, branchID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toStockLevelResponse(s))
}

// Adjust godoc
// @Summary      Registrar ajuste de inventario
// @Description  quantity con signo: positiva ingresa, negativa retira. Nunca deja stock negativo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.StockAdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.adjustments.RegisterAdjustment(c.UserContext(), RequestContext(c), inventory.AdjustmentInput{
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockAdjustmentResponse{
		Movement: toMovementResponse(res.Movement),
		Quantity: res.Quantity,
	})
}
