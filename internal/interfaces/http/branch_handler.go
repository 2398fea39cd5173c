package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// BranchHandler consulta de sucursales del tenant (protegido).
type BranchHandler struct {
	query *inventory.BranchQuery
	log   *logger.Logger
}

// NewBranchHandler construye el handler.
func NewBranchHandler(query *inventory.BranchQuery, log *logger.Logger) *BranchHandler {
	return &BranchHandler{query: query, log: log}
}

// List godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.BranchResponse
// @Router       /api/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	list, err := h.query.List(c.UserContext(), RequestContext(c), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.BranchResponse, len(list))
	for i, b := range list {
		out[i] = toBranchResponse(b)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener sucursal
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.BranchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [get]
func (h *BranchHandler) GetByID(c *fiber.Ctx) error {
	b, err := h.query.Get(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toBranchResponse(b))
}
