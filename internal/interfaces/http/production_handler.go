package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/production"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// ProductionHandler distribuye la salida de producción a las sucursales (protegido).
type ProductionHandler struct {
	uc  *production.DistributeUseCase
	log *logger.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.DistributeUseCase, log *logger.Logger) *ProductionHandler {
	return &ProductionHandler{uc: uc, log: log}
}

// Distribute godoc
// @Summary      Distribuir corrida de producción
// @Description  Un traslado preaprobado por destino, cada uno liquidado en su propia transacción.
// @Description  Responde 200 si todos los destinos se liquidaron y 207 si alguno falló.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DistributeRequest  true  "Corrida y destinos"
// @Success      200   {object}  dto.DistributeResponse
// @Success      207   {object}  dto.DistributeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/production-distributions [post]
func (h *ProductionHandler) Distribute(c *fiber.Ctx) error {
	var in dto.DistributeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dests := make([]production.Destination, len(in.Destinations))
	for i, d := range in.Destinations {
		dests[i] = production.Destination{BranchID: d.BranchID, Items: toTransferItemsInput(d.Items)}
	}
	results, err := h.uc.Distribute(c.UserContext(), RequestContext(c), production.DistributeInput{
		ProductionRunID: in.ProductionRunID,
		SourceBranchID:  in.SourceBranchID,
		Priority:        in.Priority,
		Notes:           in.Notes,
		Destinations:    dests,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := toDistributeResponse(in.ProductionRunID, results)
	status := fiber.StatusOK
	if out.Failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(out)
}
