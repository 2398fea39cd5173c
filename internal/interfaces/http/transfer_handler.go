package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// TransferHandler maneja el ciclo de vida de los traslados entre sucursales (protegido).
type TransferHandler struct {
	transfers    *inventory.TransferManager
	orchestrator *settlement.Orchestrator
	slips        *inventory.SlipUseCase
	log          *logger.Logger
}

// NewTransferHandler construye el handler. slips puede ser nil si no hay generador de PDF.
func NewTransferHandler(transfers *inventory.TransferManager, orchestrator *settlement.Orchestrator, slips *inventory.SlipUseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{transfers: transfers, orchestrator: orchestrator, slips: slips, log: log}
}

// Create godoc
// @Summary      Crear traslado
// @Description  Crea el traslado en estado draft, o approved si auto_approve=true.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Datos del traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.transfers.CreateTransfer(c.UserContext(), RequestContext(c), inventory.CreateTransferInput{
		FromBranchID:  in.FromBranchID,
		ToBranchID:    in.ToBranchID,
		Type:          entity.TransferType(in.Type),
		Priority:      in.Priority,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		AutoApprove:   in.AutoApprove,
		Items:         toTransferItemsInput(in.Items),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "Estado"
// @Param        type            query  string  false  "Tipo"
// @Param        from_branch_id  query  string  false  "Sucursal origen"
// @Param        to_branch_id    query  string  false  "Sucursal destino"
// @Param        reference_type  query  string  false  "Tipo de referencia"
// @Param        reference_id    query  string  false  "Referencia"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	filter := repository.TransferFilter{
		Status:        entity.TransferStatus(c.Query("status")),
		Type:          entity.TransferType(c.Query("type")),
		FromBranchID:  c.Query("from_branch_id"),
		ToBranchID:    c.Query("to_branch_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
	}
	list, err := h.transfers.ListTransfers(c.UserContext(), RequestContext(c), filter, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.TransferResponse, len(list))
	for i, t := range list {
		items[i] = toTransferResponse(t)
	}
	return c.JSON(dto.TransferListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetByID godoc
// @Summary      Obtener traslado por ID
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.transfers.GetTransfer(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Submit godoc
// @Summary      Enviar traslado a aprobación (draft → pending)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	return h.advance(c, h.transfers.Submit)
}

// Approve godoc
// @Summary      Aprobar traslado (pending → approved)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	return h.advance(c, h.transfers.Approve)
}

// Cancel godoc
// @Summary      Cancelar traslado (draft|pending → cancelled)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.advance(c, h.transfers.Cancel)
}

// Receive godoc
// @Summary      Confirmar recepción (in_transit → received)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	return h.advance(c, h.transfers.MarkReceived)
}

// Settle godoc
// @Summary      Ejecutar y liquidar traslado
// @Description  Mueve el stock, contabiliza en ambas sucursales y acumula el saldo, todo en una transacción.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferSettlementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/settle [post]
func (h *TransferHandler) Settle(c *fiber.Ctx) error {
	out, err := h.orchestrator.ExecuteTransferSettlement(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toSettlementResponse(out))
}

// Movements godoc
// @Summary      Movimientos de stock del traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/movements [get]
func (h *TransferHandler) Movements(c *fiber.Ctx) error {
	list, err := h.transfers.ListMovements(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toMovementsResponse(list))
}

// Slip godoc
// @Summary      Descargar remisión del traslado en PDF
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/slip [get]
func (h *TransferHandler) Slip(c *fiber.Ctx) error {
	if h.slips == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generador de PDF no configurado"})
	}
	pdf, filename, err := h.slips.DownloadTransferSlip(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

type transition func(ctx context.Context, rc domain.RequestContext, id string) (*entity.Transfer, error)

func (h *TransferHandler) advance(c *fiber.Ctx, fn transition) error {
	t, err := fn(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(t))
}
