package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// adjustmentReferenceType referencia de los asientos de ajuste creados por API.
const adjustmentReferenceType = "manual_adjustment"

// JournalHandler consulta y ajustes de asientos contables (protegido).
type JournalHandler struct {
	poster *accounting.JournalPoster
	log    *logger.Logger
}

// NewJournalHandler construye el handler.
func NewJournalHandler(poster *accounting.JournalPoster, log *logger.Logger) *JournalHandler {
	return &JournalHandler{poster: poster, log: log}
}

// ListByReference godoc
// @Summary      Asientos de una referencia
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query  string  true  "Tipo de referencia (transfer, payroll_allocation, manual_adjustment)"
// @Param        reference_id    query  string  true  "ID de la referencia"
// @Success      200  {array}   dto.JournalEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/journal-entries [get]
func (h *JournalHandler) ListByReference(c *fiber.Ctx) error {
	list, err := h.poster.ListByReference(c.UserContext(), RequestContext(c), c.Query("reference_type"), c.Query("reference_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.JournalEntryResponse, len(list))
	for i, e := range list {
		out[i] = *toJournalEntryResponse(e)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener asiento
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      200  {object}  dto.JournalEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/journal-entries/{id} [get]
func (h *JournalHandler) GetByID(c *fiber.Ctx) error {
	e, err := h.poster.GetEntry(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toJournalEntryResponse(e))
}

// Post godoc
// @Summary      Contabilizar asiento de ajuste
// @Tags         journal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostJournalEntryRequest  true  "Asiento"
// @Success      201   {object}  dto.JournalEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/journal-entries [post]
func (h *JournalHandler) Post(c *fiber.Ctx) error {
	var in dto.PostJournalEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]entity.JournalLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = entity.JournalLine{AccountCode: l.AccountCode, Description: l.Description, Debit: l.Debit, Credit: l.Credit}
	}
	var entryDate time.Time
	if in.EntryDate != nil {
		entryDate = *in.EntryDate
	}
	e, err := h.poster.Post(c.UserContext(), RequestContext(c), accounting.PostInput{
		BranchID:      in.BranchID,
		EntryType:     entity.JournalEntryTypeAdjustment,
		ReferenceType: adjustmentReferenceType,
		ReferenceID:   in.ReferenceID,
		Description:   in.Description,
		EntryDate:     entryDate,
		Lines:         lines,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toJournalEntryResponse(e))
}

// Reverse godoc
// @Summary      Reversar asiento
// @Description  Crea el asiento espejo y marca el original como reversed. No modifica saldos entre sucursales.
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      201  {object}  dto.JournalEntryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/journal-entries/{id}/reverse [post]
func (h *JournalHandler) Reverse(c *fiber.Ctx) error {
	e, err := h.poster.Reverse(c.UserContext(), RequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toJournalEntryResponse(e))
}
