package handlers

import (
	"fatturaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// List godoc
// @Summary List imported invoices
// @Tags invoices
// @Produce json
// @Param direction query string false "Filter by direction: active or passive"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Security Bearer
// @Success 200 {array} dto.InvoiceResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	direction := c.Query("direction")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	invoices, err := h.invoiceService.List(c.Context(), companyID, direction, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list invoices",
		})
	}
	return c.JSON(invoices)
}
