package handlers

import (
	"errors"

	"fatturaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuarantineHandler struct {
	quarantineService *service.QuarantineService
	logger            *zap.Logger
}

func NewQuarantineHandler(quarantineService *service.QuarantineService, logger *zap.Logger) *QuarantineHandler {
	return &QuarantineHandler{
		quarantineService: quarantineService,
		logger:            logger,
	}
}

// List godoc
// @Summary List quarantined documents
// @Tags quarantine
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.QuarantineItemResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/quarantine [get]
func (h *QuarantineHandler) List(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	items, err := h.quarantineService.List(c.Context(), companyID)
	if err != nil {
		h.logger.Error("Failed to list quarantine", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list quarantine",
		})
	}
	return c.JSON(items)
}

// Retry godoc
// @Summary Retry a quarantined document
// @Description Re-runs the import for one parked document against current company state
// @Tags quarantine
// @Produce json
// @Param id path string true "Quarantine item ID"
// @Security Bearer
// @Success 200 {object} dto.RetryResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/quarantine/{id}/retry [post]
func (h *QuarantineHandler) Retry(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	resp, err := h.quarantineService.Retry(c.Context(), companyID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quarantine item not found",
			})
		case errors.Is(err, service.ErrItemNotQuarantined):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Item is not quarantined",
			})
		default:
			h.logger.Error("Quarantine retry failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Retry failed",
			})
		}
	}
	return c.JSON(resp)
}

// Archive godoc
// @Summary Archive a quarantined document
// @Description Removes the item from the active quarantine without importing it
// @Tags quarantine
// @Produce json
// @Param id path string true "Quarantine item ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/quarantine/{id} [delete]
func (h *QuarantineHandler) Archive(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	if err := h.quarantineService.Archive(c.Context(), companyID, itemID); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quarantine item not found",
			})
		case errors.Is(err, service.ErrItemNotQuarantined):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Item is not quarantined",
			})
		default:
			h.logger.Error("Quarantine archive failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Archive failed",
			})
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Download godoc
// @Summary Download the original bytes of a quarantined document
// @Tags quarantine
// @Produce application/octet-stream
// @Param id path string true "Quarantine item ID"
// @Security Bearer
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/v1/quarantine/{id}/download [get]
func (h *QuarantineHandler) Download(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item ID",
		})
	}

	filename, data, err := h.quarantineService.Download(c.Context(), companyID, itemID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Quarantine item not found",
		})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.Send(data)
}
