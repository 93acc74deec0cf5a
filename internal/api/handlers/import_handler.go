package handlers

import (
	"errors"
	"io"

	"fatturaflow/internal/models"
	"fatturaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ImportHandler struct {
	importService *service.ImportService
	logger        *zap.Logger
}

func NewImportHandler(importService *service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// UploadBatch godoc
// @Summary Upload a batch of invoice documents
// @Description Accepts .xml, .xml.p7m and .zip files, analyzes them and returns a preview
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Invoice documents"
// @Security Bearer
// @Success 201 {object} dto.BatchPreviewResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/import/batches [post]
func (h *ImportHandler) UploadBatch(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Multipart form is required",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one file is required",
		})
	}

	docs := make([]models.RawDocument, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to open uploaded file: " + header.Filename,
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read uploaded file: " + header.Filename,
			})
		}
		docs = append(docs, models.RawDocument{
			Filename: header.Filename,
			Bytes:    data,
			MimeHint: header.Header.Get("Content-Type"),
		})
	}

	preview, err := h.importService.CreateBatch(c.Context(), companyID, docs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrTooManyEntries):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			h.logger.Error("Batch analysis failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Batch analysis failed",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(preview)
}

// GetBatch godoc
// @Summary Get the current preview of a batch
// @Tags import
// @Produce json
// @Param id path string true "Batch ID"
// @Security Bearer
// @Success 200 {object} dto.BatchPreviewResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/import/batches/{id} [get]
func (h *ImportHandler) GetBatch(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch ID",
		})
	}

	preview, err := h.importService.GetBatch(c.Context(), companyID, batchID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Batch not found",
		})
	}
	return c.JSON(preview)
}

// ConfirmBatch godoc
// @Summary Confirm a batch and import its invoices
// @Description Runs classification, deduplication and persistence over every analyzed document
// @Tags import
// @Produce json
// @Param id path string true "Batch ID"
// @Security Bearer
// @Success 200 {object} dto.ImportReportResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/import/batches/{id}/confirm [post]
func (h *ImportHandler) ConfirmBatch(c *fiber.Ctx) error {
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch ID",
		})
	}

	report, err := h.importService.Confirm(c.Context(), companyID, batchID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchNotFound), errors.Is(err, service.ErrCompanyScope):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Batch not found",
			})
		case errors.Is(err, service.ErrBatchNotReady):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Batch is not awaiting confirmation",
			})
		default:
			h.logger.Error("Batch import failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Batch import failed",
			})
		}
	}

	return c.JSON(report)
}
