package handlers

import (
	"context"
	"errors"

	"fin-extractor/internal/dto"
	"fin-extractor/internal/models"
	"fin-extractor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService interface {
	Extract(text string) models.ExtractionResult
	Save(ctx context.Context, result models.ExtractionResult, ownerID, tenantID uuid.UUID) (*models.Transaction, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, tenantID uuid.UUID, cursor string, limit int) ([]*models.Transaction, *string, error)
}

type TransactionHandler struct {
	txService TransactionService
	logger    *zap.Logger
}

func NewTransactionHandler(txService TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
		logger:    logger,
	}
}

// Extract godoc
// @Summary Extract a transaction from text
// @Description Parse a bank SMS, e-mail receipt or statement line into a transaction preview. Nothing is stored.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.ExtractRequest true "Text to parse"
// @Security Bearer
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]interface{}
// @Router /api/transactions/extract [post]
func (h *TransactionHandler) Extract(c *fiber.Ctx) error {
	if _, err := getOrgID(c); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No organization context")
	}

	var req dto.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid extraction input")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid extraction input")
	}

	return c.JSON(dto.ExtractResponse{
		Success: true,
		Data:    h.txService.Extract(req.Text),
	})
}

// Save godoc
// @Summary Save a reviewed transaction
// @Description Persist an extraction result, possibly edited, in the active organization
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.SaveTransactionRequest true "Transaction"
// @Security Bearer
// @Success 200 {object} dto.SaveTransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]interface{}
// @Router /api/transactions/save [post]
func (h *TransactionHandler) Save(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	orgID, err := getOrgID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No organization context")
	}

	var req dto.SaveTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction payload")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction payload")
	}

	tx, err := h.txService.Save(c.UserContext(), req.Result(), userID, orgID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransaction) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction payload")
		}
		h.logger.Error("Failed to save transaction", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save transaction")
	}

	return c.JSON(dto.SaveTransactionResponse{
		Success: true,
		Data:    dto.NewTransactionResponse(tx),
	})
}

// ListTransactions godoc
// @Summary List transactions
// @Description Newest first, scoped to the active organization. Pass nextCursor back as cursor for the next page.
// @Tags transactions
// @Produce json
// @Param limit query int false "Page size (default 10, max 50)"
// @Param cursor query string false "ID of the last transaction of the previous page"
// @Security Bearer
// @Success 200 {object} dto.TransactionListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusForbidden, "No organization context")
	}

	txs, next, err := h.txService.List(c.UserContext(), orgID, c.Query("cursor"), c.QueryInt("limit"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCursor) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid cursor")
		}
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list transactions")
	}

	resp := dto.TransactionListResponse{
		Data:       make([]dto.TransactionResponse, 0, len(txs)),
		NextCursor: next,
	}
	for _, tx := range txs {
		resp.Data = append(resp.Data, dto.NewTransactionResponse(tx))
	}

	return c.JSON(resp)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 200 {object} dto.SaveTransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusForbidden, "No organization context")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}

	tx, err := h.txService.Get(c.UserContext(), orgID, id)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Transaction not found")
		}
		h.logger.Error("Failed to get transaction", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get transaction")
	}

	return c.JSON(dto.SaveTransactionResponse{
		Success: true,
		Data:    dto.NewTransactionResponse(tx),
	})
}
