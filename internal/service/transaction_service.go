package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fin-extractor/internal/extractor"
	"fin-extractor/internal/models"
	"fin-extractor/internal/repository"
	"fin-extractor/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Transaction, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, cursor *uuid.UUID, limit int) ([]*models.Transaction, error)
}

type TransactionService struct {
	txRepo  TransactionStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewTransactionService(txRepo TransactionStore, m *metrics.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo:  txRepo,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Extract runs the extractor on text. The result is a preview; nothing is stored.
func (s *TransactionService) Extract(text string) models.ExtractionResult {
	result := extractor.ExtractAt(text, s.now())

	s.metrics.ObserveExtraction(string(result.Type), result.Confidence)
	s.logger.Debug("Text extracted",
		zap.Float64("amount", result.Amount),
		zap.String("currency", result.Currency),
		zap.String("type", string(result.Type)),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

// Save persists a reviewed extraction result for the owner inside the tenant.
// Identical submissions are stored as separate transactions. Timestamps are
// kept to the microsecond.
func (s *TransactionService) Save(ctx context.Context, result models.ExtractionResult, ownerID, tenantID uuid.UUID) (*models.Transaction, error) {
	if err := checkResult(result); err != nil {
		return nil, err
	}

	// Postgres timestamps hold microseconds.
	now := s.now().Truncate(time.Microsecond)
	tx := &models.Transaction{
		ID:             uuid.New(),
		UserID:         ownerID,
		OrganizationID: tenantID,
		RawText:        sanitizeText(result.RawText),
		Description:    sanitizeText(result.Description),
		Amount:         result.Amount,
		Currency:       result.Currency,
		Balance:        result.Balance,
		Type:           result.Type,
		Confidence:     result.Confidence,
		Date:           result.Date.Truncate(time.Microsecond),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.metrics.TransactionsSaved.Inc()
	s.logger.Info("Transaction saved",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("organization_id", tenantID.String()),
	)

	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// List returns one newest-first page of the tenant's transactions and the
// cursor of the next page, or nil when this page is the last one.
func (s *TransactionService) List(ctx context.Context, tenantID uuid.UUID, cursor string, limit int) ([]*models.Transaction, *string, error) {
	limit = pageSize(limit)

	var after *uuid.UUID
	if cursor != "" {
		id, err := uuid.Parse(cursor)
		if err != nil {
			return nil, nil, ErrInvalidCursor
		}
		after = &id
	}

	txs, err := s.txRepo.ListByOrganization(ctx, tenantID, after, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var next *string
	if len(txs) == limit {
		id := txs[len(txs)-1].ID.String()
		next = &id
	}

	return txs, next, nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func checkResult(r models.ExtractionResult) error {
	switch {
	case r.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidTransaction)
	case r.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	case len(r.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidTransaction)
	case !r.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, r.Type)
	case r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("%w: confidence out of range", ErrInvalidTransaction)
	case r.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	return nil
}
