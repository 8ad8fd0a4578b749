package repository

import (
	"context"
	"fmt"

	"fin-extractor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "organization_id", "raw_text", "description", "amount", "currency",
	"balance", "type", "confidence", "date", "created_at", "updated_at",
}

type TransactionRepository struct {
	db     DB
	logger *zap.Logger
}

func NewTransactionRepository(db DB, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(
			tx.ID, tx.UserID, tx.OrganizationID, tx.RawText, tx.Description, tx.Amount, tx.Currency,
			tx.Balance, tx.Type, tx.Confidence, tx.Date, tx.CreatedAt, tx.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "organization_id": organizationID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	if err := scanTransaction(r.db.QueryRow(ctx, sql, args...), &tx); err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

// ListByOrganization returns up to limit transactions of the organization,
// newest first, strictly after the cursor row when cursor is set.
func (r *TransactionRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, cursor *uuid.UUID, limit int) ([]*models.Transaction, error) {
	sql, args, err := listByOrganizationQuery(organizationID, cursor, limit).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

func listByOrganizationQuery(organizationID uuid.UUID, cursor *uuid.UUID, limit int) squirrel.SelectBuilder {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"organization_id": organizationID})

	if cursor != nil {
		query = query.Where(squirrel.Expr(
			"(created_at, id) < (SELECT created_at, id FROM transactions WHERE id = ? AND organization_id = ?)",
			*cursor, organizationID,
		))
	}

	return query.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner, tx *models.Transaction) error {
	return row.Scan(
		&tx.ID, &tx.UserID, &tx.OrganizationID, &tx.RawText, &tx.Description, &tx.Amount, &tx.Currency,
		&tx.Balance, &tx.Type, &tx.Confidence, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt,
	)
}
