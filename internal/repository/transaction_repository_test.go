package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"fin-extractor/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListByOrganizationQueryFirstPage(t *testing.T) {
	orgID := uuid.New()

	sql, args, err := listByOrganizationQuery(orgID, nil, 10).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, user_id, organization_id, raw_text, description, amount, currency, balance, type, confidence, date, created_at, updated_at "+
			"FROM transactions WHERE organization_id = $1 ORDER BY created_at DESC, id DESC LIMIT 10",
		sql,
	)
	assert.Equal(t, []interface{}{orgID}, args)
}

func TestListByOrganizationQueryWithCursor(t *testing.T) {
	orgID := uuid.New()
	cursor := uuid.New()

	sql, args, err := listByOrganizationQuery(orgID, &cursor, 2).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE organization_id = $1 AND (created_at, id) < "+
		"(SELECT created_at, id FROM transactions WHERE id = $2 AND organization_id = $3)")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT 2")
	assert.Equal(t, []interface{}{orgID, cursor, orgID}, args)
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other))
}

func sampleTransaction(balance *float64) *models.Transaction {
	at := time.Date(2026, time.October, 14, 9, 30, 0, 123456000, time.UTC)
	return &models.Transaction{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		RawText:        "Sent 50.125 USD to Amazon on Jan 9",
		Description:    "Amazon",
		Amount:         50.125,
		Currency:       "USD",
		Balance:        balance,
		Type:           models.TransactionTypeDebit,
		Confidence:     0.8,
		Date:           time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC),
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func transactionArgs(tx *models.Transaction) []interface{} {
	return []interface{}{
		tx.ID, tx.UserID, tx.OrganizationID, tx.RawText, tx.Description, tx.Amount, tx.Currency,
		tx.Balance, tx.Type, tx.Confidence, tx.Date, tx.CreatedAt, tx.UpdatedAt,
	}
}

func addTransactionRow(rows *pgxmock.Rows, tx *models.Transaction) *pgxmock.Rows {
	values := transactionArgs(tx)
	if tx.Balance == nil {
		values[7] = nil
	}
	return rows.AddRow(values...)
}

func TestTransactionCreateThenGet(t *testing.T) {
	balance := 99999999999999999999999999.0
	tests := []struct {
		name    string
		balance *float64
	}{
		{"without balance", nil},
		{"with large balance", &balance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewTransactionRepository(mock, zap.NewNop())
			ctx := context.Background()
			want := sampleTransaction(tt.balance)

			mock.ExpectExec("INSERT INTO transactions").
				WithArgs(transactionArgs(want)...).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id = \\$1 AND organization_id = \\$2").
				WithArgs(want.ID, want.OrganizationID).
				WillReturnRows(addTransactionRow(pgxmock.NewRows(transactionColumns), want))

			require.NoError(t, repo.Create(ctx, want))
			got, err := repo.GetByID(ctx, want.OrganizationID, want.ID)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	orgID, id := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs(id, orgID).
		WillReturnRows(pgxmock.NewRows(transactionColumns))

	_, err = NewTransactionRepository(mock, zap.NewNop()).GetByID(context.Background(), orgID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCreateFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tx := sampleTransaction(nil)
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(transactionArgs(tx)...).
		WillReturnError(errors.New("numeric field overflow"))

	err = NewTransactionRepository(mock, zap.NewNop()).Create(context.Background(), tx)
	assert.ErrorContains(t, err, "insert transaction: numeric field overflow")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrganizationScansRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	balance := 45000.0
	newer, older := sampleTransaction(&balance), sampleTransaction(nil)
	older.OrganizationID = newer.OrganizationID

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE organization_id = \\$1 ORDER BY created_at DESC, id DESC LIMIT 2").
		WithArgs(newer.OrganizationID).
		WillReturnRows(addTransactionRow(addTransactionRow(pgxmock.NewRows(transactionColumns), newer), older))

	got, err := NewTransactionRepository(mock, zap.NewNop()).ListByOrganization(context.Background(), newer.OrganizationID, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, []*models.Transaction{newer, older}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
