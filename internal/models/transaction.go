package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// Defaults reported when the extractor cannot derive a field. A field still
// holding its default is how callers tell that nothing was recognized.
const (
	UnknownDescription = "Unknown Transaction"
	DefaultCurrency    = "INR"
	NoAmount           = 0.0
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// ExtractionResult is the structured guess produced from a free-text message.
type ExtractionResult struct {
	RawText     string          `json:"rawText"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Balance     *float64        `json:"balance"`
	Type        TransactionType `json:"type"`
	Confidence  float64         `json:"confidence"`
	Date        time.Time       `json:"date"`
}

// Transaction is a persisted ExtractionResult owned by a user inside an organization.
type Transaction struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	OrganizationID uuid.UUID       `db:"organization_id"`
	RawText        string          `db:"raw_text"`
	Description    string          `db:"description"`
	Amount         float64         `db:"amount"`
	Currency       string          `db:"currency"`
	Balance        *float64        `db:"balance"`
	Type           TransactionType `db:"type"`
	Confidence     float64         `db:"confidence"`
	Date           time.Time       `db:"date"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Result returns the extraction fields of a stored transaction.
func (t *Transaction) Result() ExtractionResult {
	return ExtractionResult{
		RawText:     t.RawText,
		Description: t.Description,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Balance:     t.Balance,
		Type:        t.Type,
		Confidence:  t.Confidence,
		Date:        t.Date,
	}
}
