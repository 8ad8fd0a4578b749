package dto

import (
	"time"

	"fin-extractor/internal/models"
)

type ExtractRequest struct {
	Text string `json:"text" validate:"required,min=5,max=5000"`
}

type ExtractResponse struct {
	Success bool                    `json:"success"`
	Data    models.ExtractionResult `json:"data"`
}

// SaveTransactionRequest is a reviewed extraction result submitted for storage.
type SaveTransactionRequest struct {
	RawText     string     `json:"rawText"`
	Description string     `json:"description" validate:"required,min=1"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	Currency    string     `json:"currency" validate:"len=3"`
	Balance     *float64   `json:"balance"`
	Type        string     `json:"type" validate:"required,oneof=DEBIT CREDIT"`
	Confidence  float64    `json:"confidence" validate:"gte=0,lte=1"`
	Date        *time.Time `json:"date" validate:"required"`
}

func (r *SaveTransactionRequest) Result() models.ExtractionResult {
	res := models.ExtractionResult{
		RawText:     r.RawText,
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Balance:     r.Balance,
		Type:        models.TransactionType(r.Type),
		Confidence:  r.Confidence,
	}
	if r.Date != nil {
		res.Date = *r.Date
	}
	return res
}

type TransactionResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	RawText        string    `json:"rawText"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Balance        *float64  `json:"balance"`
	Type           string    `json:"type"`
	Confidence     float64   `json:"confidence"`
	Date           time.Time `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type SaveTransactionResponse struct {
	Success bool                `json:"success"`
	Data    TransactionResponse `json:"data"`
}

// TransactionListResponse is one newest-first page. NextCursor is nil on the last page.
type TransactionListResponse struct {
	Data       []TransactionResponse `json:"data"`
	NextCursor *string               `json:"nextCursor"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID.String(),
		UserID:         tx.UserID.String(),
		OrganizationID: tx.OrganizationID.String(),
		RawText:        tx.RawText,
		Description:    tx.Description,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Balance:        tx.Balance,
		Type:           string(tx.Type),
		Confidence:     tx.Confidence,
		Date:           tx.Date,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}
