package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSave() SaveTransactionRequest {
	date := time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)
	return SaveTransactionRequest{
		RawText:     "Sent 50.00 USD to Amazon.com on Jan 9th",
		Description: "Amazon.com",
		Amount:      50,
		Currency:    "USD",
		Type:        "DEBIT",
		Confidence:  0.8,
		Date:        &date,
	}
}

func TestValidateExtractRequest(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"ok", "Amount: 100", false},
		{"too short", "abcd", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 5001), true},
		{"max", strings.Repeat("a", 5000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&ExtractRequest{Text: tt.text})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSaveTransactionRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *SaveTransactionRequest)
	}{
		{"empty description", func(r *SaveTransactionRequest) { r.Description = "" }},
		{"zero amount", func(r *SaveTransactionRequest) { r.Amount = 0 }},
		{"negative amount", func(r *SaveTransactionRequest) { r.Amount = -5 }},
		{"currency length", func(r *SaveTransactionRequest) { r.Currency = "RUPEE" }},
		{"bad type", func(r *SaveTransactionRequest) { r.Type = "REFUND" }},
		{"confidence above one", func(r *SaveTransactionRequest) { r.Confidence = 1.2 }},
		{"missing date", func(r *SaveTransactionRequest) { r.Date = nil }},
	}

	ok := validSave()
	assert.NoError(t, Validate(&ok))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSave()
			tt.mutate(&req)
			assert.Error(t, Validate(&req))
		})
	}
}

func TestSaveRequestResult(t *testing.T) {
	req := validSave()
	balance := 120.5
	req.Balance = &balance

	res := req.Result()
	assert.Equal(t, req.RawText, res.RawText)
	assert.Equal(t, "DEBIT", string(res.Type))
	assert.Equal(t, *req.Date, res.Date)
	assert.Equal(t, 120.5, *res.Balance)
}
