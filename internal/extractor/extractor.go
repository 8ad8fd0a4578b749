// Package extractor turns free-text bank messages (SMS alerts, e-mail
// receipts, statement lines) into a structured transaction guess.
//
// Extraction runs a fixed sequence of stages over the whitespace-normalized
// text. Each stage is an ordered list of rules and stops at the first rule
// that accepts its match. Nothing here returns an error: text that carries
// no recognizable cue yields the documented defaults and a low confidence.
package extractor

import (
	"strings"
	"time"
	"unicode/utf8"

	"fin-extractor/internal/models"

	"github.com/shopspring/decimal"
)

const maxDescriptionLen = 120

var (
	weightAmount      = decimal.RequireFromString("0.4")
	weightBalance     = decimal.RequireFromString("0.2")
	weightDate        = decimal.RequireFromString("0.2")
	weightDescription = decimal.RequireFromString("0.2")
)

// state is the mutable scratch space of a single extraction.
type state struct {
	text   string
	now    time.Time
	result models.ExtractionResult

	// dateSet is true once a stage has chosen the transaction date.
	dateSet bool
	// dateMatched is true when a date shape was found in the text itself.
	dateMatched bool
}

// Extract parses text using the current wall-clock time for date defaults.
func Extract(text string) models.ExtractionResult {
	return ExtractAt(text, time.Now())
}

// ExtractAt parses text as if the current time were now. The same text and
// now always produce the same result.
func ExtractAt(text string, now time.Time) models.ExtractionResult {
	st := &state{
		text: normalize(text),
		now:  now,
		result: models.ExtractionResult{
			RawText:     text,
			Description: models.UnknownDescription,
			Amount:      models.NoAmount,
			Currency:    models.DefaultCurrency,
			Type:        models.TransactionTypeCredit,
			Date:        now,
		},
	}

	apply(amountRules, st)
	if st.result.Amount == models.NoAmount {
		apply(transferRules, st)
	}
	apply(balanceRules, st)
	apply(dateRules, st)
	if st.result.Description == models.UnknownDescription {
		if !apply(descriptionRules, st) {
			st.synthesizeDescription()
		}
	}

	st.result.Confidence = st.confidence()
	return st.result
}

// apply runs rules in order against the normalized text and reports whether
// one of them accepted its match.
func apply(rules []rule, st *state) bool {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(st.text)
		if m == nil {
			continue
		}
		if r.handle(st, m) {
			return true
		}
	}
	return false
}

// synthesizeDescription falls back to whatever text is left once structural
// tokens are removed. It only runs when the text carried at least one
// recognized cue; otherwise the leftover is the whole message, not a label.
// A bare number such as "500.00" is not a cue on its own.
func (st *state) synthesizeDescription() {
	if st.result.Amount == models.NoAmount && st.result.Balance == nil && !st.dateMatched {
		return
	}

	leftover := normalize(structuralTokens.ReplaceAllString(st.text, ""))
	leftover = truncate(leftover, maxDescriptionLen)
	if leftover != "" {
		st.result.Description = leftover
	}
}

func (st *state) confidence() float64 {
	score := decimal.Zero
	if st.result.Amount > 0 {
		score = score.Add(weightAmount)
	}
	if st.result.Balance != nil {
		score = score.Add(weightBalance)
	}
	// A date is always present: either parsed or defaulted to now.
	score = score.Add(weightDate)
	if st.result.Description != models.UnknownDescription {
		score = score.Add(weightDescription)
	}
	return score.InexactFloat64()
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes, trimming any space left at the cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
