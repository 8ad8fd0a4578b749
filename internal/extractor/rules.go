package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"fin-extractor/internal/models"
)

// rule pairs a pattern with the handler for its submatches. A handler
// returns false to reject a match it cannot interpret, letting the next rule
// in the list try.
type rule struct {
	pattern *regexp.Regexp
	handle  func(st *state, m []string) bool
}

// Amounts with an explicit marker. Any of them means money left the account.
var amountRules = []rule{
	{regexp.MustCompile(`(?i)Amount:\s*(-?[0-9,]+(?:\.[0-9]{1,2})?)`), handleDebitAmount},
	{regexp.MustCompile(`(?i)₹\s*([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:debited|dr)`), handleDebitAmount},
	{regexp.MustCompile(`₹\s*([0-9,]+(?:\.[0-9]{1,2})?)\s*Dr`), handleDebitAmount},
}

// Plain-English transfers, e.g. "Sent 50.00 USD to Amazon.com on Jan 9th".
// The sentence never carries a year.
var transferRules = []rule{
	{
		regexp.MustCompile(`(?i)(?:sent|paid|transferred)\s+([0-9,.]+)\s+(USD|INR|EUR|GBP)\s+to\s+(.+?)\s+on\s+([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?`),
		handleTransfer,
	},
}

var balanceRules = []rule{
	{regexp.MustCompile(`(?i)Balance after transaction:\s*([0-9,]+(?:\.[0-9]{1,2})?)`), handleBalance},
	{regexp.MustCompile(`(?i)Available Balance\s*→\s*₹([0-9,]+(?:\.[0-9]{1,2})?)`), handleBalance},
	{regexp.MustCompile(`(?i)Bal\s*([0-9,]+(?:\.[0-9]{1,2})?)`), handleBalance},
}

var dateRules = []rule{
	{regexp.MustCompile(`(?i)\b(\d{1,2})\s([a-z]{3})\s(\d{4})\b`), handleDayMonthNameYear},
	{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`), handleDaySlashMonthYear},
	{regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), handleISODate},
}

var descriptionRules = []rule{
	{regexp.MustCompile(`(?i)Description:\s*(.+?)(?:Amount|Balance|$)`), handleDescription},
}

// structuralTokens are removed from the text before it is used as a
// description of last resort.
var structuralTokens = regexp.MustCompile(
	`(?i)(\d{1,2}\s[a-z]{3}\s\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|₹|debited|dr|Balance|Bal|Available|Amount|[0-9,]+\.[0-9]{2})`,
)

func handleDebitAmount(st *state, m []string) bool {
	n, ok := parseNumber(m[1])
	if !ok {
		return false
	}
	st.result.Amount = n.Abs().InexactFloat64()
	st.result.Currency = models.DefaultCurrency
	st.result.Type = models.TransactionTypeDebit
	return true
}

func handleTransfer(st *state, m []string) bool {
	n, ok := parseNumber(m[1])
	if !ok {
		return false
	}
	st.result.Amount = n.Abs().InexactFloat64()
	st.result.Currency = strings.ToUpper(m[2])
	st.result.Description = strings.TrimSpace(m[3])
	st.result.Type = models.TransactionTypeDebit

	month, ok := monthFromName(m[4])
	if !ok {
		return true
	}
	day, _ := strconv.Atoi(m[5])
	if date, ok := dateOf(st.now.Year(), month, day, st.now.Location()); ok {
		st.result.Date = date
		st.dateSet = true
	}
	return true
}

func handleBalance(st *state, m []string) bool {
	n, ok := parseNumber(m[1])
	if !ok {
		return false
	}
	balance := n.InexactFloat64()
	st.result.Balance = &balance
	return true
}

func handleDayMonthNameYear(st *state, m []string) bool {
	month, ok := monthFromName(m[2])
	if !ok {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	return st.useDate(year, month, day)
}

func handleDaySlashMonthYear(st *state, m []string) bool {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return st.useDate(year, month, day)
}

func handleISODate(st *state, m []string) bool {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return st.useDate(year, month, day)
}

// useDate records a date found in the text. A date already chosen by the
// transfer stage is kept.
func (st *state) useDate(year, month, day int) bool {
	date, ok := dateOf(year, month, day, st.now.Location())
	if !ok {
		return false
	}
	st.dateMatched = true
	if !st.dateSet {
		st.result.Date = date
		st.dateSet = true
	}
	return true
}

// handleDescription takes the marker text as is. The capture starts at a
// non-space rune of the normalized text, so it is never blank.
func handleDescription(st *state, m []string) bool {
	st.result.Description = strings.TrimSpace(m[1])
	return true
}
