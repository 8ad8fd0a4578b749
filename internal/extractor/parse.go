package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// leadingNumber is the longest numeric prefix of a token, so "1.2.3" reads
// as 1.2 the way lenient float parsing does.
var leadingNumber = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)`)

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// parseNumber reads a matched amount with thousands separators removed.
// It reports false when no digits remain, e.g. for a lone ",".
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	lead := leadingNumber.FindString(s)
	if lead == "" {
		return decimal.Zero, false
	}
	lead = strings.TrimSuffix(lead, ".")
	if strings.HasPrefix(lead, ".") {
		lead = "0" + lead
	} else if strings.HasPrefix(lead, "-.") {
		lead = "-0" + lead[1:]
	}

	n, err := decimal.NewFromString(lead)
	if err != nil {
		return decimal.Zero, false
	}
	return n, true
}

// monthFromName accepts full month names and their three-letter
// abbreviations in any case.
func monthFromName(name string) (int, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := months[strings.ToLower(name[:3])]
	return int(m), ok
}

// dateOf builds midnight of the given calendar day, rejecting days that do
// not exist instead of normalizing them into the next month.
func dateOf(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
