package expense

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PageSize is the number of sheet buttons shown at once.
const PageSize = 3

// FilterSheets drops reserved tab names, keeping order.
func FilterSheets(all, reserved []string) []string {
	skip := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		skip[r] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if _, ok := skip[s]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Page returns the start index and the sheets of page (zero-based) together
// with whether earlier and later pages exist. Out-of-range pages are clamped.
func Page(sheets []string, page, size int) (start int, items []string, hasPrev, hasNext bool) {
	if size <= 0 {
		size = PageSize
	}
	if len(sheets) == 0 {
		return 0, nil, false, false
	}
	last := (len(sheets) - 1) / size
	if page < 0 {
		page = 0
	}
	if page > last {
		page = last
	}
	start = page * size
	end := start + size
	if end > len(sheets) {
		end = len(sheets)
	}
	return start, sheets[start:end], page > 0, page < last
}

var amountNoise = regexp.MustCompile(`[^\d.\-]`)

// ParseAmount accepts "1 500,50 руб" style input: commas become dots and
// everything except digits, dots and minus signs is dropped.
func ParseAmount(text string) (decimal.Decimal, bool) {
	cleaned := amountNoise.ReplaceAllString(strings.ReplaceAll(text, ",", "."), "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
