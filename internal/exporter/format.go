package exporter

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatDecimal renders a value with exactly 2 decimal places.
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// sanitizeName makes a string safe to use in a file name.
func sanitizeName(s string) string {
	return strings.NewReplacer("/", "-", `\`, "-", ":", "-").Replace(s)
}

// sheetName trims a name to Excel's 31 character sheet limit and strips
// characters Excel rejects.
func sheetName(s string) string {
	s = strings.NewReplacer("/", "-", `\`, "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-").Replace(s)
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
