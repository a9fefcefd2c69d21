// currency.go implements the dollar display formatting applied to rate
// values on output.

package allowance

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency normalises a raw rate value for display: any parseable
// amount renders as "$" plus the integer part with thousands separators
// and no decimals ("1234.50" -> "$1,234"). Empty input renders as "".
// Unparseable input is returned unchanged rather than treated as an
// error, so stray text in a rate column survives into the document.
func FormatCurrency(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}

	// Strip any formatting already present in the source.
	clean := strings.ReplaceAll(value, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return ""
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return value
	}

	n := amount.IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + "$" + groupThousands(n)
}

// groupThousands renders n (non-negative) with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
