package utils

import (
	"strconv"
	"strings"
)

// FormatAmount renders an integer amount as "IDR 1.500.000"; negative amounts get a leading "-".
func FormatAmount(currency string, amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.WriteString(sign)
	if c := strings.TrimSpace(currency); c != "" {
		b.WriteString(c)
		b.WriteByte(' ')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
