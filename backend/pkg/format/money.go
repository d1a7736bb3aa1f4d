// Package format renders contract values the way Brazilian legal documents expect them:
// currency, amounts in words, CPF and phone masks, long dates and party enumerations.
package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brazil = message.NewPrinter(language.BrazilianPortuguese)

// Currency formats v as Brazilian reais, e.g. "R$ 1.500,00". Digits come
// from the decimal itself so large amounts keep every digit.
func Currency(v decimal.Decimal) string {
	fixed := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	s := "R$ " + groupThousands(intPart) + "," + frac
	if v.IsNegative() && !v.Round(2).IsZero() {
		return "-" + s
	}
	return s
}

// groupThousands inserts the pt-BR group separator into a run of digits.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return brazil.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseAmount parses spreadsheet money cells. It accepts raw numbers ("1500", "1500.5"),
// Brazilian notation ("1.500,00") and values carrying the currency symbol ("R$ 1.500,00").
// A single dot followed by exactly three digits after a short integer part ("1.500") is a
// thousands separator; the same shape with a comma ("1,500") is ambiguous and reported missing.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, false
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.500,00
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,500.00
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 || groupedThousands(s, ",") {
			return decimal.Zero, false
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1, groupedThousands(s, "."):
		// 1.500.000, 1.500
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// groupedThousands reports whether s is "d.ddd" shaped around a single sep:
// one to three leading digits (no leading zero) and exactly three after.
func groupedThousands(s, sep string) bool {
	head, tail, ok := strings.Cut(strings.TrimPrefix(s, "-"), sep)
	if !ok || strings.Contains(tail, sep) || len(tail) != 3 || len(head) == 0 || len(head) > 3 || head[0] == '0' {
		return false
	}
	return allDigits(head) && allDigits(tail)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
