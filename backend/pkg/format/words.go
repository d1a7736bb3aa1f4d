package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	units    = []string{"", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove"}
	teens    = []string{"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove"}
	tens     = []string{"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	hundreds = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos", "seiscentos", "setecentos", "oitocentos", "novecentos"}
)

// AmountInWords spells v in Brazilian Portuguese ("valor por extenso"),
// e.g. 1500.50 -> "mil e quinhentos reais e cinquenta centavos".
func AmountInWords(v decimal.Decimal) string {
	v = v.Abs().Round(2)
	whole := v.IntPart()
	cents := v.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	var parts []string
	if whole > 0 {
		text := integerInWords(whole)
		switch {
		case whole == 1:
			text += " real"
		case whole%1_000_000 == 0:
			text += " de reais"
		default:
			text += " reais"
		}
		parts = append(parts, text)
	}
	if cents > 0 {
		text := upTo999(int(cents))
		if cents == 1 {
			text += " centavo"
		} else {
			text += " centavos"
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "zero reais"
	}
	return strings.Join(parts, " e ")
}

func integerInWords(n int64) string {
	var groups []string
	if billions := n / 1_000_000_000; billions > 0 {
		if billions == 1 {
			groups = append(groups, "um bilhão")
		} else {
			groups = append(groups, upTo999(int(billions))+" bilhões")
		}
		n %= 1_000_000_000
	}
	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			groups = append(groups, "um milhão")
		} else {
			groups = append(groups, upTo999(int(millions))+" milhões")
		}
		n %= 1_000_000
	}
	if thousands := n / 1000; thousands > 0 {
		if thousands == 1 {
			groups = append(groups, "mil")
		} else {
			groups = append(groups, upTo999(int(thousands))+" mil")
		}
		n %= 1000
	}
	if n > 0 {
		groups = append(groups, upTo999(int(n)))
	}
	return strings.Join(groups, " e ")
}

func upTo999(n int) string {
	if n == 100 {
		return "cem"
	}
	var words []string
	if n >= 100 {
		words = append(words, hundreds[n/100])
		n %= 100
	}
	switch {
	case n >= 20:
		words = append(words, tens[n/10])
		if n%10 > 0 {
			words = append(words, units[n%10])
		}
	case n >= 10:
		words = append(words, teens[n-10])
	case n > 0:
		words = append(words, units[n])
	}
	return strings.Join(words, " e ")
}
