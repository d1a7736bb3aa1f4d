package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF masks an 11-digit CPF as XXX.XXX.XXX-XX. Anything else is returned trimmed but untouched.
func CPF(raw string) string {
	raw = strings.TrimSpace(raw)
	d := digits(raw)
	if len(d) != 11 {
		return raw
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:])
}

// Phone masks Brazilian phone numbers, dropping the 55 country code when present.
// Spreadsheets often hand numbers back as floats, so a trailing ".0" is ignored.
func Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	d := digits(strings.TrimSuffix(raw, ".0"))
	if strings.HasPrefix(d, "55") && len(d) > 11 {
		d = d[2:]
	}
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:])
	case 9:
		return fmt.Sprintf("%s-%s", d[:5], d[5:])
	case 8:
		return fmt.Sprintf("%s-%s", d[:4], d[4:])
	}
	return raw
}

var months = []string{"", "janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// LongDate renders t as "19 de outubro de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()], t.Year())
}

// Enumerate joins items as a sentence: "A", "A e B", "A, B e C".
func Enumerate(items []string, connective string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + connective + " " + items[len(items)-1]
}
