package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary cell. Valid is false when the cell was blank or unparsable.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount returns a present amount.
func NewAmount(v decimal.Decimal) Amount {
	return Amount{Value: v, Valid: true}
}

// Address is a property address from the address tab.
type Address struct {
	Street       string
	Complement   string
	Neighborhood string
	City         string
	ZipCode      string
}

// String joins the non-empty parts, e.g. "Rua A, 10, Apto 2, Centro, Rio de Janeiro, CEP 20000-000".
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.Complement, a.Neighborhood, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if zip := strings.TrimSpace(a.ZipCode); zip != "" {
		parts = append(parts, "CEP "+zip)
	}
	return strings.Join(parts, ", ")
}

func (a Address) IsZero() bool {
	return a.String() == ""
}

// Party is one person of a contract side, assembled from the multi-valued columns.
type Party struct {
	Name    string
	CPF     string
	RG      string
	Email   string
	Phone   string
	Address string
}

// PartyList keeps the multi-valued columns of one contract side as read.
type PartyList struct {
	Names     []string
	CPFs      []string
	RGs       []string
	Emails    []string
	Phones    []string
	Addresses []string
}

func (l PartyList) columns() [][]string {
	return [][]string{l.Names, l.CPFs, l.RGs, l.Emails, l.Phones, l.Addresses}
}

// Len is the size of the longest column.
func (l PartyList) Len() int {
	n := 0
	for _, c := range l.columns() {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// Parties pairs the columns by position; shorter columns are padded with empty values.
func (l PartyList) Parties() []Party {
	n := l.Len()
	out := make([]Party, n)
	at := func(s []string, i int) string {
		if i < len(s) {
			return s[i]
		}
		return ""
	}
	for i := range out {
		out[i] = Party{
			Name:    at(l.Names, i),
			CPF:     at(l.CPFs, i),
			RG:      at(l.RGs, i),
			Email:   at(l.Emails, i),
			Phone:   at(l.Phones, i),
			Address: at(l.Addresses, i),
		}
	}
	return out
}

// Misaligned reports whether a filled column has a different size than the names column.
func (l PartyList) Misaligned() bool {
	for _, c := range l.columns()[1:] {
		if len(c) > 0 && len(c) != len(l.Names) {
			return true
		}
	}
	return false
}

// ContractRecord is one normalized spreadsheet row joined with its address.
type ContractRecord struct {
	Number   string
	Tenants  PartyList
	Owners   PartyList
	Property Address
	City     string

	Rent         Amount
	CondoFee     Amount
	PropertyTax  Amount
	Insurance    Amount
	HistoricDebt Amount
	UpdatedDebt  Amount

	// Raw holds the row cells by lower-cased header.
	Raw      map[string]string
	Warnings []string
}

// MonthlyTotal sums the monthly charges that are present.
func (r *ContractRecord) MonthlyTotal() Amount {
	total := decimal.Zero
	valid := false
	for _, a := range []Amount{r.Rent, r.CondoFee, r.PropertyTax, r.Insurance} {
		if a.Valid {
			total = total.Add(a.Value)
			valid = true
		}
	}
	return Amount{Value: total, Valid: valid}
}

// ClaimValue is twelve times the monthly total.
func (r *ContractRecord) ClaimValue() Amount {
	m := r.MonthlyTotal()
	if !m.Valid {
		return m
	}
	return NewAmount(m.Value.Mul(decimal.NewFromInt(12)))
}

func (r *ContractRecord) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
