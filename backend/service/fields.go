package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/format"
)

// fieldCtx is everything a field value may be computed from.
type fieldCtx struct {
	rec        *model.ContractRecord
	office     config.OfficeConfig
	connective string
	missing    string
	now        time.Time
}

// field computes one value. ok is false when the data behind it is absent.
type field struct {
	description string
	value       func(fc *fieldCtx) (string, bool)
}

// fields is the catalog of known field keys.
var fields = map[string]field{
	"tenant_names":    {"Nome do Inquilino", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Tenants.Names) }},
	"tenant_cpfs":     {"CPF do Inquilino", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Tenants.CPFs) }},
	"tenant_emails":   {"E-mail do Inquilino", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Tenants.Emails) }},
	"tenant_phones":   {"Telefone do Inquilino", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Tenants.Phones) }},
	"tenant_block":    {"Qualificação dos Inquilinos", func(fc *fieldCtx) (string, bool) { return fc.tenantBlock() }},
	"owner_names":     {"Nome do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.Names) }},
	"owner_cpfs":      {"CPF do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.CPFs) }},
	"owner_rgs":       {"RG do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.RGs) }},
	"owner_emails":    {"E-mail do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.Emails) }},
	"owner_phones":    {"Telefone do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.Phones) }},
	"owner_addresses": {"Endereço do Locador", func(fc *fieldCtx) (string, bool) { return fc.list(fc.rec.Owners.Addresses) }},
	"owner_block":     {"Qualificação dos Locadores", func(fc *fieldCtx) (string, bool) { return fc.ownerBlock() }},

	"contract_number":  {"Número do Contrato", func(fc *fieldCtx) (string, bool) { return fc.rec.Number, fc.rec.Number != "" }},
	"property_address": {"Endereço do Imóvel", func(fc *fieldCtx) (string, bool) { return present(fc.rec.Property.String()) }},
	"city":             {"Cidade", func(fc *fieldCtx) (string, bool) { return present(fc.rec.City) }},
	"date":             {"Data", func(fc *fieldCtx) (string, bool) { return format.LongDate(fc.now), true }},
	"city_date":        {"Cidade e Data", func(fc *fieldCtx) (string, bool) { return fc.cityDate() }},

	"rent":                 {"Valor do Aluguel", money(func(r *model.ContractRecord) model.Amount { return r.Rent })},
	"condo_fee":            {"Valor do Condomínio", money(func(r *model.ContractRecord) model.Amount { return r.CondoFee })},
	"iptu":                 {"Valor do IPTU", money(func(r *model.ContractRecord) model.Amount { return r.PropertyTax })},
	"insurance":            {"Valor do Seguro Incêndio", money(func(r *model.ContractRecord) model.Amount { return r.Insurance })},
	"monthly_total":        {"Valor Mensal", money((*model.ContractRecord).MonthlyTotal)},
	"claim_value":          {"Valor da Causa", money((*model.ContractRecord).ClaimValue)},
	"claim_value_words":    {"Valor da Causa por Extenso", words((*model.ContractRecord).ClaimValue)},
	"claim_value_full":     {"Valor da Causa com Extenso", moneyAndWords((*model.ContractRecord).ClaimValue)},
	"historic_value":       {"Valor Histórico do Débito", money(func(r *model.ContractRecord) model.Amount { return r.HistoricDebt })},
	"historic_value_words": {"Valor Histórico por Extenso", words(func(r *model.ContractRecord) model.Amount { return r.HistoricDebt })},
	"historic_value_full":  {"Valor Histórico com Extenso", moneyAndWords(func(r *model.ContractRecord) model.Amount { return r.HistoricDebt })},
	"updated_value":        {"Valor Atualizado do Débito", money(func(r *model.ContractRecord) model.Amount { return r.UpdatedDebt })},
	"updated_value_words":  {"Valor Atualizado por Extenso", words(func(r *model.ContractRecord) model.Amount { return r.UpdatedDebt })},
	"updated_value_full":   {"Valor Atualizado com Extenso", moneyAndWords(func(r *model.ContractRecord) model.Amount { return r.UpdatedDebt })},

	"lawyer_name":         {"Nome do Advogado", func(fc *fieldCtx) (string, bool) { return present(fc.office.LawyerName) }},
	"lawyer_oab":          {"OAB do Advogado", func(fc *fieldCtx) (string, bool) { return present(fc.office.LawyerOAB) }},
	"office_phone":        {"Telefone do Escritório", func(fc *fieldCtx) (string, bool) { return present(fc.office.Phone) }},
	"office_whatsapp":     {"WhatsApp do Escritório", func(fc *fieldCtx) (string, bool) { return present(fc.office.WhatsApp) }},
	"office_email":        {"E-mail do Escritório", func(fc *fieldCtx) (string, bool) { return present(fc.office.Email) }},
	"office_notice_email": {"E-mail para Intimações", func(fc *fieldCtx) (string, bool) { return fc.noticeEmail() }},
	"office_address":      {"Endereço do Escritório", func(fc *fieldCtx) (string, bool) { return present(fc.office.Address) }},
	"nationality":         {"Nacionalidade", func(fc *fieldCtx) (string, bool) { return present(fc.office.Nationality) }},
}

// DefaultPlaceholders maps the tokens of the standard templates to field keys.
var DefaultPlaceholders = map[string]string{
	"(NOME DO INQUILINO)":            "tenant_names",
	"(CPF DO INQUILINO)":             "tenant_cpfs",
	"(E-MAIL DO INQUILINO)":          "tenant_emails",
	"(TELEFONE DO INQUILINO)":        "tenant_phones",
	"(QUALIFICAÇÃO DOS INQUILINOS)":  "tenant_block",
	"(NOME DO LOCADOR)":              "owner_names",
	"(CPF DO LOCADOR)":               "owner_cpfs",
	"(RG DO LOCADOR)":                "owner_rgs",
	"(E-MAIL DO LOCADOR)":            "owner_emails",
	"(TELEFONE DO LOCADOR)":          "owner_phones",
	"(ENDEREÇO DO LOCADOR)":          "owner_addresses",
	"(QUALIFICAÇÃO DOS LOCADORES)":   "owner_block",
	"(NÚMERO DO CONTRATO)":           "contract_number",
	"(ENDEREÇO DO IMÓVEL)":           "property_address",
	"(CIDADE)":                       "city",
	"(DATA)":                         "date",
	"(VALOR DO ALUGUEL)":             "rent",
	"(VALOR DO CONDOMÍNIO)":          "condo_fee",
	"(VALOR DO IPTU)":                "iptu",
	"(VALOR DO SEGURO INCÊNDIO)":     "insurance",
	"(VALOR MENSAL)":                 "monthly_total",
	"(VALOR DA CAUSA)":               "claim_value",
	"(VALOR DA CAUSA POR EXTENSO)":   "claim_value_words",
	"(VALOR HISTÓRICO)":              "historic_value",
	"(VALOR HISTÓRICO POR EXTENSO)":  "historic_value_words",
	"(VALOR ATUALIZADO)":             "updated_value",
	"(VALOR ATUALIZADO POR EXTENSO)": "updated_value_words",
	"(NOME DO ADVOGADO)":             "lawyer_name",
	"(OAB DO ADVOGADO)":              "lawyer_oab",

	"(inserir o endereço completo do imóvel locado objeto do contrato: Rua/Avenida, número, complemento, Cidade, UF e CEP)": "property_address",
	"(inserir o endereço completo dos Inquilinos)": "property_address",
	"R$XXXXXX (escrever o valor por extenso)": "historic_value_full",
	"R$00.000,00 (inserir o valor por extenso)": "claim_value_full",
	"Cidade, dia de mês de 2025.": "city_date",
	"(DDD) XXXX-YYYY": "office_phone",
	"(DDD) 9XXXX-YYYY": "office_whatsapp",
	"inserir o e-mail do escritório ou assessoria de cobrança": "office_email",
	"(inserir o nome do advogado responsável do escritório)": "lawyer_name",
	"XXX.XXX": "lawyer_oab",
	"(inserir o endereço comercial do escritório)": "office_address",
	"(inserir o e-mail oficial do escritório para recebimento de intimações)": "office_notice_email",
}

// FieldKeys returns the known field keys with their descriptions.
func FieldKeys() map[string]string {
	out := make(map[string]string, len(fields))
	for k, f := range fields {
		out[k] = f.description
	}
	return out
}

func present(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func (fc *fieldCtx) list(items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	return format.Enumerate(items, fc.connective), true
}

func (fc *fieldCtx) or(s string) string {
	if strings.TrimSpace(s) == "" {
		return fc.missing
	}
	return s
}

func (fc *fieldCtx) nationality() string {
	if fc.office.Nationality != "" {
		return fc.office.Nationality
	}
	return "brasileiro(a)"
}

func (fc *fieldCtx) tenantBlock() (string, bool) {
	parties := fc.rec.Tenants.Parties()
	if len(fc.rec.Tenants.Names) == 0 {
		return "", false
	}
	blocks := make([]string, 0, len(parties))
	for _, p := range parties {
		blocks = append(blocks, fmt.Sprintf("%s, %s, inscrito(a) no CPF sob o n.º %s, telefone %s, e-mail %s",
			strings.ToUpper(fc.or(p.Name)), fc.nationality(), fc.or(p.CPF), fc.or(p.Phone), fc.or(p.Email)))
	}
	return format.Enumerate(blocks, fc.connective), true
}

func (fc *fieldCtx) ownerBlock() (string, bool) {
	parties := fc.rec.Owners.Parties()
	if len(fc.rec.Owners.Names) == 0 {
		return "", false
	}
	blocks := make([]string, 0, len(parties))
	for _, p := range parties {
		b := fmt.Sprintf("%s, %s, inscrito(a) no CPF sob o n.º %s", strings.ToUpper(fc.or(p.Name)), fc.nationality(), fc.or(p.CPF))
		if p.RG != "" {
			b += " e no RG n.º " + p.RG
		}
		b += fmt.Sprintf(", residente e domiciliado(a) à %s, com endereço eletrônico %s", fc.or(p.Address), fc.or(p.Email))
		blocks = append(blocks, b)
	}
	return format.Enumerate(blocks, fc.connective), true
}

func (fc *fieldCtx) cityDate() (string, bool) {
	city := strings.TrimSpace(fc.rec.City)
	if city == "" {
		return "", false
	}
	return fmt.Sprintf("%s, %s.", city, format.LongDate(fc.now)), true
}

func (fc *fieldCtx) noticeEmail() (string, bool) {
	if v, ok := present(fc.office.NoticeEmail); ok {
		return v, true
	}
	return present(fc.office.Email)
}

type amountOf func(*model.ContractRecord) model.Amount

func money(get amountOf) func(*fieldCtx) (string, bool) {
	return func(fc *fieldCtx) (string, bool) {
		a := get(fc.rec)
		if !a.Valid {
			return "", false
		}
		return format.Currency(a.Value), true
	}
}

func words(get amountOf) func(*fieldCtx) (string, bool) {
	return func(fc *fieldCtx) (string, bool) {
		a := get(fc.rec)
		if !a.Valid {
			return "", false
		}
		return format.AmountInWords(a.Value), true
	}
}

func moneyAndWords(get amountOf) func(*fieldCtx) (string, bool) {
	return func(fc *fieldCtx) (string, bool) {
		a := get(fc.rec)
		if !a.Valid {
			return "", false
		}
		return fmt.Sprintf("%s (%s)", format.Currency(a.Value), format.AmountInWords(a.Value)), true
	}
}
