package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/format"
	"github.com/AnTengye/contractgen/backend/pkg/logger"
)

// Column names, compared after trimming and lower-casing the header row.
const (
	colContract       = "contrato"
	colTenantNames    = "nome inqs"
	colTenantEmails   = "email inqs"
	colTenantPhones   = "tel inqs"
	colTenantCPFs     = "cpf_iqs"
	colOwnerNames     = "nome pps"
	colOwnerEmails    = "email pps"
	colOwnerPhones    = "tel pp"
	colOwnerCPFs      = "cpf_pps"
	colOwnerRGs       = "rg_pps"
	colOwnerAddress   = "endereco_pps"
	colCity           = "cidade"
	colRent           = "valor_aluguel"
	colCondoFee       = "valor_condominio"
	colPropertyTax    = "valor_iptu"
	colInsurance      = "valor_seguro_incendio"
	colHistoricDebt   = "valor_historico"
	colUpdatedDebt    = "valor_atualizado"
	colAddrContract   = "contract"
	colAddrStreet     = "house_address"
	colAddrComplement = "house_complement"
	colAddrNeighbor   = "house_neighborhood"
	colAddrCity       = "house_city"
	colAddrZip        = "house_zipcode"
)

// fieldColumns is the base-tab column each mandatory field is read from.
// Fields with another source (address tab, office defaults) have no entry.
var fieldColumns = map[string]string{
	"tenant_names":    colTenantNames,
	"tenant_cpfs":     colTenantCPFs,
	"tenant_emails":   colTenantEmails,
	"tenant_phones":   colTenantPhones,
	"owner_names":     colOwnerNames,
	"owner_cpfs":      colOwnerCPFs,
	"owner_rgs":       colOwnerRGs,
	"owner_emails":    colOwnerEmails,
	"owner_phones":    colOwnerPhones,
	"owner_addresses": colOwnerAddress,
	"rent":            colRent,
	"condo_fee":       colCondoFee,
	"iptu":            colPropertyTax,
	"insurance":       colInsurance,
	"historic_value":  colHistoricDebt,
	"updated_value":   colUpdatedDebt,
}

// ReadOptions selects tabs and contracts. Empty sheet names fall back to the
// configured names, then to detection by tab name.
type ReadOptions struct {
	BaseSheet    string
	AddressSheet string
	// Filter keeps only these contract numbers when not empty.
	Filter []string
}

// SpreadsheetReader turns a workbook into contract records.
type SpreadsheetReader struct {
	cfg      config.SpreadsheetConfig
	office   OfficeSource
	required []string
}

// NewSpreadsheetReader builds a reader whose base tab must carry the column
// of every mandatory field, in policy order.
func NewSpreadsheetReader(cfg config.SpreadsheetConfig, mandatory []string, office OfficeSource) *SpreadsheetReader {
	r := &SpreadsheetReader{cfg: cfg, office: office}
	seen := map[string]bool{colContract: true}
	for _, key := range mandatory {
		if col, ok := fieldColumns[key]; ok && !seen[col] {
			seen[col] = true
			r.required = append(r.required, col)
		}
	}
	return r
}

type sheetTable struct {
	name   string
	header []string
	rows   []map[string]string
	lines  []int // 1-based sheet row of each entry in rows
}

func (t *sheetTable) has(column string) bool {
	for _, h := range t.header {
		if h == column {
			return true
		}
	}
	return false
}

// Read returns the eligible records in sheet order.
func (r *SpreadsheetReader) Read(ctx context.Context, content []byte, opts ReadOptions) ([]*model.ContractRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{What: "spreadsheet", Err: err}
	}
	defer f.Close()

	baseName, addrName, err := r.pickSheets(f.GetSheetList(), opts)
	if err != nil {
		return nil, err
	}

	base, err := readTable(f, baseName)
	if err != nil {
		return nil, err
	}
	for _, col := range append([]string{colContract}, r.required...) {
		if !base.has(col) {
			return nil, &SpreadsheetFormatError{Sheet: baseName, Column: col}
		}
	}

	addresses := map[string]model.Address{}
	if addrName != "" {
		addr, err := readTable(f, addrName)
		if err != nil {
			return nil, err
		}
		if !addr.has(colAddrContract) {
			return nil, &SpreadsheetFormatError{Sheet: addrName, Column: colAddrContract}
		}
		for _, row := range addr.rows {
			num, ok := normalizeContractNumber(row[colAddrContract])
			if !ok {
				continue
			}
			if _, dup := addresses[num]; dup {
				continue
			}
			addresses[num] = model.Address{
				Street:       row[colAddrStreet],
				Complement:   row[colAddrComplement],
				Neighborhood: row[colAddrNeighbor],
				City:         row[colAddrCity],
				ZipCode:      row[colAddrZip],
			}
		}
	}

	var filter map[string]bool
	if len(opts.Filter) > 0 {
		filter = make(map[string]bool, len(opts.Filter))
		for _, n := range opts.Filter {
			if num, ok := normalizeContractNumber(n); ok {
				filter[num] = true
			}
		}
	}

	seen := make(map[string]bool)
	var records []*model.ContractRecord
	for i, row := range base.rows {
		raw := row[colContract]
		num, ok := normalizeContractNumber(raw)
		if !ok {
			logger.Warn(ctx, "skipping row without a valid contract number",
				"sheet", baseName, "row", base.lines[i], "value", raw)
			continue
		}
		if filter != nil && !filter[num] {
			continue
		}
		if seen[num] {
			logger.Warn(ctx, "duplicate contract number, keeping the first row",
				"sheet", baseName, "row", base.lines[i], "contract", num)
			continue
		}
		seen[num] = true
		records = append(records, r.record(num, row, addresses[num]))
	}
	return records, nil
}

// ListContracts returns the eligible contract numbers in sheet order.
func (r *SpreadsheetReader) ListContracts(ctx context.Context, content []byte, opts ReadOptions) ([]string, error) {
	records, err := r.Read(ctx, content, opts)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Number
	}
	return out, nil
}

func (r *SpreadsheetReader) pickSheets(sheets []string, opts ReadOptions) (base, addr string, err error) {
	exists := func(name string) bool {
		for _, s := range sheets {
			if s == name {
				return true
			}
		}
		return false
	}

	base = firstNonEmpty(opts.BaseSheet, r.cfg.BaseSheet)
	if base != "" && !exists(base) {
		return "", "", &SpreadsheetFormatError{Sheet: base, Reason: "sheet not found"}
	}
	addr = firstNonEmpty(opts.AddressSheet, r.cfg.AddressSheet)
	if addr != "" && !exists(addr) {
		return "", "", &SpreadsheetFormatError{Sheet: addr, Reason: "sheet not found"}
	}

	for _, s := range sheets {
		lower := strings.ToLower(s)
		switch {
		case strings.Contains(lower, "endere"):
			if addr == "" {
				addr = s
			}
		case strings.Contains(lower, "contato") || strings.Contains(lower, "base"):
			if base == "" {
				base = s
			}
		}
	}
	if base == "" {
		return "", "", &SpreadsheetFormatError{Reason: "no contacts sheet (name containing 'contato' or 'base')"}
	}
	return base, addr, nil
}

func (r *SpreadsheetReader) record(num string, row map[string]string, addr model.Address) *model.ContractRecord {
	rec := &model.ContractRecord{
		Number: num,
		Tenants: model.PartyList{
			Names:  splitValues(row[colTenantNames]),
			CPFs:   mapValues(splitValues(row[colTenantCPFs]), format.CPF),
			Emails: splitValues(row[colTenantEmails]),
			Phones: mapValues(splitValues(row[colTenantPhones]), format.Phone),
		},
		Owners: model.PartyList{
			Names:     splitValues(row[colOwnerNames]),
			CPFs:      mapValues(splitValues(row[colOwnerCPFs]), format.CPF),
			RGs:       mapValues(splitValues(row[colOwnerRGs]), trimFloatSuffix),
			Emails:    splitValues(row[colOwnerEmails]),
			Phones:    mapValues(splitValues(row[colOwnerPhones]), format.Phone),
			Addresses: splitAddresses(row[colOwnerAddress]),
		},
		Property: addr,
		City:     row[colCity],
		Raw:      row,
	}
	if rec.City == "" {
		rec.City = r.office.Office().DefaultCity
	}

	for _, m := range []struct {
		col string
		dst *model.Amount
	}{
		{colRent, &rec.Rent},
		{colCondoFee, &rec.CondoFee},
		{colPropertyTax, &rec.PropertyTax},
		{colInsurance, &rec.Insurance},
		{colHistoricDebt, &rec.HistoricDebt},
		{colUpdatedDebt, &rec.UpdatedDebt},
	} {
		cell := row[m.col]
		if cell == "" {
			continue
		}
		v, ok := format.ParseAmount(cell)
		if !ok {
			rec.Warn(fmt.Sprintf("%s: unreadable amount %q", m.col, cell))
			continue
		}
		*m.dst = model.NewAmount(v)
	}

	if rec.Tenants.Misaligned() {
		rec.Warn(misalignment("tenant", rec.Tenants))
	}
	if rec.Owners.Misaligned() {
		rec.Warn(misalignment("owner", rec.Owners))
	}
	return rec
}

func misalignment(side string, l model.PartyList) string {
	return fmt.Sprintf("%s columns differ in size: %d names, %d CPFs, %d RGs, %d e-mails, %d phones, %d addresses",
		side, len(l.Names), len(l.CPFs), len(l.RGs), len(l.Emails), len(l.Phones), len(l.Addresses))
}

func readTable(f *excelize.File, sheet string) (*sheetTable, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{What: "sheet " + sheet, Err: err}
	}
	t := &sheetTable{name: sheet}
	if len(rows) == 0 {
		return t, nil
	}
	t.header = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		t.header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for n, cells := range rows[1:] {
		row := make(map[string]string, len(t.header))
		empty := true
		for i, h := range t.header {
			if h == "" || i >= len(cells) {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			v := strings.TrimSpace(cells[i])
			row[h] = v
			if v != "" {
				empty = false
			}
		}
		if !empty {
			t.rows = append(t.rows, row)
			t.lines = append(t.lines, n+2)
		}
	}
	return t, nil
}

// normalizeContractNumber accepts digit strings and whole numbers written as
// floats ("61796.0"), which is how numeric cells often come back.
func normalizeContractNumber(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if strings.ContainsAny(s, ".eE") {
		d, err := decimal.NewFromString(s)
		if err != nil || !d.IsInteger() || d.IsNegative() {
			return "", false
		}
		s = d.String()
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return s, true
}

func splitOn(s string, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitValues splits multi-valued cells on "/", ";", "|" and line breaks.
func splitValues(s string) []string { return splitOn(s, "/;|\n\r") }

// splitAddresses keeps "/" inside addresses ("Rua A, 10/201").
func splitAddresses(s string) []string { return splitOn(s, ";|\n\r") }

func mapValues(in []string, fn func(string) string) []string {
	for i, v := range in {
		in[i] = fn(v)
	}
	return in
}

func trimFloatSuffix(s string) string {
	return strings.TrimSuffix(s, ".0")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
