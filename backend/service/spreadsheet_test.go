package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnTengye/contractgen/backend/config"
)

func newTestReader(t *testing.T) *SpreadsheetReader {
	t.Helper()
	return NewSpreadsheetReader(config.SpreadsheetConfig{}, config.DefaultMandatoryFields, StaticOffice(config.OfficeConfig{DefaultCity: "Rio de Janeiro"}))
}

func TestReadNormalizesRecords(t *testing.T) {
	content := workbook(t, contractRow("61796.0", "Ana Silva / Bruno Costa"))

	records, err := newTestReader(t).Read(context.Background(), content, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "61796", rec.Number)
	assert.Equal(t, []string{"Ana Silva", "Bruno Costa"}, rec.Tenants.Names)
	assert.Equal(t, []string{"123.456.789-00", "987.654.321-00"}, rec.Tenants.CPFs)
	assert.Equal(t, []string{"111.222.333-44"}, rec.Owners.CPFs)
	assert.Equal(t, []string{"Rua B, 20"}, rec.Owners.Addresses)
	assert.Equal(t, "Rua A, 10, Apto 2, Centro, Rio de Janeiro, CEP 20000-000", rec.Property.String())
	assert.Equal(t, "Niterói", rec.City)
	assert.True(t, rec.Rent.Valid)
	assert.Equal(t, "1500", rec.Rent.Value.String())
	assert.Equal(t, "3500.5", rec.UpdatedDebt.Value.String())
	assert.False(t, rec.CondoFee.Valid)
	assert.Empty(t, rec.Warnings)
}

func TestReadSkipsInvalidAndDuplicateNumbers(t *testing.T) {
	content := workbook(t,
		contractRow("100", "Primeira"),
		contractRow("", "Sem número"),
		contractRow("ABC", "Texto"),
		contractRow("100.0", "Duplicada"),
		contractRow("200", "Segunda"),
	)

	records, err := newTestReader(t).Read(context.Background(), content, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100", records[0].Number)
	assert.Equal(t, []string{"Primeira"}, records[0].Tenants.Names)
	assert.Equal(t, "200", records[1].Number)
	assert.True(t, records[1].Property.IsZero())
}

func TestReadFilter(t *testing.T) {
	content := workbook(t, contractRow("100", "A"), contractRow("200", "B"), contractRow("300", "C"))
	r := newTestReader(t)

	records, err := r.Read(context.Background(), content, ReadOptions{Filter: []string{"300", "100.0"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100", records[0].Number)
	assert.Equal(t, "300", records[1].Number)

	records, err = r.Read(context.Background(), content, ReadOptions{Filter: []string{"999"}})
	require.NoError(t, err)
	assert.Empty(t, records)

	numbers, err := r.ListContracts(context.Background(), content, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200", "300"}, numbers)
}

func TestReadWarnings(t *testing.T) {
	row := contractRow("100", "Ana / Bruno")
	row[2] = "12345678900"
	row[8] = "mil reais"
	row[7] = ""

	records, err := newTestReader(t).Read(context.Background(), workbook(t, row), ReadOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.False(t, rec.Rent.Valid)
	assert.Equal(t, "Rio de Janeiro", rec.City)
	require.Len(t, rec.Warnings, 2)
	assert.Contains(t, rec.Warnings[0], "valor_aluguel")
	assert.Contains(t, rec.Warnings[1], "tenant columns differ")
	assert.Len(t, rec.Tenants.Parties(), 2)
}

func TestReadFormatErrors(t *testing.T) {
	r := newTestReader(t)
	ctx := context.Background()

	_, err := r.Read(ctx, []byte("not a workbook"), ReadOptions{})
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	noContract := buildWorkbook(t, sheet{name: "Contatos", rows: [][]string{{"Nome Inqs"}, {"Ana"}}})
	_, err = r.Read(ctx, noContract, ReadOptions{})
	var fe *SpreadsheetFormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "contrato", fe.Column)
	assert.True(t, IsClientError(err))

	noBase := buildWorkbook(t, sheet{name: "Planilha", rows: [][]string{{"Contrato"}, {"1"}}})
	_, err = r.Read(ctx, noBase, ReadOptions{})
	assert.ErrorAs(t, err, &fe)

	_, err = r.Read(ctx, workbook(t, contractRow("1", "A")), ReadOptions{AddressSheet: "Inexistente"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Inexistente", fe.Sheet)

	_, err = r.Read(ctx, noBase, ReadOptions{BaseSheet: "Planilha"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Planilha", fe.Sheet)
	assert.Equal(t, "nome inqs", fe.Column)

	renamed := buildWorkbook(t, sheet{name: "Planilha", rows: [][]string{baseHeader, contractRow("1", "A")}})
	records, err := r.Read(ctx, renamed, ReadOptions{BaseSheet: "Planilha"})
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestReadRequiresMandatoryColumns(t *testing.T) {
	ctx := context.Background()
	header := append([]string(nil), baseHeader...)
	header[10] = "Valor_Corrigido"
	content := buildWorkbook(t, sheet{name: "Base Contatos", rows: [][]string{header, contractRow("100", "Ana")}})

	_, err := newTestReader(t).Read(ctx, content, ReadOptions{})
	var fe *SpreadsheetFormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "valor_atualizado", fe.Column)

	onlyNames := NewSpreadsheetReader(config.SpreadsheetConfig{}, []string{"tenant_names", "city"}, StaticOffice(config.OfficeConfig{}))
	records, err := onlyNames.Read(ctx, content, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	loose := buildWorkbook(t, sheet{name: "Contatos", rows: [][]string{{"Contrato", "Foo"}, {"100", "x"}}})
	_, err = newTestReader(t).Read(ctx, loose, ReadOptions{})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "nome inqs", fe.Column)
}

func TestNormalizeContractNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"61796", "61796", true},
		{"61796.0", "61796", true},
		{" 61796 ", "61796", true},
		{"6.1796E4", "61796", true},
		{"61796.5", "", false},
		{"-1", "", false},
		{"A123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalizeContractNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, splitValues("a / b; c|d"))
	assert.Equal(t, []string{"a", "b"}, splitValues("a\nb\n"))
	assert.Equal(t, []string{"Rua A, 10/201", "Rua B"}, splitAddresses("Rua A, 10/201; Rua B"))
	assert.Empty(t, splitValues("  "))
}
