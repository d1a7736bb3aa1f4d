package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddressString(t *testing.T) {
	tests := []struct {
		name     string
		address  Address
		expected string
	}{
		{"full", Address{"Rua A, 10", "Apto 2", "Centro", "Rio de Janeiro", "20000-000"}, "Rua A, 10, Apto 2, Centro, Rio de Janeiro, CEP 20000-000"},
		{"skips empty parts", Address{Street: "Rua B", City: "Niterói"}, "Rua B, Niterói"},
		{"zip only", Address{ZipCode: "01000-000"}, "CEP 01000-000"},
		{"empty", Address{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.address.String(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}

	if !(Address{Street: "  "}).IsZero() {
		t.Error("Expected blank address to be zero")
	}
}

func TestPartyListPairsByIndex(t *testing.T) {
	list := PartyList{
		Names: []string{"Ana Silva", "Bruno Costa"},
		CPFs:  []string{"123.456.789-01"},
	}

	parties := list.Parties()
	if len(parties) != 2 {
		t.Fatalf("Expected 2 parties, got %d", len(parties))
	}
	if parties[0].CPF != "123.456.789-01" {
		t.Errorf("Expected first CPF paired, got '%s'", parties[0].CPF)
	}
	if parties[1].Name != "Bruno Costa" || parties[1].CPF != "" {
		t.Errorf("Expected padded second party, got %+v", parties[1])
	}
	if !list.Misaligned() {
		t.Error("Expected 2 names and 1 CPF to be misaligned")
	}

	aligned := PartyList{Names: []string{"A"}, CPFs: []string{"1"}}
	if aligned.Misaligned() {
		t.Error("Expected aligned list")
	}
	if (PartyList{}).Len() != 0 {
		t.Error("Expected empty list to have no parties")
	}
}

func TestMonthlyTotalAndClaimValue(t *testing.T) {
	rec := &ContractRecord{
		Rent:     NewAmount(decimal.NewFromInt(1500)),
		CondoFee: NewAmount(decimal.NewFromInt(300)),
	}

	if got := rec.MonthlyTotal(); !got.Valid || !got.Value.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("Expected monthly total 1800, got %v", got)
	}
	if got := rec.ClaimValue(); !got.Valid || !got.Value.Equal(decimal.NewFromInt(21600)) {
		t.Errorf("Expected claim value 21600, got %v", got)
	}

	empty := &ContractRecord{}
	if empty.MonthlyTotal().Valid || empty.ClaimValue().Valid {
		t.Error("Expected no monthly total without charges")
	}

	zero := &ContractRecord{Rent: NewAmount(decimal.Zero)}
	if !zero.ClaimValue().Valid {
		t.Error("Expected a parsed zero to count as present")
	}
}

func TestJobRecord(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobRunning, Total: 3}
	job.Record(Outcome{Contract: "1", Status: OutcomeOK, File: "1.docx"})
	job.Record(Outcome{Contract: "2", Status: OutcomeError, Reason: "missing fields: tenant_cpfs"})
	job.Record(Outcome{Contract: "3", Status: OutcomeOK, File: "3.docx"})

	if job.Processed != 3 {
		t.Errorf("Expected 3 processed, got %d", job.Processed)
	}
	if job.Success+job.Failure != job.Total {
		t.Errorf("Expected success+failure == total, got %d+%d != %d", job.Success, job.Failure, job.Total)
	}
	if job.Failure != 1 {
		t.Errorf("Expected 1 failure, got %d", job.Failure)
	}
}

func TestJobClone(t *testing.T) {
	job := &Job{ID: "job-1", Outcomes: []Outcome{{Contract: "1", Warnings: []string{"w"}}}}
	c := job.Clone()
	c.Outcomes[0].Warnings[0] = "changed"
	c.Outcomes[0].Contract = "2"

	if job.Outcomes[0].Warnings[0] != "w" || job.Outcomes[0].Contract != "1" {
		t.Error("Expected clone to share nothing with the original")
	}
}

func TestStatusConstants(t *testing.T) {
	statuses := []string{JobPending, JobRunning, JobCompleted, JobFailed}
	expected := []string{"pending", "running", "completed", "failed"}

	for i, status := range statuses {
		if status != expected[i] {
			t.Errorf("Expected '%s', got '%s'", expected[i], status)
		}
	}
	if !ValidTemplateStatus(TemplateInactive) || ValidTemplateStatus("archived") {
		t.Error("Unexpected template status validation")
	}
}
