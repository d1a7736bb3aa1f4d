package service

import (
	"fmt"
	"strings"

	"github.com/AnTengye/contractgen/backend/model"
)

// PendencyChecker reports mandatory fields a contract lacks.
type PendencyChecker struct {
	mandatory []string
	resolver  *Resolver
}

func NewPendencyChecker(mandatory []string, resolver *Resolver) (*PendencyChecker, error) {
	for _, key := range mandatory {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("mandatory field %q is not a known field", key)
		}
	}
	return &PendencyChecker{mandatory: mandatory, resolver: resolver}, nil
}

// Check lists the missing mandatory fields in policy order. An empty result means ready.
func (c *PendencyChecker) Check(rec *model.ContractRecord) []model.Pendency {
	fc := c.resolver.context(rec)
	var out []model.Pendency
	for _, key := range c.mandatory {
		f := fields[key]
		if _, ok := f.value(fc); ok {
			continue
		}
		out = append(out, model.Pendency{
			Contract:    rec.Number,
			Field:       key,
			Description: f.description,
			Note:        f.description + " não preenchido",
		})
	}
	return out
}

// Reason summarizes pendencies as a job outcome reason.
func Reason(pendencies []model.Pendency) string {
	keys := make([]string, len(pendencies))
	for i, p := range pendencies {
		keys[i] = p.Field
	}
	return "missing fields: " + strings.Join(keys, ", ")
}

// Report builds the pre-flight summary. Contracts without a print are notes, not pendencies.
func (c *PendencyChecker) Report(records []*model.ContractRecord, prints []model.Print) *model.PendencyReport {
	withPrint := make(map[string]bool, len(prints))
	for _, p := range prints {
		withPrint[p.ContractNumber] = true
	}

	report := &model.PendencyReport{
		Total:      len(records),
		Pendencies: []model.Pendency{},
		Notes:      []model.Pendency{},
	}
	for _, rec := range records {
		pend := c.Check(rec)
		if len(pend) == 0 {
			report.Complete++
		} else {
			report.Pending++
			report.Pendencies = append(report.Pendencies, pend...)
		}
		if !withPrint[rec.Number] {
			report.Notes = append(report.Notes, model.Pendency{
				Contract:    rec.Number,
				Field:       "print",
				Description: "Imagem da Cláusula",
				Note:        fmt.Sprintf("print do contrato %s não encontrado", rec.Number),
			})
		}
		for _, w := range rec.Warnings {
			report.Notes = append(report.Notes, model.Pendency{
				Contract:    rec.Number,
				Field:       "planilha",
				Description: "Aviso de leitura",
				Note:        w,
			})
		}
	}
	return report
}
