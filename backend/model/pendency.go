package model

// Pendency is a mandatory field missing from a contract.
type Pendency struct {
	Contract    string `json:"contrato"`
	Field       string `json:"campo"`
	Description string `json:"descricao"`
	Note        string `json:"observacao,omitempty"`
}

// PendencyReport is the pre-flight summary of a spreadsheet.
type PendencyReport struct {
	Total      int        `json:"total_contratos"`
	Complete   int        `json:"contratos_completos"`
	Pending    int        `json:"contratos_pendentes"`
	Pendencies []Pendency `json:"pendencias"`
	// Notes are non-blocking, such as contracts without a print.
	Notes []Pendency `json:"observacoes"`
}
