package model

// Print is the clause image of one contract. The file name stem is the contract number.
type Print struct {
	ContractNumber string `json:"contract_number"`
	Filename       string `json:"filename"`
	Format         string `json:"format"` // png, jpeg
	Size           int64  `json:"size_bytes"`
	Data           []byte `json:"-"`
}

func (p *Print) ContentType() string {
	if p.Format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
