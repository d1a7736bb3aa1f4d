package model

import (
	"time"
)

// Job is the report of one batch generation run.
type Job struct {
	ID          string     `json:"job_id"`
	Status      string     `json:"status"` // pending, running, completed, failed
	TemplateID  string     `json:"template_id"`
	Total       int        `json:"total_contratos"`
	Processed   int        `json:"processados"`
	Success     int        `json:"sucessos"`
	Failure     int        `json:"falhas"`
	Outcomes    []Outcome  `json:"resultados"`
	ArchivePath string     `json:"-"`
	DownloadURL string     `json:"download_url,omitempty"`
	Message     string     `json:"mensagem"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Outcome is the result of one contract of a job.
type Outcome struct {
	Contract string   `json:"contrato"`
	Status   string   `json:"status"` // ok, error
	Reason   string   `json:"motivo,omitempty"`
	File     string   `json:"arquivo,omitempty"`
	Warnings []string `json:"avisos,omitempty"`
}

// Job status constants
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Outcome status constants
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Record appends an outcome and keeps the counters in step.
func (j *Job) Record(o Outcome) {
	j.Outcomes = append(j.Outcomes, o)
	j.Processed++
	if o.Status == OutcomeOK {
		j.Success++
	} else {
		j.Failure++
	}
}

// Finished reports whether the job reached a terminal status.
func (j *Job) Finished() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// Clone returns a deep copy safe to hand out of a store.
func (j *Job) Clone() *Job {
	c := *j
	c.Outcomes = make([]Outcome, len(j.Outcomes))
	for i, o := range j.Outcomes {
		o.Warnings = append([]string(nil), o.Warnings...)
		c.Outcomes[i] = o
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
