package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/pkg/metrics"
)

// Request describes one batch generation.
type Request struct {
	TemplateID  string
	Spreadsheet []byte
	// Contracts limits the batch to these contract numbers when not empty.
	Contracts []string
	Options   ReadOptions
}

// BatchRunner generates one document per eligible contract of a spreadsheet
// and packs them into a single archive.
type BatchRunner struct {
	reader    *SpreadsheetReader
	extractor *Extractor
	resolver  *Resolver
	checker   *PendencyChecker
	generator *Generator
	templates TemplateSource
	prints    PrintSource
	jobs      *JobStore
}

func NewBatchRunner(cfg *config.Config, office OfficeSource, templates TemplateSource, prints PrintSource, jobs *JobStore) (*BatchRunner, error) {
	resolver, err := NewResolver(&cfg.Generation, office)
	if err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg.Generation.PlaceholderPatterns, resolver.Tokens())
	if err != nil {
		return nil, err
	}
	checker, err := NewPendencyChecker(cfg.Generation.MandatoryFields, resolver)
	if err != nil {
		return nil, err
	}
	return &BatchRunner{
		reader:    NewSpreadsheetReader(cfg.Spreadsheet, cfg.Generation.MandatoryFields, office),
		extractor: extractor,
		resolver:  resolver,
		checker:   checker,
		generator: NewGenerator(&cfg.Generation),
		templates: templates,
		prints:    prints,
		jobs:      jobs,
	}, nil
}

func (b *BatchRunner) Reader() *SpreadsheetReader { return b.reader }
func (b *BatchRunner) Extractor() *Extractor       { return b.extractor }
func (b *BatchRunner) Checker() *PendencyChecker   { return b.checker }
func (b *BatchRunner) Resolver() *Resolver         { return b.resolver }

// Pendencies builds the pre-flight report for a spreadsheet without generating anything.
func (b *BatchRunner) Pendencies(ctx context.Context, spreadsheet []byte, opts ReadOptions) (*model.PendencyReport, error) {
	records, err := b.reader.Read(ctx, spreadsheet, opts)
	if err != nil {
		return nil, err
	}
	prints, err := b.prints.List()
	if err != nil {
		return nil, err
	}
	return b.checker.Report(records, prints), nil
}

// Run executes a batch synchronously. Per-contract problems are recorded in the
// job outcomes. A whole-job failure returns the failed job together with its cause.
func (b *BatchRunner) Run(ctx context.Context, req Request) (*model.Job, error) {
	start := time.Now()
	job := &model.Job{
		ID:         uuid.New().String(),
		Status:     model.JobPending,
		TemplateID: req.TemplateID,
		Outcomes:   []model.Outcome{},
		CreatedAt:  start,
	}
	ctx = logger.WithTemplate(logger.WithJob(ctx, job.ID), req.TemplateID)
	b.jobs.Save(job)

	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()
	defer func() { metrics.JobDuration.Observe(time.Since(start).Seconds()) }()

	job.Status = model.JobRunning
	b.jobs.Save(job)
	logger.Info(ctx, "Job started", "contracts", len(req.Contracts))

	if err := b.run(ctx, job, req); err != nil {
		now := time.Now()
		job.Status = model.JobFailed
		job.Message = err.Error()
		job.CompletedAt = &now
		b.jobs.Save(job)
		metrics.JobsTotal.WithLabelValues(model.JobFailed).Inc()
		logger.Error(ctx, "Job failed", "error", err)
		return job, err
	}

	now := time.Now()
	job.Status = model.JobCompleted
	job.Message = fmt.Sprintf("%d de %d contratos gerados", job.Success, job.Total)
	if job.Success > 0 {
		job.DownloadURL = "/api/v1/contracts/download/" + job.ID
	}
	job.CompletedAt = &now
	b.jobs.Save(job)
	metrics.JobsTotal.WithLabelValues(model.JobCompleted).Inc()
	logger.Info(ctx, "Job completed",
		"total", job.Total, "success", job.Success, "failure", job.Failure,
		"duration", time.Since(start).String())
	return job, nil
}

func (b *BatchRunner) run(ctx context.Context, job *model.Job, req Request) error {
	tpl, err := b.templates.Get(req.TemplateID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("template %s: %w", req.TemplateID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	if tpl.Status != model.TemplateActive {
		return &ValidationError{Field: "template_id", Reason: fmt.Sprintf("template %s is %s", tpl.ID, tpl.Status)}
	}
	content, err := b.templates.Content(req.TemplateID)
	if err != nil {
		return fmt.Errorf("load template content: %w", err)
	}
	// Placeholders are re-derived so an edited catalog applies to stored templates.
	placeholders, err := b.extractor.Extract(content)
	if err != nil {
		return err
	}

	opts := req.Options
	opts.Filter = req.Contracts
	records, err := b.reader.Read(ctx, req.Spreadsheet, opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	job.Total = len(records)
	b.jobs.Save(job)

	archive, err := NewArchiveWriter(filepath.Join(b.jobs.JobDir(job.ID), "contratos_"+job.ID+".zip"))
	if err != nil {
		return err
	}
	job.ArchivePath = archive.Path()

	unmappedLogged := false
	for _, rec := range records {
		outcome, data, unmapped := b.generate(ctx, rec, content, placeholders)
		if len(unmapped) > 0 && !unmappedLogged {
			logger.Warn(ctx, "Template tokens without a field are left as written", "tokens", unmapped)
			unmappedLogged = true
		}
		if data != nil {
			if err := archive.Add(outcome.File, data); err != nil {
				archive.Close()
				return err
			}
		}
		job.Record(outcome)
		metrics.ContractsTotal.WithLabelValues(outcome.Status).Inc()
		b.jobs.Save(job)
	}
	return archive.Close()
}

// generate renders one contract. A nil document means the outcome is an error.
func (b *BatchRunner) generate(ctx context.Context, rec *model.ContractRecord, template []byte, placeholders []string) (model.Outcome, []byte, []string) {
	ctx = logger.WithContract(ctx, rec.Number)
	outcome := model.Outcome{Contract: rec.Number}
	warnings := append([]string(nil), rec.Warnings...)

	if pend := b.checker.Check(rec); len(pend) > 0 {
		outcome.Status = model.OutcomeError
		outcome.Reason = Reason(pend)
		outcome.Warnings = warnings
		logger.Info(ctx, "Contract skipped", "reason", outcome.Reason)
		return outcome, nil, nil
	}

	res := b.resolver.Resolve(rec, placeholders)

	clause, err := b.prints.Get(rec.Number)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			warnings = append(warnings, fmt.Sprintf("print could not be read: %v", err))
		}
		clause = nil
	}

	rendered, err := b.generator.Generate(template, res.Values, clause)
	if err != nil {
		outcome.Status = model.OutcomeError
		outcome.Reason = err.Error()
		outcome.Warnings = warnings
		logger.Error(ctx, "Contract failed", "error", err)
		return outcome, nil, res.Unmapped
	}

	outcome.Status = model.OutcomeOK
	outcome.File = rec.Number + ".docx"
	outcome.Warnings = append(warnings, rendered.Warnings...)
	logger.Debug(ctx, "Contract generated",
		"replacements", rendered.Replacements, "image", rendered.ImageInserted)
	return outcome, rendered.Content, res.Unmapped
}
