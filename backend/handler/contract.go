package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/service"
)

type ContractHandler struct {
	runner *service.BatchRunner
	jobs   *service.JobStore
}

func NewContractHandler(runner *service.BatchRunner, jobs *service.JobStore) *ContractHandler {
	return &ContractHandler{runner: runner, jobs: jobs}
}

func readOptions(c *gin.Context) service.ReadOptions {
	return service.ReadOptions{
		BaseSheet:    strings.TrimSpace(c.PostForm("aba_base")),
		AddressSheet: strings.TrimSpace(c.PostForm("aba_enderecos")),
	}
}

// contractList parses the comma separated "contratos" field; empty means all.
func contractList(raw string) []string {
	var out []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func spreadsheetFile(c *gin.Context) ([]byte, bool) {
	filename, content, err := formFile(c, "file")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".xlsx" && ext != ".xlsm" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx spreadsheets are allowed"})
		return nil, false
	}
	return content, true
}

// List returns the contract numbers found in a spreadsheet
func (h *ContractHandler) List(c *gin.Context) {
	content, ok := spreadsheetFile(c)
	if !ok {
		return
	}

	numbers, err := h.runner.Reader().ListContracts(c.Request.Context(), content, readOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(numbers), "contratos": numbers})
}

// Pendencies checks mandatory fields and prints before processing
func (h *ContractHandler) Pendencies(c *gin.Context) {
	content, ok := spreadsheetFile(c)
	if !ok {
		return
	}

	report, err := h.runner.Pendencies(c.Request.Context(), content, readOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Process generates the documents of a spreadsheet and returns the job report
func (h *ContractHandler) Process(c *gin.Context) {
	templateID := strings.TrimSpace(c.PostForm("template_id"))
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id is required"})
		return
	}
	content, ok := spreadsheetFile(c)
	if !ok {
		return
	}

	job, err := h.runner.Run(c.Request.Context(), service.Request{
		TemplateID:  templateID,
		Spreadsheet: content,
		Contracts:   contractList(c.PostForm("contratos")),
		Options:     readOptions(c),
	})
	if err != nil {
		c.JSON(errorStatus(c, err), gin.H{"error": errorMessage(err), "job": job})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Job returns the report of a job
func (h *ContractHandler) Job(c *gin.Context) {
	job := h.jobs.Get(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Download sends the archive of a completed job
func (h *ContractHandler) Download(c *gin.Context) {
	job := h.jobs.Get(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.Status != model.JobCompleted || job.Success == 0 || job.ArchivePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No documents available for this job"})
		return
	}

	logger.Info(logger.WithJob(c.Request.Context(), job.ID), "Archive downloaded")
	c.FileAttachment(job.ArchivePath, filepath.Base(job.ArchivePath))
}

// Cleanup removes a job and its generated files
func (h *ContractHandler) Cleanup(c *gin.Context) {
	if err := h.jobs.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}
