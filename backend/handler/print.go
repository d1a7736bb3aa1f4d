package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/service"
)

type PrintHandler struct {
	store *service.PrintStore
}

func NewPrintHandler(store *service.PrintStore) *PrintHandler {
	return &PrintHandler{store: store}
}

// Upload stores clause images, sent one by one or packed in ZIP archives
func (h *PrintHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	result := &service.UploadResult{Accepted: []string{}, Rejected: []service.Rejection{}}
	for _, header := range form.File["files"] {
		data, err := readUpload(header)
		if err != nil {
			result.Rejected = append(result.Rejected, service.Rejection{Filename: header.Filename, Reason: err.Error()})
			continue
		}

		if strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
			imported, err := h.store.ImportArchive(data)
			if imported != nil {
				result.Accepted = append(result.Accepted, imported.Accepted...)
				result.Rejected = append(result.Rejected, imported.Rejected...)
			}
			if err != nil && (imported == nil || len(imported.Rejected) == 0) {
				if !service.IsClientError(err) {
					respondError(c, err)
					return
				}
				result.Rejected = append(result.Rejected, service.Rejection{Filename: header.Filename, Reason: err.Error()})
			}
			continue
		}

		p, err := h.store.Save(header.Filename, data)
		if err != nil {
			var ve *service.ValidationError
			if !errors.As(err, &ve) {
				respondError(c, err)
				return
			}
			result.Rejected = append(result.Rejected, service.Rejection{Filename: header.Filename, Reason: ve.Reason})
			continue
		}
		result.Accepted = append(result.Accepted, p.Filename)
	}

	status := http.StatusOK
	if len(result.Accepted) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (h *PrintHandler) List(c *gin.Context) {
	prints, err := h.store.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(prints), "prints": prints})
}

// Get returns the image of one contract
func (h *PrintHandler) Get(c *gin.Context) {
	p, err := h.store.Get(c.Param("contract"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+p.Filename+`"`)
	c.Data(http.StatusOK, p.ContentType(), p.Data)
}

func (h *PrintHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("contract")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Print deleted"})
}

func (h *PrintHandler) DeleteAll(c *gin.Context) {
	n, err := h.store.DeleteAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prints deleted", "removidos": n})
}
