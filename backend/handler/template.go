package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/service"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type TemplateHandler struct {
	store *service.TemplateStore
}

func NewTemplateHandler(store *service.TemplateStore) *TemplateHandler {
	return &TemplateHandler{store: store}
}

// Create uploads a new template
func (h *TemplateHandler) Create(c *gin.Context) {
	filename, content, err := formFile(c, "file")
	if err != nil {
		respondError(c, err)
		return
	}

	tpl, err := h.store.Create(c.PostForm("name"), c.PostForm("description"), filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(logger.WithTemplate(c.Request.Context(), tpl.ID), "Template created",
		"name", tpl.Name, "placeholders", len(tpl.Placeholders))

	c.JSON(http.StatusCreated, tpl)
}

// List returns the templates, optionally filtered by ?status=
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.store.List(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(templates), "templates": templates})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// Update changes name, description or status
func (h *TemplateHandler) Update(c *gin.Context) {
	var req service.TemplateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tpl, err := h.store.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// ReplaceFile swaps the template document
func (h *TemplateHandler) ReplaceFile(c *gin.Context) {
	filename, content, err := formFile(c, "file")
	if err != nil {
		respondError(c, err)
		return
	}

	tpl, err := h.store.ReplaceFile(c.Param("id"), filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(logger.WithTemplate(c.Request.Context(), tpl.ID), "Template file replaced",
		"placeholders", len(tpl.Placeholders))

	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) Download(c *gin.Context) {
	id := c.Param("id")
	tpl, err := h.store.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	content, err := h.store.Content(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+tpl.Filename+`"`)
	c.Data(http.StatusOK, docxContentType, content)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}
