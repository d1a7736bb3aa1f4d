package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/service"
)

type ConfigHandler struct {
	office *service.OfficeStore
}

func NewConfigHandler(office *service.OfficeStore) *ConfigHandler {
	return &ConfigHandler{office: office}
}

func (h *ConfigHandler) Get(c *gin.Context) {
	resp := gin.H{"escritorio": h.office.Office()}
	if t := h.office.UpdatedAt(); !t.IsZero() {
		resp["updated_at"] = t
	}
	c.JSON(http.StatusOK, resp)
}

// Update changes the office settings; omitted fields are kept
func (h *ConfigHandler) Update(c *gin.Context) {
	var req service.OfficeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	office, err := h.office.Update(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escritorio": office, "updated_at": h.office.UpdatedAt()})
}
