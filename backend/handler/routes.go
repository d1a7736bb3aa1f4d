package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the API handlers mounted under /api/v1.
type Handlers struct {
	Templates *TemplateHandler
	Prints    *PrintHandler
	Contracts *ContractHandler
	Config    *ConfigHandler
}

func (h *Handlers) Register(api *gin.RouterGroup) {
	templates := api.Group("/templates")
	{
		templates.POST("", h.Templates.Create)
		templates.GET("", h.Templates.List)
		templates.GET("/:id", h.Templates.Get)
		templates.PUT("/:id", h.Templates.Update)
		templates.PUT("/:id/file", h.Templates.ReplaceFile)
		templates.GET("/:id/download", h.Templates.Download)
		templates.DELETE("/:id", h.Templates.Delete)
	}

	prints := api.Group("/prints")
	{
		prints.POST("", h.Prints.Upload)
		prints.GET("", h.Prints.List)
		prints.GET("/:contract", h.Prints.Get)
		prints.DELETE("/:contract", h.Prints.Delete)
		prints.DELETE("", h.Prints.DeleteAll)
	}

	contracts := api.Group("/contracts")
	{
		contracts.POST("/list", h.Contracts.List)
		contracts.POST("/pendencias", h.Contracts.Pendencies)
		contracts.POST("/process", h.Contracts.Process)
		contracts.GET("/job/:id", h.Contracts.Job)
		contracts.GET("/download/:id", h.Contracts.Download)
		contracts.DELETE("/job/:id", h.Contracts.Cleanup)
	}

	api.GET("/config", h.Config.Get)
	api.PUT("/config", h.Config.Update)
}
