package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractgen/backend/pkg/logger"
	"github.com/AnTengye/contractgen/backend/service"
)

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(c, err), gin.H{"error": errorMessage(err)})
}

func errorStatus(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrJobRunning):
		return http.StatusConflict
	case service.IsClientError(err):
		return http.StatusBadRequest
	}
	logger.Error(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrJobRunning) || service.IsClientError(err) {
		return err.Error()
	}
	return "Internal server error"
}

// formFile reads a whole multipart file field.
func formFile(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, &service.ValidationError{Field: field, Reason: "no file provided"}
	}
	data, err := readUpload(header)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
