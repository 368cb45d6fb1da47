package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/domain"
	"projektchat/internal/service"
)

// DocumentHandler handles document API requests
type DocumentHandler struct {
	documents   *service.DocumentService
	maxFileSize int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxFileSize: maxFileSize}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/projects/:project_id/documents", h.Upload)
	r.GET("/projects/:project_id/documents", h.List)
	r.GET("/documents/:document_id", h.Get)
	r.DELETE("/documents/:document_id", h.Delete)
}

// Upload accepts one or more multipart files, normalizes and stores each.
// Per-file failures do not abort the batch; the response reports both lists.
func (h *DocumentHandler) Upload(c *gin.Context) {
	projectID := c.Param("project_id")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	var uploaded []*domain.Document
	var failed []gin.H
	for _, fileHeader := range files {
		if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
			failed = append(failed, gin.H{
				"filename": fileHeader.Filename,
				"error":    fmt.Sprintf("file exceeds the %d byte limit", h.maxFileSize),
			})
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			failed = append(failed, gin.H{"filename": fileHeader.Filename, "error": err.Error()})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			failed = append(failed, gin.H{"filename": fileHeader.Filename, "error": err.Error()})
			continue
		}

		doc, err := h.documents.Upload(projectID, fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			handleError(c, err)
			return
		}
		uploaded = append(uploaded, doc)
	}

	c.JSON(http.StatusCreated, gin.H{
		"documents": uploaded,
		"failed":    failed,
		"count":     len(uploaded),
	})
}

// List lists a project's documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Param("project_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// Get retrieves one document including its normalized content
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Param("document_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete removes a document
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Param("document_id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
