package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	documentapp "github.com/crm/backend/internal/application/document"
)

// maxUploadSize caps document uploads at 25 MiB
const maxUploadSize = 25 << 20

// DocumentHandler handles document API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.Service
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *documentapp.Service) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload stores a file sent as multipart form data. Optional form
// fields link the document to a customer or opportunity.
func (h *DocumentHandler) Upload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file field")
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.BadRequest(c, "File exceeds the maximum upload size")
		return
	}

	req := documentapp.UploadRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Description: c.PostForm("description"),
	}
	if raw := c.PostForm("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		req.CustomerID = &id
	}
	if raw := c.PostForm("opportunity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid opportunity_id")
			return
		}
		req.OpportunityID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	document, err := h.documentService.Upload(c.Request.Context(), tenantID, userID, req, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, document)
}

// Get returns document metadata
func (h *DocumentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	document, err := h.documentService.GetByID(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, document)
}

// List returns a page of documents
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter documentapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	documents, total, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, documents, total, filter.Page, filter.PageSize)
}

// Download streams the document content back to the client
func (h *DocumentHandler) Download(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	document, content, err := h.documentService.Download(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.FileName))
	c.Header("Content-Type", document.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, content)
}

// Delete removes a document and its stored blob
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, documentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
