package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/models"
	"docsign-backend-go/internal/storage"
)

const uploadFormField = "document"

// DocumentHandler handles API endpoints related to documents and their collaborators.
type DocumentHandler struct {
	documents      core.DocumentService
	sharing        core.SharingService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents core.DocumentService, sharing core.SharingService, maxUploadBytes int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, sharing: sharing, maxUploadBytes: maxUploadBytes, logger: logger}
}

// UploadDocument handles POST /documents (multipart, file field "document").
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("Upload exceeds the %d byte limit", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "A PDF file is required in the 'document' field", Details: err.Error()})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read uploaded file", Details: err.Error()})
		return
	}
	defer file.Close()

	contentType, err := storage.DetectContentType(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read uploaded file", Details: err.Error()})
		return
	}
	if !storage.IsPDF(contentType) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Only PDF files are allowed", Details: "detected " + contentType})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Could not read uploaded file"})
		return
	}

	doc, err := h.documents.CreateDocument(c.Request.Context(), userID, models.CreateDocumentInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		SignerName:   c.PostForm("signerName"),
		SignerEmail:  c.PostForm("signerEmail"),
		OriginalName: header.Filename,
		MimeType:     contentType,
		Content:      file,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, DocumentResponse{Message: "Document uploaded successfully", Document: doc})
}

// ListDocuments handles GET /documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	docs, err := h.documents.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

// ListSharedDocuments handles GET /documents/shared
func (h *DocumentHandler) ListSharedDocuments(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	views, err := h.documents.ListSharedDocuments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetDocument handles GET /documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := h.documents.GetDocument(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetRole handles GET /documents/:id/role
func (h *DocumentHandler) GetRole(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	documentID := c.Param("id")
	role, err := h.documents.GetRole(c.Request.Context(), documentID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	name := string(role)
	if role == core.RoleNone {
		name = "none"
	}
	c.JSON(http.StatusOK, RoleResponse{DocumentID: documentID, Role: name})
}

// DownloadDocument handles GET /documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	doc, rc, err := h.documents.OpenDocumentFile(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer rc.Close()

	size := doc.FileSize
	if size <= 0 {
		size = -1
	}
	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/pdf"
	}
	filename := strings.ReplaceAll(doc.OriginalName, `"`, "")
	c.DataFromReader(http.StatusOK, size, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
}

// UpdateDocument handles PUT /documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	doc, err := h.documents.UpdateDocument(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{Message: "Document updated successfully", Document: doc})
}

// DeleteDocument handles DELETE /documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.documents.DeleteDocument(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Document deleted successfully"})
}

// AddCollaborator handles POST /documents/:id/collaborators
func (h *DocumentHandler) AddCollaborator(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	doc, err := h.sharing.AddCollaborator(c.Request.Context(), c.Param("id"), userID, req.Email, req.Permission)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{Message: "Collaborator added successfully", Document: doc})
}

// ShareDocument handles POST /documents/:id/share
func (h *DocumentHandler) ShareDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	result, err := h.sharing.ShareDocument(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	message := fmt.Sprintf("Document shared with %d user(s)", len(result.Added))
	c.JSON(http.StatusOK, ShareDocumentResponse{Message: message, ShareResult: result})
}

// UpdateCollaborator handles PUT /documents/:id/collaborators/:userId
func (h *DocumentHandler) UpdateCollaborator(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.UpdateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	doc, err := h.sharing.UpdateCollaboratorPermission(c.Request.Context(), c.Param("id"), userID, c.Param("userId"), req.Permission)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{Message: "Collaborator updated successfully", Document: doc})
}

// RemoveCollaborator handles DELETE /documents/:id/collaborators/:userId
func (h *DocumentHandler) RemoveCollaborator(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	doc, err := h.sharing.RemoveCollaborator(c.Request.Context(), c.Param("id"), userID, c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{Message: "Collaborator removed successfully", Document: doc})
}
