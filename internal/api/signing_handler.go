package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docsign-backend-go/internal/core"
	"docsign-backend-go/internal/models"
)

// SigningHandler handles signature capture and the signer's queue.
type SigningHandler struct {
	signing core.SigningService
	logger  *zap.Logger
}

// NewSigningHandler creates a new SigningHandler.
func NewSigningHandler(signing core.SigningService, logger *zap.Logger) *SigningHandler {
	return &SigningHandler{signing: signing, logger: logger}
}

// ListDocumentsForSigning handles GET /documents/for-signing and GET /signing/documents.
func (h *SigningHandler) ListDocumentsForSigning(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	items, err := h.signing.ListDocumentsForSigning(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// SignDocument handles POST /signing/sign
func (h *SigningHandler) SignDocument(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.AddSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	meta := models.CaptureMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	sig, err := h.signing.AddSignature(c.Request.Context(), userID, req, meta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SignatureResponse{Message: "Document signed successfully", Signature: sig})
}

// ListSignatures handles GET /signing/:documentId
func (h *SigningHandler) ListSignatures(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	sigs, err := h.signing.ListSignatures(c.Request.Context(), c.Param("documentId"), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if sigs == nil {
		sigs = []*models.Signature{}
	}
	c.JSON(http.StatusOK, sigs)
}
