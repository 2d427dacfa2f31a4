package exports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// maxHTMLBody bounds the client markup accepted for the exact-match path.
const maxHTMLBody = 10 << 20

// Handler wires export routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/export/pdf", h.pdf)
	rg.GET("/resumes/:id/export/docx", h.docx)
	rg.POST("/resumes/:id/export/pdf-html", h.pdfFromHTML)
	rg.GET("/resumes/share/:shareId/export/pdf", h.sharedPDF)
	rg.GET("/resumes/share/:shareId/export/docx", h.sharedDOCX)
}

type htmlExportRequest struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

func (h *Handler) pdf(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	file, err := h.Svc.PDF(c.Request.Context(), middleware.UserIDFromContext(c), id)
	h.send(c, file, err)
}

func (h *Handler) docx(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	file, err := h.Svc.DOCX(c.Request.Context(), middleware.UserIDFromContext(c), id)
	h.send(c, file, err)
}

func (h *Handler) pdfFromHTML(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxHTMLBody)

	var req htmlExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	file, err := h.Svc.PDFFromHTML(c.Request.Context(), middleware.UserIDFromContext(c), id, req.HTML, req.CSS)
	h.send(c, file, err)
}

func (h *Handler) sharedPDF(c *gin.Context) {
	shareID := c.Param("shareId")
	c.Set(middleware.ShareIDKey, shareID)
	file, err := h.Svc.SharedPDF(c.Request.Context(), shareID, resumes.SharePassword(c))
	h.send(c, file, err)
}

func (h *Handler) sharedDOCX(c *gin.Context) {
	shareID := c.Param("shareId")
	c.Set(middleware.ShareIDKey, shareID)
	file, err := h.Svc.SharedDOCX(c.Request.Context(), shareID, resumes.SharePassword(c))
	h.send(c, file, err)
}

func (h *Handler) send(c *gin.Context, file File, err error) {
	if err != nil {
		if errors.Is(err, ErrExportFailed) {
			respond.Error(c, http.StatusInternalServerError, "export_failed", "Failed to generate export", nil)
			return
		}
		resumes.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Content-Length", strconv.Itoa(len(file.Bytes)))
	if file.ContentType == ContentTypePDF {
		c.Header("Cache-Control", "no-store")
	}
	c.Data(http.StatusOK, file.ContentType, file.Bytes)
}
