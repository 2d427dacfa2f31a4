package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/resume/model"
	"resume-builder/resume/privacy"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/stats", h.stats)
	rg.GET("/resumes/share/:shareId", h.viewShared)

	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
	rg.PUT("/resumes/:id/sections/:section/order", h.reorderSection)
	rg.PUT("/resumes/:id/section-order", h.sectionOrder)

	rg.POST("/resumes/:id/version", h.saveVersion)
	rg.GET("/resumes/:id/versions", h.versions)
	rg.POST("/resumes/:id/restore/:version", h.restore)
	rg.GET("/resumes/:id/compare/:v1/:v2", h.compare)

	rg.POST("/resumes/:id/share", h.publish)
	rg.PUT("/resumes/:id/share", h.updateShare)

	rg.GET("/resumes/:id/preview", h.preview)
	rg.GET("/resumes/:id/preview.html", h.previewHTML)
	rg.POST("/resumes/:id/photo", h.uploadPhoto)
	rg.GET("/resumes/:id/photo", h.photo)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.toInput())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, doc.ID)
	respond.Data(c, http.StatusCreated, h.toDocumentResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
		Search: c.Query("search"),
	}
	out, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), q)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.Page(c, out.Items, respond.Pagination{
		Total:      out.Total,
		Page:       out.Page,
		Limit:      out.Limit,
		TotalPages: out.TotalPages,
	})
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) get(c *gin.Context) {
	id := h.resumeID(c)
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, h.toDocumentResponse(doc))
}

func (h *Handler) update(c *gin.Context) {
	id := h.resumeID(c)
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, req.toInput())
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, h.toDocumentResponse(doc))
}

func (h *Handler) delete(c *gin.Context) {
	id := h.resumeID(c)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, gin.H{})
}

func (h *Handler) duplicate(c *gin.Context) {
	id := h.resumeID(c)
	doc, err := h.Svc.Duplicate(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.Data(c, http.StatusCreated, h.toDocumentResponse(doc))
}

func (h *Handler) reorderSection(c *gin.Context) {
	id := h.resumeID(c)
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	var (
		doc Document
		err error
	)
	userID := middleware.UserIDFromContext(c)
	if req.From != nil && req.To != nil {
		doc, err = h.Svc.MoveEntry(c.Request.Context(), userID, id, c.Param("section"), *req.From, *req.To)
	} else {
		doc, err = h.Svc.ReorderSection(c.Request.Context(), userID, id, c.Param("section"), req.IDs)
	}
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, h.toDocumentResponse(doc))
}

func (h *Handler) sectionOrder(c *gin.Context) {
	id := h.resumeID(c)
	var req sectionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.SetSectionOrder(c.Request.Context(), middleware.UserIDFromContext(c), id, req.Order)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, h.toDocumentResponse(doc))
}

func (h *Handler) saveVersion(c *gin.Context) {
	id := h.resumeID(c)
	var req versionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	out, err := h.Svc.SaveVersion(c.Request.Context(), middleware.UserIDFromContext(c), id, req.Comment)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.Message(c, "Version saved successfully", gin.H{
		"currentVersion": out.CurrentVersion,
		"totalVersions":  out.TotalVersions,
	})
}

func (h *Handler) versions(c *gin.Context) {
	id := h.resumeID(c)
	hist, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, toHistoryResponse(hist))
}

func (h *Handler) restore(c *gin.Context) {
	id := h.resumeID(c)
	ref := c.Param("version")
	doc, err := h.Svc.RestoreVersion(c.Request.Context(), middleware.UserIDFromContext(c), id, ref)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.Message(c, "Restored to version "+ref, h.toDocumentResponse(doc))
}

func (h *Handler) compare(c *gin.Context) {
	id := h.resumeID(c)
	cmp, err := h.Svc.CompareVersions(c.Request.Context(), middleware.UserIDFromContext(c), id, c.Param("v1"), c.Param("v2"))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, comparisonResponse{
		Version1: toSnapshotResponse(cmp.Version1),
		Version2: toSnapshotResponse(cmp.Version2),
		Template: cmp.Template,
	})
}

func (h *Handler) publish(c *gin.Context) {
	id := h.resumeID(c)
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	st, err := h.Svc.Publish(c.Request.Context(), middleware.UserIDFromContext(c), id, req.toInput(c.ClientIP()))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Set(middleware.ShareIDKey, st.ShareID)
	respond.OK(c, toShareStateResponse(st))
}

func (h *Handler) updateShare(c *gin.Context) {
	id := h.resumeID(c)
	var req shareUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	st, err := h.Svc.UpdateShare(c.Request.Context(), middleware.UserIDFromContext(c), id, req.toInput(c.ClientIP()))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, toShareStateResponse(st))
}

func (h *Handler) viewShared(c *gin.Context) {
	shareID := c.Param("shareId")
	c.Set(middleware.ShareIDKey, shareID)
	view, err := h.Svc.ViewShared(c.Request.Context(), shareID, SharePassword(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, toSharedViewResponse(view))
}

func (h *Handler) preview(c *gin.Context) {
	id := h.resumeID(c)
	tree, err := h.Svc.Preview(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, tree)
}

func (h *Handler) previewHTML(c *gin.Context) {
	id := h.resumeID(c)
	page, err := h.Svc.PreviewHTML(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id := h.resumeID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoBytes+(1<<20))

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "photo is required", nil)
		return
	}
	if fileHeader.Size > MaxPhotoBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "photo exceeds 5MB", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read photo", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.UserIDFromContext(c), id, fileHeader.Filename, file)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, h.toDocumentResponse(doc))
}

func (h *Handler) photo(c *gin.Context) {
	id := h.resumeID(c)
	rc, contentType, err := h.Svc.OpenPhoto(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *Handler) resumeID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	return id
}

// SharePassword reads the share password from the password query parameter
// or the X-Share-Password header.
func SharePassword(c *gin.Context) string {
	return sharePassword(c.Query("password"), c.GetHeader("X-Share-Password"))
}

// RespondError maps service errors to the HTTP error envelope.
func RespondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation failed", verr.Fields)
	case errors.Is(err, ErrConsentRequired):
		respond.Error(c, http.StatusBadRequest, "consent_required",
			"You must provide explicit consent to make your resume public", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, model.ErrInvalid):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, templates.ErrInvalidID):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid template ID format", nil)
	case errors.Is(err, templates.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Template not found", nil)
	case errors.Is(err, ErrVersionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Version not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrExpired):
		respond.Error(c, http.StatusGone, "expired", "This share link has expired", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid password", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "Download not allowed for this resume", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "Resume was modified concurrently, retry the request", nil)
	case errors.Is(err, privacy.ErrDecryptionFailed):
		respond.Error(c, http.StatusInternalServerError, "decryption_failed", "Failed to decrypt resume data", nil)
	case errors.Is(err, ErrPhotoStoreUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", err.Error(), nil)
	default:
		telemetry.Error("resumes.request.failed", map[string]any{
			"error":      err.Error(),
			"path":       c.FullPath(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
