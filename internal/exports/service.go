package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/render"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"

	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DocumentSource loads decrypted documents and resolves their layout.
type DocumentSource interface {
	Get(ctx context.Context, userID, id string) (resumes.Document, error)
	AuthorizeSharedDownload(ctx context.Context, shareID, password string) (resumes.Document, error)
	Layout(ctx context.Context, doc resumes.Document) render.LayoutTree
}

// PDFRenderer prints a standalone HTML page to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, document string) ([]byte, error)
}

// DownloadRecorder attributes completed exports to the document owner.
type DownloadRecorder interface {
	Record(ctx context.Context, userID, resumeID, format string, shared bool) error
}

// File is an encoded export ready to be sent.
type File struct {
	Name        string
	ContentType string
	Bytes       []byte
}

// Service produces PDF and DOCX exports.
type Service struct {
	Docs      DocumentSource
	Renderer  PDFRenderer
	Downloads DownloadRecorder
}

// PDF renders an owned document through the layout tree.
func (s *Service) PDF(ctx context.Context, userID, id string) (File, error) {
	doc, err := s.Docs.Get(ctx, userID, id)
	if err != nil {
		return File{}, err
	}
	return s.layoutPDF(ctx, doc, false)
}

// PDFFromHTML prints client-supplied markup and styles of an owned document
// exactly as given. Both html and css are required.
func (s *Service) PDFFromHTML(ctx context.Context, userID, id, html, css string) (File, error) {
	if strings.TrimSpace(html) == "" || strings.TrimSpace(css) == "" {
		return File{}, fmt.Errorf("%w: html and css are required", resumes.ErrInvalidInput)
	}
	doc, err := s.Docs.Get(ctx, userID, id)
	if err != nil {
		return File{}, err
	}
	return s.printPDF(ctx, doc, false, func() (string, error) {
		return render.Document(html, css), nil
	})
}

// DOCX encodes an owned document as a Word file.
func (s *Service) DOCX(ctx context.Context, userID, id string) (File, error) {
	doc, err := s.Docs.Get(ctx, userID, id)
	if err != nil {
		return File{}, err
	}
	return s.docx(ctx, doc, false)
}

// SharedPDF renders a shared document after the share and download gates.
func (s *Service) SharedPDF(ctx context.Context, shareID, password string) (File, error) {
	doc, err := s.Docs.AuthorizeSharedDownload(ctx, shareID, password)
	if err != nil {
		return File{}, err
	}
	return s.layoutPDF(ctx, doc, true)
}

// SharedDOCX encodes a shared document after the share and download gates.
func (s *Service) SharedDOCX(ctx context.Context, shareID, password string) (File, error) {
	doc, err := s.Docs.AuthorizeSharedDownload(ctx, shareID, password)
	if err != nil {
		return File{}, err
	}
	return s.docx(ctx, doc, true)
}

func (s *Service) layoutPDF(ctx context.Context, doc resumes.Document, shared bool) (File, error) {
	return s.printPDF(ctx, doc, shared, func() (string, error) {
		markup, css, err := render.RenderHTML(s.Docs.Layout(ctx, doc))
		if err != nil {
			return "", err
		}
		return render.Document(markup, css), nil
	})
}

func (s *Service) printPDF(ctx context.Context, doc resumes.Document, shared bool, page func() (string, error)) (File, error) {
	start := metrics.NowMillis()
	metrics.IncExportStarted(FormatPDF)
	if s.Renderer == nil {
		return File{}, s.fail(FormatPDF, doc, errors.New("pdf engine not configured"))
	}
	document, err := page()
	if err != nil {
		return File{}, s.fail(FormatPDF, doc, err)
	}
	data, err := s.Renderer.RenderPDF(ctx, document)
	if err != nil {
		return File{}, s.fail(FormatPDF, doc, err)
	}
	pages, err := InspectPDF(data)
	if err != nil {
		return File{}, s.fail(FormatPDF, doc, err)
	}
	s.done(ctx, FormatPDF, doc, shared, start, len(data), pages)
	return File{
		Name:        render.FileName(doc.Content.Personal.FullName, doc.Title, FormatPDF),
		ContentType: ContentTypePDF,
		Bytes:       data,
	}, nil
}

func (s *Service) docx(ctx context.Context, doc resumes.Document, shared bool) (File, error) {
	start := metrics.NowMillis()
	metrics.IncExportStarted(FormatDOCX)
	data, err := render.RenderDOCX(s.Docs.Layout(ctx, doc))
	if err != nil {
		return File{}, s.fail(FormatDOCX, doc, err)
	}
	s.done(ctx, FormatDOCX, doc, shared, start, len(data), 0)
	return File{
		Name:        render.FileName(doc.Content.Personal.FullName, doc.Title, FormatDOCX),
		ContentType: ContentTypeDOCX,
		Bytes:       data,
	}, nil
}

func (s *Service) done(ctx context.Context, format string, doc resumes.Document, shared bool, start float64, size, pages int) {
	elapsed := metrics.NowMillis() - start
	metrics.IncExportCompleted(format)
	metrics.ObserveExportDurationMs(elapsed)
	fields := map[string]any{
		"format":      format,
		"resume_id":   doc.ID,
		"bytes":       size,
		"duration_ms": elapsed,
	}
	if pages > 0 {
		fields["pages"] = pages
	}
	telemetry.Info("export.completed", fields)

	if s.Downloads != nil {
		if err := s.Downloads.Record(ctx, doc.UserID, doc.ID, format, shared); err != nil {
			telemetry.Warn("export.download.record_failed", map[string]any{
				"resume_id": doc.ID,
				"error":     err.Error(),
			})
		}
	}
}

func (s *Service) fail(format string, doc resumes.Document, err error) error {
	metrics.IncExportFailed(format)
	telemetry.Error("export.failed", map[string]any{
		"format":    format,
		"resume_id": doc.ID,
		"error":     err.Error(),
	})
	return fmt.Errorf("%w: %s: %v", ErrExportFailed, format, err)
}
