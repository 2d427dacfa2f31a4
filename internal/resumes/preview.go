package resumes

import (
	"context"

	"resume-builder/resume/render"
)

// Layout resolves the render tree of a decrypted document with stored photos
// inlined. A missing template falls back to the default.
func (s *Service) Layout(ctx context.Context, doc Document) render.LayoutTree {
	tmpl := s.Templates.Resolve(ctx, doc.TemplateID)
	content := doc.Content
	content.Personal.Photo = s.photoSource(ctx, content.Personal.Photo)
	return render.Resolve(content, doc.Customization, tmpl, render.Options{Title: doc.Title})
}

// Preview returns the layout tree of an owned document.
func (s *Service) Preview(ctx context.Context, userID, id string) (render.LayoutTree, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return render.LayoutTree{}, err
	}
	return s.Layout(ctx, doc), nil
}

// PreviewHTML renders an owned document as a standalone HTML page.
func (s *Service) PreviewHTML(ctx context.Context, userID, id string) (string, error) {
	tree, err := s.Preview(ctx, userID, id)
	if err != nil {
		return "", err
	}
	markup, css, err := render.RenderHTML(tree)
	if err != nil {
		return "", err
	}
	return render.Document(markup, css), nil
}
