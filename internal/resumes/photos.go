package resumes

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const (
	// PhotoRefPrefix marks personal.photo values that point into the object store.
	PhotoRefPrefix = "object:"
	MaxPhotoBytes  = 5 << 20
)

// ErrPhotoStoreUnavailable is returned when no object store is configured.
var ErrPhotoStoreUnavailable = errors.New("photo storage not configured")

// UploadPhoto stores an image and points personal.photo at it. The previous
// object is kept because saved versions may still reference it.
func (s *Service) UploadPhoto(ctx context.Context, userID, id, fileName string, r io.Reader) (Document, error) {
	if s.Store == nil {
		return Document{}, ErrPhotoStoreUnavailable
	}
	if _, err := s.Repo.Get(ctx, userID, id); err != nil {
		return Document{}, err
	}

	limited := io.LimitReader(r, MaxPhotoBytes+1)
	contentType, body, err := object.Sniff(limited)
	if err != nil {
		return Document{}, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Document{}, fmt.Errorf("%w: photo must be an image, got %s", ErrInvalidInput, contentType)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Document{}, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return Document{}, fmt.Errorf("%w: photo exceeds 5MB", ErrInvalidInput)
	}

	obj, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if errors.Is(err, object.ErrBadName) {
		return Document{}, fmt.Errorf("%w: photo file name is not usable", ErrInvalidInput)
	}
	if err != nil {
		return Document{}, fmt.Errorf("save photo: %w", err)
	}

	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		personal, err := s.Protector.OpenPersonal(r.ID, r.Content.Personal)
		if err != nil {
			return err
		}
		personal.Photo = PhotoRefPrefix + obj.Key
		sealed, err := s.Protector.SealPersonal(r.ID, personal)
		if err != nil {
			return fmt.Errorf("seal personal: %w", err)
		}
		r.Content.Personal = sealed
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	telemetry.Info("resume.photo.uploaded", map[string]any{
		"user_id":      userID,
		"resume_id":    id,
		"size":         obj.Size,
		"content_type": obj.ContentType,
	})
	return s.open(ctx, res)
}

// OpenPhoto streams the stored photo of a document with its content type.
func (s *Service) OpenPhoto(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	if s.Store == nil {
		return nil, "", ErrPhotoStoreUnavailable
	}
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	key, ok := strings.CutPrefix(doc.Content.Personal.Photo, PhotoRefPrefix)
	if !ok {
		return nil, "", ErrNotFound
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	contentType, body, err := object.Sniff(rc)
	if err != nil {
		rc.Close()
		return nil, "", err
	}
	return readCloser{Reader: body, Closer: rc}, contentType, nil
}

// photoSource turns a stored photo reference into a data URI renderers can
// embed. Other values pass through. A photo that cannot be read is dropped.
func (s *Service) photoSource(ctx context.Context, ref string) string {
	key, ok := strings.CutPrefix(ref, PhotoRefPrefix)
	if !ok {
		return ref
	}
	if s.Store == nil {
		return ""
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		telemetry.Warn("resume.photo.unavailable", map[string]any{"key": key, "error": err})
		return ""
	}
	defer rc.Close()
	contentType, body, err := object.Sniff(rc)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxPhotoBytes))
	if err != nil {
		telemetry.Warn("resume.photo.unavailable", map[string]any{"key": key, "error": err})
		return ""
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

type readCloser struct {
	io.Reader
	io.Closer
}
