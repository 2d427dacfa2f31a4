package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
	"resume-builder/resume/privacy"
)

const recentWindow = 7 * 24 * time.Hour

// TemplateCatalog looks templates up for validation and rendering.
type TemplateCatalog interface {
	Get(ctx context.Context, id string) (model.Template, error)
	Resolve(ctx context.Context, id string) model.Template
}

// DownloadCounter reports how many exports an owner has downloaded.
type DownloadCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

// Service coordinates resume persistence, sealing, versions and sharing.
type Service struct {
	Repo      Repo
	Protector *privacy.Protector
	Templates TemplateCatalog
	// Cache is optional; failures are logged and fall through to Repo.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Store holds uploaded photos; photo routes fail without it.
	Store     object.ObjectStore
	Downloads DownloadCounter
	ClientURL string
	Now       func() time.Time
	NewID     func() string
}

// CreateInput is the body of a create request.
type CreateInput struct {
	Title         string
	TemplateID    string
	Content       *model.Content
	Customization *model.Customization
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	TemplateID    *string
	Content       *model.Content
	Customization *model.Customization
}

// IsEmpty reports whether no field is set.
func (u UpdateInput) IsEmpty() bool {
	return u.Title == nil && u.TemplateID == nil && u.Content == nil && u.Customization == nil
}

// VersionResult reports the state after a version save.
type VersionResult struct {
	CurrentVersion int
	TotalVersions  int
}

// ShareState is the owner's view of share settings.
type ShareState struct {
	ShareID  string
	ShareURL string
	IsPublic bool
	Settings ShareSettings
	Consent  PrivacyConsent
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Create stores a new document at version 1 with its personal data sealed.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Document, error) {
	templateID := strings.TrimSpace(in.TemplateID)
	if templateID != "" {
		if _, err := s.Templates.Get(ctx, templateID); err != nil {
			return Document{}, err
		}
	}

	var content model.Content
	if in.Content != nil {
		content = *in.Content
	}
	content.Normalize()
	if err := s.checkContent(userID, "", content); err != nil {
		return Document{}, err
	}
	var custom model.Customization
	if in.Customization != nil {
		custom = *in.Customization
		if err := model.ValidateCustomization(custom); err != nil {
			return Document{}, err
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	now := s.now()
	res := Resume{
		ID:            s.newID(),
		UserID:        userID,
		TemplateID:    templateID,
		Title:         title,
		Customization: custom,
		Version:       1,
		Versions:      []VersionSnapshot{},
		Share:         ShareSettings{AllowDownload: true},
		CreatedAt:     now,
		UpdatedAt:     now,
		Revision:      1,
	}
	sealed, err := s.Protector.SealFor(res.ID, content)
	if err != nil {
		return Document{}, fmt.Errorf("seal content: %w", err)
	}
	res.Content = sealed

	if err := s.Repo.Create(ctx, res); err != nil {
		return Document{}, err
	}
	s.invalidate(ctx, userID, "")
	telemetry.Info("resume.created", map[string]any{"user_id": userID, "resume_id": res.ID, "template_id": templateID})
	return s.open(ctx, res)
}

// Get returns a decrypted document owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	res, err := s.load(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	return s.open(ctx, res)
}

// List returns a page of the user's documents.
func (s *Service) List(ctx context.Context, userID string, q ListQuery) (ListResult, error) {
	q = q.Normalize()
	key := s.listKey(ctx, userID, q)
	if raw := s.cacheGet(ctx, key); raw != nil {
		var cached ListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	items, total, err := s.Repo.List(ctx, userID, q)
	if err != nil {
		return ListResult{}, err
	}
	out := ListResult{
		Items:      make([]Summary, 0, len(items)),
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}
	for _, res := range items {
		out.Items = append(out.Items, Summary{
			ID:           res.ID,
			Title:        res.Title,
			TemplateID:   res.TemplateID,
			TemplateName: s.templateName(ctx, res.TemplateID),
			Version:      res.Version,
			IsPublic:     res.IsPublic,
			ShareID:      res.ShareID,
			CreatedAt:    res.CreatedAt,
			UpdatedAt:    res.UpdatedAt,
		})
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

// Update applies a partial update. Customization fields are merged onto the
// stored ones. An empty update is ErrInvalidInput.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Document, error) {
	if in.IsEmpty() {
		return Document{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if in.TemplateID != nil {
		if tid := strings.TrimSpace(*in.TemplateID); tid != "" {
			if _, err := s.Templates.Get(ctx, tid); err != nil {
				return Document{}, err
			}
		}
	}
	if in.Customization != nil {
		if err := model.ValidateCustomization(*in.Customization); err != nil {
			return Document{}, err
		}
	}

	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		if in.Title != nil {
			r.Title = strings.TrimSpace(*in.Title)
			if r.Title == "" {
				r.Title = DefaultTitle
			}
		}
		if in.TemplateID != nil {
			r.TemplateID = strings.TrimSpace(*in.TemplateID)
		}
		if in.Content != nil {
			content := *in.Content
			content.Normalize()
			current, err := s.Protector.OpenPersonal(r.ID, r.Content.Personal)
			if err != nil {
				return err
			}
			if err := s.checkContent(userID, current.Photo, content); err != nil {
				return err
			}
			if err := s.seal(r, content); err != nil {
				return err
			}
		}
		if in.Customization != nil {
			r.Customization = r.Customization.Merge(*in.Customization)
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return s.open(ctx, res)
}

// Delete soft-deletes a document. A second delete is ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.SoftDelete(ctx, userID, id, s.now()); err != nil {
		return err
	}
	s.invalidate(ctx, userID, id)
	telemetry.Info("resume.deleted", map[string]any{"user_id": userID, "resume_id": id})
	return nil
}

// Duplicate copies content, customization and template into a new document
// with a fresh history and private share state.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (Document, error) {
	orig, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	content, err := s.Protector.OpenFor(orig.ID, orig.Content)
	if err != nil {
		return Document{}, err
	}

	now := s.now()
	res := Resume{
		ID:            s.newID(),
		UserID:        userID,
		TemplateID:    orig.TemplateID,
		Title:         orig.Title + " (Copy)",
		Customization: clone(orig.Customization),
		Version:       1,
		Versions:      []VersionSnapshot{},
		Share:         ShareSettings{AllowDownload: true},
		CreatedAt:     now,
		UpdatedAt:     now,
		Revision:      1,
	}
	if err := s.seal(&res, content); err != nil {
		return Document{}, err
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		return Document{}, err
	}
	s.invalidate(ctx, userID, "")
	return s.open(ctx, res)
}

// Stats counts the user's documents and, when a ledger is wired, their downloads.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	st, err := s.Repo.Stats(ctx, userID, s.now().Add(-recentWindow))
	if err != nil || s.Downloads == nil {
		return st, err
	}
	n, err := s.Downloads.Count(ctx, userID)
	if err != nil {
		telemetry.Warn("resume.stats.downloads_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return st, nil
	}
	st.Downloads = n
	return st, nil
}

// ReorderSection applies a permutation of entry ids to one ordered section.
func (s *Service) ReorderSection(ctx context.Context, userID, id, section string, ids []string) (Document, error) {
	return s.reorder(ctx, userID, id, func(c *model.Content) error {
		return c.ReorderSection(section, ids)
	})
}

// MoveEntry moves one entry of an ordered section by index (drag and drop).
func (s *Service) MoveEntry(ctx context.Context, userID, id, section string, from, to int) (Document, error) {
	return s.reorder(ctx, userID, id, func(c *model.Content) error {
		return c.MoveEntry(section, from, to)
	})
}

func (s *Service) reorder(ctx context.Context, userID, id string, fn func(*model.Content) error) (Document, error) {
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		content, err := s.Protector.OpenFor(r.ID, r.Content)
		if err != nil {
			return err
		}
		if err := fn(&content); err != nil {
			return err
		}
		r.Content.Sections = content.Sections
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return s.open(ctx, res)
}

// SetSectionOrder persists the user's section order override.
func (s *Service) SetSectionOrder(ctx context.Context, userID, id string, order []string) (Document, error) {
	normalized := model.NormalizeSectionOrder(order)
	if len(normalized) != len(order) {
		return Document{}, fmt.Errorf("%w: section order has unknown or repeated sections", ErrInvalidInput)
	}
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		r.Customization.SectionOrder = normalized
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return s.open(ctx, res)
}

// SaveVersion snapshots the live state.
func (s *Service) SaveVersion(ctx context.Context, userID, id, comment string) (VersionResult, error) {
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		r.SaveVersion(comment, s.now())
		return nil
	})
	if err != nil {
		return VersionResult{}, err
	}
	return VersionResult{CurrentVersion: res.Version, TotalVersions: len(res.Versions)}, nil
}

// History returns every snapshot, decrypted, in insertion order.
func (s *Service) History(ctx context.Context, userID, id string) (History, error) {
	res, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return History{}, err
	}
	out := History{CurrentVersion: res.Version, Versions: make([]Snapshot, 0, len(res.Versions))}
	for _, v := range res.Versions {
		snap, err := s.openSnapshot(res.ID, v)
		if err != nil {
			return History{}, err
		}
		out.Versions = append(out.Versions, snap)
	}
	return out, nil
}

// RestoreVersion restores ref (a version number or "current") after
// checkpointing the live state.
func (s *Service) RestoreVersion(ctx context.Context, userID, id, ref string) (Document, error) {
	var restored int
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		target, err := r.RestoreVersion(ref, s.now())
		restored = target.Version
		return err
	})
	if err != nil {
		return Document{}, err
	}
	telemetry.Info("resume.version.restored", map[string]any{
		"user_id":     userID,
		"resume_id":   id,
		"restored_to": restored,
		"version":     res.Version,
	})
	return s.open(ctx, res)
}

// CompareVersions resolves both refs independently and decrypts them.
func (s *Service) CompareVersions(ctx context.Context, userID, id, v1, v2 string) (Comparison, error) {
	res, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Comparison{}, err
	}
	a, err := res.Lookup(v1)
	if err != nil {
		return Comparison{}, err
	}
	b, err := res.Lookup(v2)
	if err != nil {
		return Comparison{}, err
	}
	left, err := s.openSnapshot(res.ID, a)
	if err != nil {
		return Comparison{}, err
	}
	right, err := s.openSnapshot(res.ID, b)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Version1: left,
		Version2: right,
		Template: s.Templates.Resolve(ctx, res.TemplateID),
	}, nil
}

// Publish makes a document public. Consent is mandatory and is checked once
// the document is known to exist.
func (s *Service) Publish(ctx context.Context, userID, id string, in PublishInput) (ShareState, error) {
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		return r.Publish(in, s.now(), s.newID)
	})
	if err != nil {
		return ShareState{}, err
	}
	telemetry.Info("resume.published", map[string]any{"user_id": userID, "resume_id": id, "share_id": res.ShareID})
	return s.shareState(res), nil
}

// UpdateShare patches share settings.
func (s *Service) UpdateShare(ctx context.Context, userID, id string, u ShareUpdate) (ShareState, error) {
	res, err := s.mutate(ctx, userID, id, func(r *Resume) error {
		return r.UpdateShare(u, s.now(), s.newID)
	})
	if err != nil {
		return ShareState{}, err
	}
	return s.shareState(res), nil
}

// ViewShared serves a share-link visit and counts it.
func (s *Service) ViewShared(ctx context.Context, shareID, password string) (SharedView, error) {
	res, err := s.shared(ctx, shareID)
	if err != nil {
		return SharedView{}, err
	}
	if err := res.CheckShareAccess(password, s.now()); err != nil {
		return SharedView{}, err
	}
	content, err := s.Protector.OpenFor(res.ID, res.Content)
	if err != nil {
		return SharedView{}, err
	}
	views, err := s.Repo.IncrementViewCount(ctx, res.ID)
	if err != nil {
		return SharedView{}, err
	}
	metrics.IncShareViews()
	s.cacheDel(ctx, cache.KeyResume(res.ID, res.UserID))

	return SharedView{
		Title:         res.Title,
		Content:       content,
		Customization: res.Customization,
		Template:      s.Templates.Resolve(ctx, res.TemplateID),
		AllowDownload: res.Share.AllowDownload,
		ViewCount:     views,
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
	}, nil
}

// AuthorizeSharedDownload applies the share gates plus the download
// permission and returns the decrypted document. Views are not counted.
func (s *Service) AuthorizeSharedDownload(ctx context.Context, shareID, password string) (Document, error) {
	res, err := s.shared(ctx, shareID)
	if err != nil {
		return Document{}, err
	}
	if err := res.CheckDownload(password, s.now()); err != nil {
		return Document{}, err
	}
	return s.open(ctx, res)
}

// ShareURL is the public address of a share id.
func (s *Service) ShareURL(shareID string) string {
	if shareID == "" {
		return ""
	}
	return strings.TrimRight(s.ClientURL, "/") + "/share/" + shareID
}

func (s *Service) shared(ctx context.Context, shareID string) (Resume, error) {
	if strings.TrimSpace(shareID) == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByShareID(ctx, shareID)
}

func (s *Service) shareState(res Resume) ShareState {
	return ShareState{
		ShareID:  res.ShareID,
		ShareURL: s.ShareURL(res.ShareID),
		IsPublic: res.IsPublic,
		Settings: res.Share,
		Consent:  res.Consent,
	}
}

// mutate is the read-modify-write cycle every change goes through. It reads
// from the store, never the cache, and writes with the loaded revision.
func (s *Service) mutate(ctx context.Context, userID, id string, fn func(*Resume) error) (Resume, error) {
	res, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	if err := fn(&res); err != nil {
		return Resume{}, err
	}
	res.UpdatedAt = s.now()
	saved, err := s.Repo.Update(ctx, res)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			telemetry.Warn("resume.update.conflict", map[string]any{"user_id": userID, "resume_id": id, "revision": res.Revision})
		}
		return Resume{}, err
	}
	s.invalidate(ctx, userID, id)
	return saved, nil
}

func (s *Service) seal(r *Resume, content model.Content) error {
	sealed, err := s.Protector.SealFor(r.ID, content)
	if err != nil {
		return fmt.Errorf("seal content: %w", err)
	}
	r.Content = sealed
	return nil
}

func (s *Service) open(ctx context.Context, res Resume) (Document, error) {
	content, err := s.Protector.OpenFor(res.ID, res.Content)
	if err != nil {
		return Document{}, fmt.Errorf("open resume %s: %w", res.ID, err)
	}
	return Document{
		ID:            res.ID,
		UserID:        res.UserID,
		TemplateID:    res.TemplateID,
		TemplateName:  s.templateName(ctx, res.TemplateID),
		Title:         res.Title,
		Content:       content,
		Customization: res.Customization,
		Version:       res.Version,
		ShareID:       res.ShareID,
		IsPublic:      res.IsPublic,
		Consent:       res.Consent,
		Share:         res.Share,
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
	}, nil
}

func (s *Service) openSnapshot(docID string, v VersionSnapshot) (Snapshot, error) {
	content, err := s.Protector.OpenFor(docID, v.Content)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open version %d: %w", v.Version, err)
	}
	return Snapshot{
		Version:       v.Version,
		Content:       content,
		Customization: v.Customization,
		CreatedAt:     v.CreatedAt,
		Comment:       v.Comment,
	}, nil
}

func (s *Service) templateName(ctx context.Context, id string) string {
	if id == "" || s.Templates == nil {
		return ""
	}
	t, err := s.Templates.Get(ctx, id)
	if err != nil {
		return ""
	}
	return t.Name
}

// checkContent validates content and rejects stored-photo references outside
// the owner's namespace. keep is the reference already on the document.
func (s *Service) checkContent(userID, keep string, content model.Content) error {
	if err := model.ValidateContent(content); err != nil {
		return err
	}
	photo := content.Personal.Photo
	if key, ok := strings.CutPrefix(photo, PhotoRefPrefix); ok && photo != keep {
		if !object.Owns(userID, key) {
			return fmt.Errorf("%w: photo reference is not owned by the caller", ErrInvalidInput)
		}
	}
	return nil
}

// load reads an aggregate through the cache.
func (s *Service) load(ctx context.Context, userID, id string) (Resume, error) {
	key := cache.KeyResume(id, userID)
	if raw := s.cacheGet(ctx, key); raw != nil {
		var res Resume
		if err := json.Unmarshal(raw, &res); err == nil {
			return res, nil
		}
	}
	res, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	s.cacheSet(ctx, key, res)
	return res, nil
}

// invalidate drops the cached aggregate (when id is set) and moves the
// user's list generation so every cached page is skipped.
func (s *Service) invalidate(ctx context.Context, userID, id string) {
	if s.Cache == nil {
		return
	}
	if id != "" {
		s.cacheDel(ctx, cache.KeyResume(id, userID))
	}
	if _, err := s.Cache.Incr(ctx, cache.KeyResumeListGen(userID)); err != nil {
		telemetry.Warn("cache.incr.failed", map[string]any{"user_id": userID, "error": err})
	}
}

func (s *Service) listKey(ctx context.Context, userID string, q ListQuery) string {
	gen := "0"
	if raw := s.cacheGet(ctx, cache.KeyResumeListGen(userID)); len(raw) > 0 {
		gen = string(raw)
	}
	page := util.Digest(16, strconv.Itoa(q.Page), strconv.Itoa(q.Limit), q.Sort, q.Order, q.Search)
	return cache.KeyResumeList(userID, gen, page)
}

func (s *Service) cacheGet(ctx context.Context, key string) []byte {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("cache.get.failed", map[string]any{"key": key, "error": err})
		return nil
	}
	return raw
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, raw, s.CacheTTL); err != nil {
		telemetry.Warn("cache.set.failed", map[string]any{"key": key, "error": err})
	}
}

func (s *Service) cacheDel(ctx context.Context, key string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, key); err != nil {
		telemetry.Warn("cache.del.failed", map[string]any{"key": key, "error": err})
	}
}
