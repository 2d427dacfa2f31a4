package resumes

import (
	"bytes"
	"encoding/json"
	"time"

	"resume-builder/resume/model"
)

// optional records whether a JSON field was present, so an explicit null can
// clear a value while an absent field leaves it alone.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type createRequest struct {
	Title         string               `json:"title"`
	TemplateID    string               `json:"templateId"`
	TemplateIDAlt string               `json:"template_id"`
	Content       *model.Content       `json:"content"`
	Customization *model.Customization `json:"customization"`
}

func (r createRequest) toInput() CreateInput {
	tid := r.TemplateID
	if tid == "" {
		tid = r.TemplateIDAlt
	}
	return CreateInput{
		Title:         r.Title,
		TemplateID:    tid,
		Content:       r.Content,
		Customization: r.Customization,
	}
}

type updateRequest struct {
	Title         *string              `json:"title"`
	TemplateID    optional[string]     `json:"templateId"`
	TemplateIDAlt optional[string]     `json:"template_id"`
	Content       *model.Content       `json:"content"`
	Customization *model.Customization `json:"customization"`
}

func (r updateRequest) toInput() UpdateInput {
	in := UpdateInput{
		Title:         r.Title,
		Content:       r.Content,
		Customization: r.Customization,
	}
	tid := r.TemplateID
	if !tid.Set {
		tid = r.TemplateIDAlt
	}
	if tid.Set {
		v := ""
		if tid.Value != nil {
			v = *tid.Value
		}
		in.TemplateID = &v
	}
	return in
}

// reorderRequest carries either the full id order or a single move.
type reorderRequest struct {
	IDs  []string `json:"ids"`
	From *int     `json:"from"`
	To   *int     `json:"to"`
}

type sectionOrderRequest struct {
	Order []string `json:"order"`
}

type versionRequest struct {
	Comment string `json:"comment"`
}

type publishRequest struct {
	Consent       bool     `json:"consent"`
	AllowDownload *bool    `json:"allowDownload"`
	Password      *string  `json:"password"`
	ExpiresIn     *float64 `json:"expiresIn"`
}

func (r publishRequest) toInput(ip string) PublishInput {
	in := PublishInput{
		Consent:       r.Consent,
		AllowDownload: r.AllowDownload,
		ExpiresInDays: r.ExpiresIn,
		IPAddress:     ip,
	}
	if r.Password != nil {
		in.Password = *r.Password
	}
	return in
}

type shareUpdateRequest struct {
	IsPublic      *bool             `json:"isPublic"`
	AllowDownload *bool             `json:"allowDownload"`
	Password      optional[string]  `json:"password"`
	ExpiresIn     optional[float64] `json:"expiresIn"`
	Consent       bool              `json:"consent"`
}

func (r shareUpdateRequest) toInput(ip string) ShareUpdate {
	u := ShareUpdate{
		IsPublic:      r.IsPublic,
		AllowDownload: r.AllowDownload,
		Consent:       r.Consent,
		IPAddress:     ip,
	}
	if r.Password.Set {
		pw := ""
		if r.Password.Value != nil {
			pw = *r.Password.Value
		}
		u.Password = &pw
	}
	if r.ExpiresIn.Set {
		days := 0.0
		if r.ExpiresIn.Value != nil {
			days = *r.ExpiresIn.Value
		}
		u.ExpiresInDays = &days
	}
	return u
}

type shareSettingsResponse struct {
	AllowDownload bool       `json:"allowDownload"`
	HasPassword   bool       `json:"hasPassword"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	ViewCount     int64      `json:"viewCount"`
}

func toShareSettingsResponse(s ShareSettings) shareSettingsResponse {
	return shareSettingsResponse{
		AllowDownload: s.AllowDownload,
		HasPassword:   s.PasswordHash != "",
		ExpiresAt:     s.ExpiresAt,
		ViewCount:     s.ViewCount,
	}
}

type documentResponse struct {
	ID            string                `json:"id"`
	TemplateID    string                `json:"templateId,omitempty"`
	TemplateName  string                `json:"templateName,omitempty"`
	Title         string                `json:"title"`
	Content       model.Content         `json:"content"`
	Customization model.Customization   `json:"customization"`
	Version       int                   `json:"version"`
	ShareID       string                `json:"shareId,omitempty"`
	ShareURL      string                `json:"shareUrl,omitempty"`
	IsPublic      bool                  `json:"isPublic"`
	Consent       PrivacyConsent        `json:"privacyConsent"`
	ShareSettings shareSettingsResponse `json:"shareSettings"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func (h *Handler) toDocumentResponse(d Document) documentResponse {
	return documentResponse{
		ID:            d.ID,
		TemplateID:    d.TemplateID,
		TemplateName:  d.TemplateName,
		Title:         d.Title,
		Content:       d.Content,
		Customization: d.Customization,
		Version:       d.Version,
		ShareID:       d.ShareID,
		ShareURL:      h.Svc.ShareURL(d.ShareID),
		IsPublic:      d.IsPublic,
		Consent:       d.Consent,
		ShareSettings: toShareSettingsResponse(d.Share),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type snapshotResponse struct {
	Version       int                 `json:"version"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	CreatedAt     time.Time           `json:"createdAt"`
	Comment       string              `json:"comment"`
}

func toSnapshotResponse(s Snapshot) snapshotResponse {
	return snapshotResponse{
		Version:       s.Version,
		Content:       s.Content,
		Customization: s.Customization,
		CreatedAt:     s.CreatedAt,
		Comment:       s.Comment,
	}
}

type historyResponse struct {
	CurrentVersion int                `json:"currentVersion"`
	Versions       []snapshotResponse `json:"versions"`
}

func toHistoryResponse(hist History) historyResponse {
	out := historyResponse{CurrentVersion: hist.CurrentVersion, Versions: make([]snapshotResponse, 0, len(hist.Versions))}
	for _, v := range hist.Versions {
		out.Versions = append(out.Versions, toSnapshotResponse(v))
	}
	return out
}

type comparisonResponse struct {
	Version1 snapshotResponse `json:"version1"`
	Version2 snapshotResponse `json:"version2"`
	Template model.Template   `json:"template"`
}

type shareStateResponse struct {
	ShareID  string                `json:"shareId"`
	ShareURL string                `json:"shareUrl"`
	IsPublic bool                  `json:"isPublic"`
	Settings shareSettingsResponse `json:"settings"`
	Consent  PrivacyConsent        `json:"privacyConsent"`
}

func toShareStateResponse(s ShareState) shareStateResponse {
	return shareStateResponse{
		ShareID:  s.ShareID,
		ShareURL: s.ShareURL,
		IsPublic: s.IsPublic,
		Settings: toShareSettingsResponse(s.Settings),
		Consent:  s.Consent,
	}
}

type sharedViewResponse struct {
	Title         string              `json:"title"`
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	Template      model.Template      `json:"template"`
	AllowDownload bool                `json:"allowDownload"`
	ViewCount     int64               `json:"viewCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func toSharedViewResponse(v SharedView) sharedViewResponse {
	return sharedViewResponse{
		Title:         v.Title,
		Content:       v.Content,
		Customization: v.Customization,
		Template:      v.Template,
		AllowDownload: v.AllowDownload,
		ViewCount:     v.ViewCount,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// sharePassword reads the share password from the query or the header.
func sharePassword(query, header string) string {
	if query != "" {
		return query
	}
	return header
}
