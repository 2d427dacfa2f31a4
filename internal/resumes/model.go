package resumes

import (
	"encoding/json"
	"time"

	"resume-builder/resume/model"
)

// DefaultTitle names documents created without a title.
const DefaultTitle = "Untitled Resume"

// PrivacyConsent is the audit record of the last publish or unpublish.
type PrivacyConsent struct {
	Given     bool       `json:"given"`
	GivenAt   *time.Time `json:"givenAt"`
	IPAddress string     `json:"ipAddress,omitempty"`
}

// ShareSettings controls access through the share link.
type ShareSettings struct {
	AllowDownload bool       `json:"allowDownload"`
	PasswordHash  string     `json:"passwordHash,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	ViewCount     int64      `json:"viewCount"`
}

// VersionSnapshot is an immutable copy of content and customization.
type VersionSnapshot struct {
	Version       int                 `json:"version"`
	Content       model.SealedContent `json:"content"`
	Customization model.Customization `json:"customization"`
	CreatedAt     time.Time           `json:"createdAt"`
	Comment       string              `json:"comment"`
}

// Resume is the stored aggregate. Personal data inside Content and every
// snapshot is sealed.
type Resume struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	TemplateID    string              `json:"templateId,omitempty"`
	Title         string              `json:"title"`
	Content       model.SealedContent `json:"content"`
	Customization model.Customization `json:"customization"`
	Version       int                 `json:"version"`
	Versions      []VersionSnapshot   `json:"versionHistory"`
	ShareID       string              `json:"shareId,omitempty"`
	IsPublic      bool                `json:"isPublic"`
	Consent       PrivacyConsent      `json:"privacyConsent"`
	Share         ShareSettings       `json:"shareSettings"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	// Revision is bumped by every stored update and guards against lost updates.
	Revision int64 `json:"revision"`
}

// Document is a Resume with personal data opened, as handed to callers.
type Document struct {
	ID            string
	UserID        string
	TemplateID    string
	TemplateName  string
	Title         string
	Content       model.Content
	Customization model.Customization
	Version       int
	ShareID       string
	IsPublic      bool
	Consent       PrivacyConsent
	Share         ShareSettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot is a VersionSnapshot with personal data opened.
type Snapshot struct {
	Version       int
	Content       model.Content
	Customization model.Customization
	CreatedAt     time.Time
	Comment       string
}

// History is the version log of a document.
type History struct {
	CurrentVersion int
	Versions       []Snapshot
}

// Comparison holds two resolved versions side by side.
type Comparison struct {
	Version1 Snapshot
	Version2 Snapshot
	Template model.Template
}

// SharedView is what a share-link visitor sees.
type SharedView struct {
	Title         string
	Content       model.Content
	Customization model.Customization
	Template      model.Template
	AllowDownload bool
	ViewCount     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListQuery selects a page of a user's documents.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// Summary is a list entry. Content is not included.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TemplateID   string    `json:"templateId,omitempty"`
	TemplateName string    `json:"templateName,omitempty"`
	Version      int       `json:"version"`
	IsPublic     bool      `json:"isPublic"`
	ShareID      string    `json:"shareId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListResult is a page of summaries.
type ListResult struct {
	Items      []Summary `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// Stats summarises a user's documents.
type Stats struct {
	Total         int `json:"total"`
	RecentUpdates int `json:"recentUpdates"`
	Downloads     int `json:"downloads"`
}

// clone deep-copies a value through its JSON form so that stored aggregates
// never share slices with callers.
func clone[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
