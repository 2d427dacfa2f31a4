package resumes

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

// MaxShareDays bounds expiresIn; ten years keeps the deadline well inside time.Duration.
const MaxShareDays = 3650

// PublishInput is the body of a share-link generation.
type PublishInput struct {
	Consent       bool
	AllowDownload *bool
	Password      string
	ExpiresInDays *float64
	IPAddress     string
}

// ShareUpdate patches share state. Nil fields are left untouched.
type ShareUpdate struct {
	IsPublic      *bool
	AllowDownload *bool
	Password      *string
	ExpiresInDays *float64
	Consent       bool
	IPAddress     string
}

// Publish makes the document public. The share id is generated once and kept
// for the life of the document; settings are replaced except the view count.
func (r *Resume) Publish(in PublishInput, now time.Time, newID func() string) error {
	if !in.Consent {
		return ErrConsentRequired
	}
	expires, err := expiry(in.ExpiresInDays, now)
	if err != nil {
		return err
	}
	hash, err := hashSharePassword(in.Password)
	if err != nil {
		return err
	}
	allow := true
	if in.AllowDownload != nil {
		allow = *in.AllowDownload
	}

	if r.ShareID == "" {
		r.ShareID = newID()
	}
	r.IsPublic = true
	r.Consent = stampConsent(true, now, in.IPAddress)
	r.Share = ShareSettings{
		AllowDownload: allow,
		PasswordHash:  hash,
		ExpiresAt:     expires,
		ViewCount:     r.Share.ViewCount,
	}
	return nil
}

// UpdateShare applies a patch. Going from private to public needs consent;
// any explicit isPublic stamps the consent record given or revoked.
func (r *Resume) UpdateShare(u ShareUpdate, now time.Time, newID func() string) error {
	if u.IsPublic != nil && *u.IsPublic && !r.IsPublic && !u.Consent {
		return ErrConsentRequired
	}

	// Validate everything before the first write so a failed patch changes nothing.
	var expires *time.Time
	if u.ExpiresInDays != nil {
		var err error
		if expires, err = expiry(u.ExpiresInDays, now); err != nil {
			return err
		}
	}
	var hash string
	if u.Password != nil {
		var err error
		if hash, err = hashSharePassword(*u.Password); err != nil {
			return err
		}
	}

	if u.IsPublic != nil {
		r.IsPublic = *u.IsPublic
		r.Consent = stampConsent(*u.IsPublic, now, u.IPAddress)
		if r.IsPublic && r.ShareID == "" {
			r.ShareID = newID()
		}
	}
	if u.AllowDownload != nil {
		r.Share.AllowDownload = *u.AllowDownload
	}
	if u.Password != nil {
		r.Share.PasswordHash = hash
	}
	if u.ExpiresInDays != nil {
		r.Share.ExpiresAt = expires
	}
	return nil
}

// CheckShareAccess applies the expiry and password gates in that order.
func (r *Resume) CheckShareAccess(password string, now time.Time) error {
	if r.Share.ExpiresAt != nil && now.After(*r.Share.ExpiresAt) {
		return ErrExpired
	}
	if r.Share.PasswordHash != "" && !matchSharePassword(r.Share.PasswordHash, password) {
		return ErrUnauthorized
	}
	return nil
}

// CheckDownload additionally requires downloads to be allowed.
func (r *Resume) CheckDownload(password string, now time.Time) error {
	if err := r.CheckShareAccess(password, now); err != nil {
		return err
	}
	if !r.Share.AllowDownload {
		return ErrForbidden
	}
	return nil
}

func stampConsent(given bool, now time.Time, ip string) PrivacyConsent {
	at := now
	return PrivacyConsent{Given: given, GivenAt: &at, IPAddress: ip}
}

// expiry turns a day count into an absolute time. nil or 0 means no expiry.
func expiry(days *float64, now time.Time) (*time.Time, error) {
	if days == nil || *days == 0 {
		return nil, nil
	}
	if *days < 0 || math.IsNaN(*days) || math.IsInf(*days, 0) {
		return nil, fmt.Errorf("%w: expiresIn must be a positive number of days", ErrInvalidInput)
	}
	if *days > MaxShareDays {
		return nil, fmt.Errorf("%w: expiresIn must be at most %d days", ErrInvalidInput, MaxShareDays)
	}
	at := now.Add(time.Duration(*days * float64(24*time.Hour)))
	return &at, nil
}

func hashSharePassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", ErrInvalidInput)
		}
		return "", fmt.Errorf("hash share password: %w", err)
	}
	return string(hash), nil
}

func matchSharePassword(hash, password string) bool {
	if password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
