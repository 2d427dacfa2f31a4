package resumes

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestPublishRequiresConsent(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	before := *r

	err := r.Publish(PublishInput{AllowDownload: ptr(true)}, now, fixedID("s1"))
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Equal(t, before.IsPublic, r.IsPublic)
	assert.Equal(t, before.ShareID, r.ShareID)
	assert.Equal(t, before.Consent, r.Consent)
}

func TestPublishKeepsShareIDAndViews(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{ShareID: "existing", Share: ShareSettings{ViewCount: 9}}

	require.NoError(t, r.Publish(PublishInput{Consent: true, IPAddress: "127.0.0.1"}, now, fixedID("new")))
	assert.Equal(t, "existing", r.ShareID)
	assert.True(t, r.IsPublic)
	assert.True(t, r.Share.AllowDownload)
	assert.Nil(t, r.Share.ExpiresAt)
	assert.EqualValues(t, 9, r.Share.ViewCount)
	assert.True(t, r.Consent.Given)
	assert.Equal(t, "127.0.0.1", r.Consent.IPAddress)
	require.NotNil(t, r.Consent.GivenAt)
	assert.True(t, r.Consent.GivenAt.Equal(now))
}

func TestPublishExpiry(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true, ExpiresInDays: ptr(0.5)}, now, fixedID("s1")))
	require.NotNil(t, r.Share.ExpiresAt)
	assert.Equal(t, now.Add(12*time.Hour), *r.Share.ExpiresAt)

	require.NoError(t, (&Resume{}).Publish(PublishInput{Consent: true, ExpiresInDays: ptr(float64(MaxShareDays))}, now, fixedID("s3")))

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), MaxShareDays + 1, 1e9} {
		fresh := &Resume{}
		err := fresh.Publish(PublishInput{Consent: true, ExpiresInDays: ptr(bad)}, now, fixedID("s2"))
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.False(t, fresh.IsPublic)
	}

	r = &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true}, now, fixedID("s4")))
	err := r.UpdateShare(ShareUpdate{ExpiresInDays: ptr(1e9)}, now, fixedID("s4"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, r.Share.ExpiresAt)
}

func TestUpdateSharePatchesIndependently(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true, Password: "pw", ExpiresInDays: ptr(2.0)}, now, fixedID("s1")))
	hash := r.Share.PasswordHash

	require.NoError(t, r.UpdateShare(ShareUpdate{AllowDownload: ptr(false)}, now, fixedID("s2")))
	assert.False(t, r.Share.AllowDownload)
	assert.Equal(t, hash, r.Share.PasswordHash)
	assert.NotNil(t, r.Share.ExpiresAt)
	assert.True(t, r.IsPublic)

	require.NoError(t, r.UpdateShare(ShareUpdate{Password: ptr(""), ExpiresInDays: ptr(0.0)}, now, fixedID("s2")))
	assert.Empty(t, r.Share.PasswordHash)
	assert.Nil(t, r.Share.ExpiresAt)
	assert.Equal(t, "s1", r.ShareID)
}

func TestUpdateShareFailedPatchChangesNothing(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true}, now, fixedID("s1")))
	before := *r

	err := r.UpdateShare(ShareUpdate{AllowDownload: ptr(false), ExpiresInDays: ptr(-3.0)}, now, fixedID("s2"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before.Share, r.Share)
}

func TestUpdateShareGoingPublicNeedsConsent(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	err := r.UpdateShare(ShareUpdate{IsPublic: ptr(true)}, now, fixedID("s1"))
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.False(t, r.IsPublic)
	assert.Empty(t, r.ShareID)

	require.NoError(t, r.UpdateShare(ShareUpdate{IsPublic: ptr(true), Consent: true}, now, fixedID("s1")))
	assert.True(t, r.IsPublic)
	assert.Equal(t, "s1", r.ShareID)
	assert.True(t, r.Consent.Given)
}

func TestShareAccessChecksExpiryBeforePassword(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true, Password: "secret", ExpiresInDays: ptr(1.0)}, now, fixedID("s1")))

	assert.ErrorIs(t, r.CheckShareAccess("wrong", now), ErrUnauthorized)
	assert.ErrorIs(t, r.CheckShareAccess("", now), ErrUnauthorized)
	assert.NoError(t, r.CheckShareAccess("secret", now))

	later := now.Add(25 * time.Hour)
	assert.ErrorIs(t, r.CheckShareAccess("secret", later), ErrExpired)
	assert.ErrorIs(t, r.CheckShareAccess("wrong", later), ErrExpired)
}

func TestCheckDownloadHonoursPermission(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{}
	require.NoError(t, r.Publish(PublishInput{Consent: true, AllowDownload: ptr(false)}, now, fixedID("s1")))
	assert.ErrorIs(t, r.CheckDownload("", now), ErrForbidden)

	require.NoError(t, r.UpdateShare(ShareUpdate{AllowDownload: ptr(true)}, now, fixedID("s1")))
	assert.NoError(t, r.CheckDownload("", now))
}
