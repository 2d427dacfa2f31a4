package resumes

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/resume/model"
)

func TestVersionOperationsAreMonotonic(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{Version: 1, Content: model.SealedContent{Personal: "sealed-a"}}

	steps := []string{"save", "save", "restore:1", "save", "restore:current", "restore:2"}
	for i, step := range steps {
		prev := r.Version
		prevLen := len(r.Versions)
		switch step {
		case "save":
			r.SaveVersion("", now)
		default:
			_, err := r.RestoreVersion(step[len("restore:"):], now)
			require.NoError(t, err, "step %d", i)
		}
		require.Equal(t, prev+1, r.Version, "step %d", i)
		require.Len(t, r.Versions, prevLen+1, "step %d", i)
		assert.Equal(t, prev, r.Versions[len(r.Versions)-1].Version, "step %d", i)
		r.Content.Personal = fmt.Sprintf("sealed-%d", i)
	}
}

func TestSaveVersionDefaultComment(t *testing.T) {
	r := &Resume{Version: 4}
	snap := r.SaveVersion("  ", time.Now())
	assert.Equal(t, "Version 4", snap.Comment)
	assert.Equal(t, 5, r.Version)
}

func TestRestoreKeepsPriorState(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &Resume{Version: 1, Content: model.SealedContent{Personal: "original"}}
	r.SaveVersion("first", now)
	r.Content.Personal = "edited"
	r.Customization.Font = "Georgia"

	target, err := r.RestoreVersion("1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, target.Version)
	assert.Equal(t, "original", r.Content.Personal)
	assert.Empty(t, r.Customization.Font)

	checkpoint := r.Versions[len(r.Versions)-1]
	assert.Equal(t, "edited", checkpoint.Content.Personal)
	assert.Equal(t, "Georgia", checkpoint.Customization.Font)
	assert.Equal(t, "Auto-save before restoring to v1", checkpoint.Comment)
}

func TestRestoreDoesNotAliasSnapshot(t *testing.T) {
	now := time.Now()
	r := &Resume{Version: 1, Customization: model.Customization{SectionOrder: []string{"skills"}}}
	r.SaveVersion("", now)
	_, err := r.RestoreVersion("1", now)
	require.NoError(t, err)

	r.Customization.SectionOrder[0] = "education"
	assert.Equal(t, "skills", r.Versions[0].Customization.SectionOrder[0])
}

func TestLookupRejectsUnknownRefs(t *testing.T) {
	r := &Resume{Version: 2, Versions: []VersionSnapshot{{Version: 1}}}
	for _, ref := range []string{"", "abc", "0", "2", "-1"} {
		_, err := r.Lookup(ref)
		assert.ErrorIs(t, err, ErrVersionNotFound, "ref %q", ref)
	}
	cur, err := r.Lookup("CURRENT")
	require.NoError(t, err)
	assert.Equal(t, 2, cur.Version)
}
