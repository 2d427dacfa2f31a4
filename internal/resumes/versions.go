package resumes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CurrentRef addresses the live state wherever a version number is accepted.
const CurrentRef = "current"

// SaveVersion appends a snapshot of the live state tagged with the current
// version number and then increments the version.
func (r *Resume) SaveVersion(comment string, now time.Time) VersionSnapshot {
	if strings.TrimSpace(comment) == "" {
		comment = fmt.Sprintf("Version %d", r.Version)
	}
	snap := r.live(now, comment)
	r.Versions = append(r.Versions, snap)
	r.Version++
	return snap
}

// RestoreVersion checkpoints the live state, replaces content and
// customization with the target and increments the version. ref is a version
// number or CurrentRef.
func (r *Resume) RestoreVersion(ref string, now time.Time) (VersionSnapshot, error) {
	target, err := r.Lookup(ref)
	if err != nil {
		return VersionSnapshot{}, err
	}
	r.Versions = append(r.Versions, r.live(now, fmt.Sprintf("Auto-save before restoring to v%d", target.Version)))
	r.Content = clone(target.Content)
	r.Customization = clone(target.Customization)
	r.Version++
	return target, nil
}

// Lookup resolves ref to a snapshot. CurrentRef yields the live state; a
// number yields the first snapshot carrying it.
func (r *Resume) Lookup(ref string) (VersionSnapshot, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, CurrentRef) {
		return r.live(r.UpdatedAt, ""), nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return VersionSnapshot{}, fmt.Errorf("%w: %q", ErrVersionNotFound, ref)
	}
	for _, v := range r.Versions {
		if v.Version == n {
			return v, nil
		}
	}
	return VersionSnapshot{}, fmt.Errorf("%w: %d", ErrVersionNotFound, n)
}

func (r *Resume) live(at time.Time, comment string) VersionSnapshot {
	return VersionSnapshot{
		Version:       r.Version,
		Content:       clone(r.Content),
		Customization: clone(r.Customization),
		CreatedAt:     at,
		Comment:       comment,
	}
}
