// Package cache defines the best-effort key/value cache used in front of the
// document store. A miss is (nil, nil); errors are for the caller to log, never
// to fail a request on.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with TTLs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Incr bumps a counter, creating it at 1. List generations use it for
	// selective invalidation.
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// KeyResume addresses one stored aggregate of a user.
func KeyResume(id, userID string) string {
	return "resume:" + id + ":user:" + userID
}

// KeyResumeListGen is the per-user generation counter embedded in list keys.
func KeyResumeListGen(userID string) string {
	return "resumes:user:" + userID + ":gen"
}

// KeyResumeList addresses one cached list page for a generation.
func KeyResumeList(userID, gen, page string) string {
	return "resumes:user:" + userID + ":" + gen + ":" + page
}
