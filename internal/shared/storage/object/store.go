// Package object stores binary uploads (resume photos) on local disk or S3.
package object

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"resume-builder/internal/shared/util"
)

var (
	// ErrNotFound is returned by Open when no object exists under the key.
	ErrNotFound = errors.New("object not found")
	// ErrBadName is returned by Save when the file name has no usable characters.
	ErrBadName = errors.New("invalid file name")
)

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// Sniff reads up to 512 bytes to detect the content type and returns a reader
// that replays them ahead of the rest of r.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var buf [512]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head := append([]byte(nil), buf[:n]...)
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// NewKey builds a fresh storage key "{owner hash}/{random}_{safe name}".
func NewKey(ownerID, fileName string) (string, error) {
	name, ok := util.SafeObjectName(fileName)
	if !ok {
		return "", ErrBadName
	}
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("random key: %w", err)
	}
	return path.Join(util.OwnerKey(ownerID), hex.EncodeToString(b[:])+"_"+name), nil
}

// Owns reports whether storageKey lives in ownerID's namespace.
func Owns(ownerID, storageKey string) bool {
	dir, _ := path.Split(path.Clean(storageKey))
	return dir == util.OwnerKey(ownerID)+"/"
}
