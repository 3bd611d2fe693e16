// internal/app/system/blobstore/blobstore.go
package blobstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Key prefixes for journal media.
const (
	AudioPrefix = "journal-audio/"
	ImagePrefix = "journal-images/"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or escape
// the store root.
var ErrInvalidKey = errors.New("blobstore: invalid key")

// Object describes a stored blob.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is the blob storage used for journal audio and images.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	// URL is the stable public URL embedded in entry content.
	URL(key string) string
}

// AudioKey returns the key for a voice recording.
func AudioKey(userID, audioID string) string {
	return AudioPrefix + userID + "/" + audioID + ".mp3"
}

// ImageKey returns the key for an inline image.
func ImageKey(userID, imageID string) string {
	return ImagePrefix + userID + "/" + imageID
}

// OwnsAudioKey reports whether key, once cleaned, lies under userID's audio
// prefix.
func OwnsAudioKey(userID, key string) bool {
	if userID == "" || strings.ContainsAny(userID, "/\\") {
		return false
	}
	c, err := CleanKey(key)
	if err != nil {
		return false
	}
	return strings.HasPrefix(c, AudioPrefix+userID+"/")
}

// CleanKey validates and normalizes key.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidKey
	}
	return c, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
