package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
)

// ErrBlobFailure is returned by MemBlobs when FailDelete matches a key.
var ErrBlobFailure = errors.New("testutil: simulated blob failure")

// MemBlobs is an in-memory blobstore.Store for service and handler tests.
type MemBlobs struct {
	BaseURL string
	// FailDelete, when set, makes Delete fail for matching keys.
	FailDelete func(key string) bool

	mu      sync.Mutex
	objects map[string]blobstore.Object
	deleted []string
}

// NewMemBlobs returns an empty store serving URLs under baseURL.
func NewMemBlobs(baseURL string) *MemBlobs {
	return &MemBlobs{BaseURL: baseURL, objects: map[string]blobstore.Object{}}
}

func (m *MemBlobs) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	m.Add(key, n, time.Now())
	return nil
}

// Add stores key directly with the given modification time.
func (m *MemBlobs) Add(key string, size int64, mod time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = blobstore.Object{Key: key, Size: size, ModTime: mod}
}

func (m *MemBlobs) Delete(ctx context.Context, key string) error {
	if m.FailDelete != nil && m.FailDelete(key) {
		return ErrBlobFailure
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MemBlobs) List(ctx context.Context, prefix string) ([]blobstore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []blobstore.Object
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemBlobs) URL(key string) string {
	return strings.TrimRight(m.BaseURL, "/") + "/" + key
}

// Has reports whether key is stored.
func (m *MemBlobs) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Deleted returns the keys successfully deleted, in order.
func (m *MemBlobs) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
