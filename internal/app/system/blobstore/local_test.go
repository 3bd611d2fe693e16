package blobstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
)

func TestLocal_PutListDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := blobstore.NewLocal(root, "http://localhost:8080/files/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	imgKey := blobstore.ImageKey("u1", "img-1")
	audioKey := blobstore.AudioKey("u1", "a1")
	for _, k := range []string{imgKey, audioKey} {
		if err := store.Put(ctx, k, strings.NewReader("data"), "application/octet-stream"); err != nil {
			t.Fatalf("Put(%s): %v", k, err)
		}
	}

	objs, err := store.List(ctx, blobstore.ImagePrefix)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0].Key != imgKey {
		t.Fatalf("List(images) = %+v, want only %s", objs, imgKey)
	}
	if objs[0].Size != 4 {
		t.Errorf("Size = %d, want 4", objs[0].Size)
	}

	if got := store.URL(imgKey); got != "http://localhost:8080/files/journal-images/u1/img-1" {
		t.Errorf("URL() = %q", got)
	}

	if err := store.Delete(ctx, imgKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "journal-images", "u1", "img-1")); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err = %v", err)
	}
	if err := store.Delete(ctx, imgKey); err != nil {
		t.Errorf("deleting a missing blob should succeed, got %v", err)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	store, err := blobstore.NewLocal(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	for _, k := range []string{"", "/etc/passwd", "../outside", "a/../../b"} {
		if err := store.Put(context.Background(), k, strings.NewReader("x"), ""); err == nil {
			t.Errorf("Put(%q) should fail", k)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := blobstore.AudioKey("u1", "abc"); got != "journal-audio/u1/abc.mp3" {
		t.Errorf("AudioKey() = %q", got)
	}
	if got := blobstore.ImageKey("u1", "abc"); got != "journal-images/u1/abc" {
		t.Errorf("ImageKey() = %q", got)
	}
}

func TestOwnsAudioKey(t *testing.T) {
	tests := []struct {
		user, key string
		want      bool
	}{
		{"u1", blobstore.AudioKey("u1", "abc"), true},
		{"u1", blobstore.AudioKey("u1", "../u2/abc"), false},
		{"u1", blobstore.AudioKey("u1", "../../etc/passwd"), false},
		{"u1", blobstore.AudioKey("u2", "abc"), false},
		{"u1", blobstore.ImageKey("u1", "abc"), false},
		{"", blobstore.AudioKey("", "abc"), false},
		{"u1/../u2", blobstore.AudioKey("u1/../u2", "abc"), false},
	}
	for _, tt := range tests {
		if got := blobstore.OwnsAudioKey(tt.user, tt.key); got != tt.want {
			t.Errorf("OwnsAudioKey(%q, %q) = %v, want %v", tt.user, tt.key, got, tt.want)
		}
	}
}
