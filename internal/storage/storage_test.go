package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "/uploads/")
	ctx := context.Background()

	url, err := store.Put(ctx, "Photo.JPG", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("url = %q, want /uploads/<name>.jpg", url)
	}
	path := filepath.Join(dir, filepath.Base(url))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("stored %q, want %q", data, "bytes")
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still exists after Delete: %v", err)
	}
	if err := store.Delete(ctx, url); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestLocalRejectsFormat(t *testing.T) {
	store := NewLocal(t.TempDir(), "/uploads")
	_, err := store.Put(context.Background(), "notes.txt", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLocalDeleteIgnoresForeignURL(t *testing.T) {
	store := NewLocal(t.TempDir(), "/uploads")
	if err := store.Delete(context.Background(), "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
