// Package storage keeps uploaded images and hands back references to them.
// The catalog only ever persists the returned reference.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFormat is returned by Put for extensions other than
// jpg, jpeg, png and webp.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// BlobStore stores image bytes and returns a public URL for them.
type BlobStore interface {
	Put(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Local writes files under Dir and serves them from PublicPath.
type Local struct {
	Dir        string
	PublicPath string
}

// NewLocal returns a store rooted at dir.
func NewLocal(dir, publicPath string) *Local {
	return &Local{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/")}
}

// Put stores r under a fresh name that keeps filename's extension.
func (l *Local) Put(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedFormat
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return l.PublicPath + "/" + name, nil
}

// Delete removes the file behind url. References this store did not issue
// and files that are already gone are ignored.
func (l *Local) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, l.PublicPath+"/") {
		return nil
	}
	name := filepath.Base(url)
	err := os.Remove(filepath.Join(l.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
