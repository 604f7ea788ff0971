package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const xmlContentType = "application/xml; charset=utf-8"

// Uploader is the write side of an object store
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// ObjectPublisher writes generated documents such as sitemaps to an object
// store under a key prefix
type ObjectPublisher struct {
	store  Uploader
	prefix string
}

// NewObjectPublisher creates a publisher writing under prefix ("" for the bucket root)
func NewObjectPublisher(store Uploader, prefix string) *ObjectPublisher {
	return &ObjectPublisher{store: store, prefix: strings.Trim(prefix, "/")}
}

// Publish uploads data as name
func (p *ObjectPublisher) Publish(ctx context.Context, name string, data []byte) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	if p.prefix != "" {
		key = p.prefix + "/" + key
	}
	return p.store.Upload(ctx, key, data, xmlContentType)
}

// DirectoryPublisher writes generated documents below a local directory,
// typically one served by the edge web server
type DirectoryPublisher struct {
	dir string
}

// NewDirectoryPublisher creates a publisher rooted at dir
func NewDirectoryPublisher(dir string) *DirectoryPublisher {
	return &DirectoryPublisher{dir: dir}
}

// Publish writes data to dir/name. The file is replaced atomically so a
// reader never sees a half-written document.
func (p *DirectoryPublisher) Publish(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := cleanName(name)
	if err != nil {
		return err
	}
	target := filepath.Join(p.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".publish-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// cleanName rejects names escaping the publish root
func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(name, "/") {
		return "", errors.New("invalid document name: " + name)
	}
	return cleaned, nil
}
