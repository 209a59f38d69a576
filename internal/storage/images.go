// Package storage keeps uploaded product images on an afero filesystem.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrNotFound        = errors.New("image not found")
	ErrInvalidName     = errors.New("invalid image name")
)

// DefaultMaxBytes is the upload limit used when Config.MaxBytes is zero.
const DefaultMaxBytes = 5 << 20

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Config describes where images live and how they are addressed.
type Config struct {
	Dir          string // directory on the filesystem
	PublicPrefix string // URL path prefix, e.g. /uploads
	MaxBytes     int64
}

// ImageStore saves, serves and deletes uploaded images.
type ImageStore struct {
	fs     afero.Fs
	dir    string
	prefix string
	max    int64
}

// NewImageStore prepares the upload directory on fs.
func NewImageStore(fs afero.Fs, cfg Config) (*ImageStore, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/uploads"
	}
	if err := fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", cfg.Dir, err)
	}
	return &ImageStore{
		fs:     fs,
		dir:    cfg.Dir,
		prefix: strings.TrimRight(cfg.PublicPrefix, "/"),
		max:    cfg.MaxBytes,
	}, nil
}

// MaxBytes returns the configured upload limit.
func (s *ImageStore) MaxBytes() int64 { return s.max }

// PublicPrefix returns the URL prefix of saved images, without a trailing slash.
func (s *ImageStore) PublicPrefix() string { return s.prefix }

// Save stores the image read from r under a fresh name and returns its public URL.
func (s *ImageStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.max+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if int64(len(data)) > s.max {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isAllowed(mtype) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	name := uuid.NewString() + mtype.Extension()
	if err := afero.WriteReader(s.fs, path.Join(s.dir, name), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return s.prefix + "/" + name, nil
}

// Open returns the stored image and its content type.
func (s *ImageStore) Open(name string) (afero.File, string, error) {
	if err := validName(name); err != nil {
		return nil, "", err
	}
	f, err := s.fs.Open(path.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open image %s: %w", name, err)
	}
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to sniff image %s: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to rewind image %s: %w", name, err)
	}
	return f, mtype.String(), nil
}

// Delete removes a stored image.
func (s *ImageStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	p := path.Join(s.dir, name)
	if ok, err := afero.Exists(s.fs, p); err != nil {
		return fmt.Errorf("failed to stat image %s: %w", name, err)
	} else if !ok {
		return ErrNotFound
	}
	if err := s.fs.Remove(p); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

func isAllowed(mtype *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}
