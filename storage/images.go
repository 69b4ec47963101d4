// Package storage keeps uploaded product images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL path images are served under, and the prefix
// of every stored image path.
const PublicPrefix = "static/images"

// ErrInvalidFilename is returned when an upload has no usable filename.
var ErrInvalidFilename = errors.New("invalid image filename")

// Image is the result of storing an upload.
type Image struct {
	// Path is the public relative path, e.g. "static/images/a.png".
	Path string
	// Created is false when a file with the same name was overwritten.
	Created bool
}

// ImageStore writes uploads into a single directory keyed by the client
// filename. Same-name uploads overwrite each other.
type ImageStore struct {
	dir string
}

// NewImageStore creates dir if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// Save copies the uploaded file into the store.
func (s *ImageStore) Save(fh *multipart.FileHeader) (Image, error) {
	name, err := cleanName(fh.Filename)
	if err != nil {
		return Image{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	dst := filepath.Join(s.dir, name)

	_, statErr := os.Stat(dst)
	created := errors.Is(statErr, fs.ErrNotExist)

	out, err := os.Create(dst)
	if err != nil {
		return Image{}, fmt.Errorf("creating %s: %w", name, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return Image{}, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return Image{}, fmt.Errorf("closing %s: %w", name, err)
	}

	return Image{Path: path.Join(PublicPrefix, name), Created: created}, nil
}

// Remove deletes a previously stored image by its public path.
// A missing file is not an error.
func (s *ImageStore) Remove(publicPath string) error {
	name, err := cleanName(strings.TrimPrefix(publicPath, PublicPrefix+"/"))
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// cleanName drops any directory part a client may have sent.
func cleanName(filename string) (string, error) {
	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(filename, `\`, "/")))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", ErrInvalidFilename
	}
	return name, nil
}
