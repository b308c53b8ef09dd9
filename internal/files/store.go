// Package files stores uploaded binaries (document photos, signature
// strokes) on local disk under random names and serves them back under the
// /uploads/ public path.
package files

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path stored files are served under.
const PublicPrefix = "/uploads/"

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".pdf":  {},
}

var dataURLMediaTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes blobs to a single flat directory. Names are UUIDs, so a
// stored path never reveals or depends on client input.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the backing directory, for mounting the static file server.
func (s *Store) Dir() string {
	return s.dir
}

// SaveMultipart persists one uploaded part and returns its public path.
func (s *Store) SaveMultipart(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}
	if s.maxSize > 0 && header.Size > s.maxSize {
		return "", fmt.Errorf("file exceeds the %d byte limit", s.maxSize)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// The header size is client-supplied; count what actually arrives.
	src := io.Reader(file)
	if s.maxSize > 0 {
		src = io.LimitReader(file, s.maxSize+1)
	}
	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if s.maxSize > 0 && written > s.maxSize {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("file exceeds the %d byte limit", s.maxSize)
	}
	return PublicPrefix + name, nil
}

// SaveDataURL decodes a base64 data URL (as produced by a signature pad) and
// persists it like any other upload.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", fmt.Errorf("malformed data URL")
	}
	mediaType, _, _ := strings.Cut(meta, ";")
	ext, ok := dataURLMediaTypes[mediaType]
	if !ok {
		return "", fmt.Errorf("media type %q is not allowed", mediaType)
	}
	if !strings.Contains(meta, "base64") {
		return "", fmt.Errorf("data URL must be base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode data URL: %w", err)
	}
	if s.maxSize > 0 && int64(len(raw)) > s.maxSize {
		return "", fmt.Errorf("file exceeds the %d byte limit", s.maxSize)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes a stored file given its public path or bare name. Anything
// that resolves outside the store directory is refused.
func (s *Store) Remove(path string) error {
	name := strings.TrimPrefix(path, PublicPrefix)
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
