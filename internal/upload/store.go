package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload describes one client-submitted file.
type Upload struct {
	OriginalName  string
	SanitizedName string
	Extension     string
	Size          int64
}

// NewUpload validates filename against allowed and returns its description.
func NewUpload(filename string, size int64, allowed AllowSet) (*Upload, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if !allowed.Allowed(filename) {
		return nil, ErrUnsupportedType
	}
	return &Upload{
		OriginalName:  filename,
		SanitizedName: SanitizeFilename(filename),
		Extension:     Extension(filename),
		Size:          size,
	}, nil
}

// Store writes uploads into a single transient directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it when absent.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload folder: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save copies r into a uniquely named file. The name never derives from client input.
func (s *Store) Save(r io.Reader, ext string) (*TempFile, error) {
	name := uuid.NewString()
	if ext = SanitizeFilename(ext); ext != "" {
		name += "." + ext
	}

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	tmp := &TempFile{Path: path}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = tmp.Remove()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Size = n

	return tmp, nil
}

func (s *Store) resolve(name string) (string, error) {
	path := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return path, nil
}

// TempFile is a stored upload that lives for one request.
type TempFile struct {
	Path string
	Size int64
}

// Remove deletes the file. Removing an already deleted file is not an error.
func (t *TempFile) Remove() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}
