// Package uploads manages binary artifacts attached to catalog entities:
// downloadable book files and images (covers, scholar portraits). Type and
// size validation happens before anything touches disk; deletion of
// replaced or orphaned artifacts is best-effort compensation handled by the
// Cleaner.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

// Kind identifies an artifact class with its own storage area, filename
// prefix, allowed extensions and size ceiling.
type Kind string

const (
	KindBook  Kind = "books"
	KindImage Kind = "images"
)

// URLPrefix is the public path under which artifacts are served.
const URLPrefix = "/uploads"

var allowedExtensions = map[Kind][]string{
	KindBook:  {".pdf", ".epub", ".doc", ".docx"},
	KindImage: {".jpg", ".jpeg", ".png", ".gif"},
}

var filePrefixes = map[Kind]string{
	KindBook:  "book-",
	KindImage: "image-",
}

// KindFromString maps a URL segment ("books"/"images") to a Kind.
func KindFromString(s string) (Kind, error) {
	switch Kind(s) {
	case KindBook, KindImage:
		return Kind(s), nil
	}
	return "", apperror.NewValidation([]string{"type"}, []string{"invalid file type"})
}

// AllowedExtensions returns the accepted extensions for a kind.
func AllowedExtensions(kind Kind) []string {
	return allowedExtensions[kind]
}

// Store persists artifacts under a root directory, one subdirectory per
// kind.
type Store struct {
	root     string
	maxSizes map[Kind]int64
}

// NewStore creates the artifact store, ensuring the area directories exist.
func NewStore(root string, maxBookSize, maxImageSize int64) (*Store, error) {
	for _, kind := range []Kind{KindBook, KindImage} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Store{
		root: root,
		maxSizes: map[Kind]int64{
			KindBook:  maxBookSize,
			KindImage: maxImageSize,
		},
	}, nil
}

// MaxSize returns the size ceiling in bytes for a kind.
func (s *Store) MaxSize(kind Kind) int64 {
	return s.maxSizes[kind]
}

// Validate checks an upload's extension and declared size without touching
// disk. UnsupportedType and TooLarge failures guarantee no partial write
// ever happened.
func (s *Store) Validate(kind Kind, filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	ok := false
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return apperror.New(apperror.KindUnsupportedType, fmt.Sprintf(
			"only %s files are allowed for %s",
			strings.Join(allowedExtensions[kind], ", "), kind))
	}
	if size > s.maxSizes[kind] {
		return apperror.New(apperror.KindTooLarge, "file too large")
	}
	return nil
}

// SaveMultipart validates and stores an uploaded file, returning the public
// path to persist on the entity (e.g. "/uploads/books/book-...pdf").
func (s *Store) SaveMultipart(kind Kind, header *multipart.FileHeader) (string, error) {
	if err := s.Validate(kind, header.Filename, header.Size); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to read upload", err)
	}
	defer src.Close()

	name := s.filename(kind, header.Filename)
	dst, err := os.Create(filepath.Join(s.root, string(kind), name))
	if err != nil {
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to store upload", err)
	}
	return path.Join(URLPrefix, string(kind), name), nil
}

// SaveStream validates and stores an artifact read from src, returning the
// public path. Used for artifacts fetched from remote sources rather than
// uploaded directly.
func (s *Store) SaveStream(kind Kind, originalName string, size int64, src io.Reader) (string, error) {
	if err := s.Validate(kind, originalName, size); err != nil {
		return "", err
	}

	name := s.filename(kind, originalName)
	dst, err := os.Create(filepath.Join(s.root, string(kind), name))
	if err != nil {
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to store file", err)
	}
	defer dst.Close()

	// The declared size is validated above; the copy is still capped so a
	// lying source cannot blow past the ceiling.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxSizes[kind]+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", apperror.Wrap(apperror.KindStorageIO, "failed to store file", err)
	}
	if written > s.maxSizes[kind] {
		os.Remove(dst.Name())
		return "", apperror.New(apperror.KindTooLarge, "file too large")
	}
	return path.Join(URLPrefix, string(kind), name), nil
}

// Delete removes a stored artifact by its public path.
func (s *Store) Delete(publicPath string) error {
	abs, err := s.Resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return apperror.NewNotFound("file")
		}
		return apperror.Wrap(apperror.KindStorageIO, "failed to delete file", err)
	}
	return nil
}

// Exists reports whether the artifact at the public path is on disk.
func (s *Store) Exists(publicPath string) bool {
	abs, err := s.Resolve(publicPath)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(abs)
	return statErr == nil
}

// Resolve maps a public path like "/uploads/books/x.pdf" to its location on
// disk. The filename is reduced to its base so traversal outside the upload
// areas is impossible.
func (s *Store) Resolve(publicPath string) (string, error) {
	trimmed := strings.TrimPrefix(publicPath, URLPrefix+"/")
	kindStr, file, found := strings.Cut(trimmed, "/")
	if !found {
		return "", apperror.NewValidation([]string{"path"}, []string{"invalid file path"})
	}
	kind, err := KindFromString(kindStr)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(kind), filepath.Base(file)), nil
}

// Root returns the storage root, for static file serving.
func (s *Store) Root() string {
	return s.root
}

// filename builds a collision-free stored name: kind prefix, millisecond
// timestamp and a random suffix, keeping the original extension.
func (s *Store) filename(kind Kind, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s%d-%s%s", filePrefixes[kind], time.Now().UnixMilli(), suffix, ext)
}
