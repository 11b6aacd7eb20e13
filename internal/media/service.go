package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/storage/local"
)

const sniffLen = 3072

// DefaultMaxFiles bounds how many files a single upload may carry.
const DefaultMaxFiles = 30

type blobStore interface {
	EnsureDir(ctx context.Context, prefix string) (bool, error)
	RemoveDir(ctx context.Context, prefix string) error
	List(ctx context.Context, prefix string) ([]local.Object, error)
	Put(ctx context.Context, prefix, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, prefix, name string) (*os.File, error)
	Delete(ctx context.Context, prefix, name string) error
}

// File is one entry of a product gallery.
type File struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Upload is one incoming file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UploadResult lists the stored names in request order.
type UploadResult struct {
	Files []string `json:"files"`
}

// Service manages the per-product media directories.
type Service struct {
	store    blobStore
	maxFiles int
	logg     *logger.Logger
}

func NewService(store blobStore, maxFiles int, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Service{store: store, maxFiles: maxFiles, logg: logg}, nil
}

// EnsureDir creates the product directory. created is false when it already existed.
func (s *Service) EnsureDir(ctx context.Context, productID int64) (bool, error) {
	return s.store.EnsureDir(ctx, dirKey(productID))
}

// RemoveDir deletes the product directory and its files.
func (s *Service) RemoveDir(ctx context.Context, productID int64) error {
	return s.store.RemoveDir(ctx, dirKey(productID))
}

// List returns the gallery files of a product.
func (s *Service) List(ctx context.Context, productID int64) ([]File, error) {
	objects, err := s.store.List(ctx, dirKey(productID))
	if errors.Is(err, local.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product media directory not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list media")
	}

	files := make([]File, 0, len(objects))
	for _, obj := range objects {
		if !IsListable(obj.Name) {
			continue
		}
		files = append(files, File{
			Name:      obj.Name,
			URL:       PublicURL(productID, obj.Name),
			SizeBytes: obj.Size,
			UpdatedAt: obj.ModTime,
		})
	}
	return files, nil
}

// Upload stores image files for a product. Every file is sniffed before anything is written.
func (s *Service) Upload(ctx context.Context, productID int64, uploads []Upload) (*UploadResult, error) {
	if len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files uploaded")
	}
	if len(uploads) > s.maxFiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d files per upload", s.maxFiles))
	}

	type pending struct {
		name string
		body io.Reader
	}
	ready := make([]pending, 0, len(uploads))
	for _, up := range uploads {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(up.Content, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
		}
		head = head[:n]

		detected := mimetype.Detect(head)
		if !isAllowedUpload(detected) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only image uploads are allowed").
				WithDetails(map[string]any{"file": up.Filename, "mime_type": detected.String()})
		}

		name := SafeName(up.Filename)
		if !strings.Contains(name, ".") {
			name += detected.Extension()
		}
		ready = append(ready, pending{name: name, body: io.MultiReader(bytes.NewReader(head), up.Content)})
	}

	dir := dirKey(productID)
	if _, err := s.store.EnsureDir(ctx, dir); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure media dir")
	}
	result := &UploadResult{Files: make([]string, 0, len(ready))}
	for _, p := range ready {
		if _, err := s.store.Put(ctx, dir, p.name, p.body); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
		}
		result.Files = append(result.Files, p.name)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id": productID,
		"files":      len(result.Files),
	}), "media.uploaded")
	return result, nil
}

// Open returns a stored file for serving.
func (s *Service) Open(ctx context.Context, productID int64, name string) (*os.File, error) {
	f, err := s.store.Open(ctx, dirKey(productID), name)
	if errors.Is(err, local.ErrNotFound) || errors.Is(err, local.ErrInvalidName) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open media")
	}
	return f, nil
}

// Delete removes one file from a product directory.
func (s *Service) Delete(ctx context.Context, productID int64, name string) error {
	err := s.store.Delete(ctx, dirKey(productID), name)
	if errors.Is(err, local.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	if errors.Is(err, local.ErrInvalidName) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid file name")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete media")
	}
	return nil
}

// PublicURL is the path a stored file is served from.
func PublicURL(productID int64, name string) string {
	return "/media/" + dirKey(productID) + "/" + name
}

func dirKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func isAllowedUpload(m *mimetype.MIME) bool {
	for _, allowed := range uploadMimeTypes {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}
