package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/api/validators"
	"github.com/electrosoundpack/storefront-backend/internal/media"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const uploadField = "images"

// MediaService is the product media surface the handlers need.
type MediaService interface {
	List(ctx context.Context, productID int64) ([]media.File, error)
	Upload(ctx context.Context, productID int64, uploads []media.Upload) (*media.UploadResult, error)
	Open(ctx context.Context, productID int64, name string) (*os.File, error)
	Delete(ctx context.Context, productID int64, name string) error
}

func MediaList(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		files, err := svc.List(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, files)
	}
}

// MediaUpload accepts a multipart form with one or more "images" parts.
func MediaUpload(svc MediaService, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := readMultipart(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.RemoveAll()

		headers := form.File[uploadField]
		uploads := make([]media.Upload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload"))
				return
			}
			defer f.Close()
			uploads = append(uploads, media.Upload{Filename: fh.Filename, Content: f})
		}

		result, err := svc.Upload(r.Context(), id, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func MediaDelete(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := chi.URLParam(r, "file")
		if err := svc.Delete(r.Context(), id, name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"file": name, "deleted": true})
	}
}

// MediaServe streams a stored product file. Range and conditional requests are honoured.
func MediaServe(svc MediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := chi.URLParam(r, "file")
		if !media.IsListable(name) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}

		f, err := svc.Open(r.Context(), id, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stat media"))
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

func readMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload too large").WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return r.MultipartForm, nil
}
