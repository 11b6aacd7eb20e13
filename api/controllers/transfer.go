package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/internal/transfer"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const csvField = "csv"

type CSVImporter interface {
	Import(ctx context.Context, r io.Reader) (*transfer.ImportSummary, error)
}

type CSVExporter interface {
	Export(ctx context.Context, table string) (*transfer.Export, error)
}

// ImportCSV upserts products from the "csv" part of a multipart form and returns the row summary.
func ImportCSV(importer CSVImporter, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if importer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "importer unavailable"))
			return
		}

		form, err := readMultipart(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.RemoveAll()

		headers := form.File[csvField]
		if len(headers) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "csv file is required"))
			return
		}
		f, err := headers[0].Open()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv"))
			return
		}
		defer f.Close()

		summary, err := importer.Import(r.Context(), f)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ExportCSV streams a whole table as a CSV attachment.
func ExportCSV(exporter CSVExporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exporter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exporter unavailable"))
			return
		}

		export, err := exporter.Export(r.Context(), chi.URLParam(r, "table"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := export.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "export.write_failed", err)
		}
	}
}
