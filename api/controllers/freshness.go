package controllers

import (
	"context"
	"net/http"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/internal/freshness"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

// FreshnessReader reports the catalog freshness marker.
type FreshnessReader interface {
	Current(ctx context.Context) (freshness.Response, error)
}

// Freshness reports the catalog's last modification time, or null for an empty catalog.
func Freshness(tracker FreshnessReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "freshness tracker unavailable"))
			return
		}

		body, err := tracker.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		responses.WriteJSON(w, http.StatusOK, body)
	}
}
