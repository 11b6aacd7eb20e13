package controllers

import (
	"net/http"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/api/validators"
	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/pagination"
)

const maxSearchLen = 120

// CatalogList serves one page of visible products as a bare JSON array.
// An empty array, or one shorter than the limit, tells the client the catalog is exhausted.
func CatalogList(svc catalog.Service, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListPublic(r.Context(), parseListQuery(r, cfg.PublicPageSize, cfg.MaxPageSize))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, products)
	}
}

// CatalogGet returns a single visible product.
func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetPublic(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parseListQuery(r *http.Request, defaultLimit, maxLimit int) catalog.ListQuery {
	q := r.URL.Query()
	return catalog.ListQuery{
		Page:   pagination.Resolve(q.Get("page"), q.Get("limit"), defaultLimit, maxLimit),
		Filter: catalog.ParseFilter(q.Get("filter")),
		Search: searchText(r),
	}
}

// searchText reads q, accepting search as an alias.
func searchText(r *http.Request) string {
	if q := validators.QueryText(r, "q", maxSearchLen); q != "" {
		return q
	}
	return validators.QueryText(r, "search", maxSearchLen)
}
