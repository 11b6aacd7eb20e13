package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/electrosoundpack/storefront-backend/api/middleware"
	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/api/validators"
	"github.com/electrosoundpack/storefront-backend/internal/users"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/pagination"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

func AdminUsersList(svc users.Service, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		q := r.URL.Query()
		page, err := svc.List(r.Context(), users.ListQuery{
			Page:   pagination.Resolve(q.Get("page"), q.Get("limit"), cfg.AdminPageSize, cfg.MaxPageSize),
			Search: searchText(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminUserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		email, err := emailParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func AdminUserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		email, err := emailParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), email, users.UpdateInput{
			Nombre:   payload.Nombre,
			Telefono: payload.Telefono,
			Password: payload.Password,
			IsAdmin:  payload.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminUserDelete removes an account. Admins cannot delete themselves.
func AdminUserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		email, err := emailParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if users.NormalizeEmail(email) == users.NormalizeEmail(middleware.EmailFromContext(r.Context())) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the signed-in account"))
			return
		}

		if err := svc.Delete(r.Context(), email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"email": users.NormalizeEmail(email), "deleted": true})
	}
}

type updateUserRequest struct {
	Nombre   *string     `json:"nombre"`
	Telefono *string     `json:"telefono"`
	Password *string     `json:"password"`
	IsAdmin  *types.Flag `json:"is_admin"`
}

func emailParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "email")
	decoded, err := url.PathUnescape(raw)
	if err != nil || !strings.Contains(decoded, "@") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email").WithDetails(map[string]any{"field": "email", "value": raw})
	}
	return strings.TrimSpace(decoded), nil
}
