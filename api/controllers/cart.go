package controllers

import (
	"net/http"

	"github.com/electrosoundpack/storefront-backend/api/middleware"
	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/api/validators"
	"github.com/electrosoundpack/storefront-backend/internal/cart"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const cartSavedMessage = "Carrito guardado."

// CartSave overwrites the caller's stored cart with the submitted snapshot.
func CartSave(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload cart.SaveRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Save(r.Context(), email, payload.Cart); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, cartSavedMessage)
	}
}

// CartLoad returns {carrito: [...]}; a user without a stored cart gets an empty list.
func CartLoad(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		items, err := svc.Load(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, cart.LoadResponse{Carrito: items})
	}
}

func CartSummary(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		items, err := svc.Load(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.Summarize(items))
	}
}
