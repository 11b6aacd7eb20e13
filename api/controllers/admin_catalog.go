package controllers

import (
	"net/http"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	"github.com/electrosoundpack/storefront-backend/api/validators"
	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// AdminCatalogList serves {products, total} including hidden products.
func AdminCatalogList(svc catalog.Service, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := svc.ListAdmin(r.Context(), parseListQuery(r, cfg.AdminPageSize, cfg.MaxPageSize))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, page)
	}
}

func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		// Unknown keys such as id or fecha_creacion are ignored.
		var payload updateProductRequest
		if err := validators.DecodeJSONBodyAllowUnknown(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

type createProductRequest struct {
	Nombre      string      `json:"nombre" validate:"required"`
	Descripcion string      `json:"descripcion"`
	Categoria   string      `json:"categoria"`
	Proveedor   string      `json:"proveedor"`
	Precio      *float64    `json:"precio" validate:"required,gte=0"`
	Stock       int         `json:"stock" validate:"gte=0"`
	Oferta      types.Flag  `json:"oferta"`
	Nuevo       types.Flag  `json:"nuevo"`
	Disponible  types.Flag  `json:"disponible"`
	Visible     *types.Flag `json:"visible"`
	Imagen      string      `json:"imagen"`
}

func (p createProductRequest) toInput() catalog.CreateProductInput {
	visible := types.FlagOn
	if p.Visible != nil {
		visible = *p.Visible
	}
	var precio float64
	if p.Precio != nil {
		precio = *p.Precio
	}
	return catalog.CreateProductInput{
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Proveedor:   p.Proveedor,
		Precio:      precio,
		Stock:       p.Stock,
		Oferta:      p.Oferta,
		Nuevo:       p.Nuevo,
		Disponible:  p.Disponible,
		Visible:     visible,
		Imagen:      p.Imagen,
	}
}

type updateProductRequest struct {
	Nombre      *string     `json:"nombre"`
	Descripcion *string     `json:"descripcion"`
	Categoria   *string     `json:"categoria"`
	Proveedor   *string     `json:"proveedor"`
	Precio      *float64    `json:"precio"`
	Stock       *int        `json:"stock"`
	Oferta      *types.Flag `json:"oferta"`
	Nuevo       *types.Flag `json:"nuevo"`
	Disponible  *types.Flag `json:"disponible"`
	Visible     *types.Flag `json:"visible"`
	Imagen      *string     `json:"imagen"`
}

func (p updateProductRequest) toInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Proveedor:   p.Proveedor,
		Precio:      p.Precio,
		Stock:       p.Stock,
		Oferta:      p.Oferta,
		Nuevo:       p.Nuevo,
		Disponible:  p.Disponible,
		Visible:     p.Visible,
		Imagen:      p.Imagen,
	}
}
