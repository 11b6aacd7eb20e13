package catalog

import (
	"strings"
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	"github.com/electrosoundpack/storefront-backend/pkg/pagination"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// Filter narrows a listing to products with one flag set.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterOferta     Filter = "oferta"
	FilterNuevo      Filter = "nuevo"
	FilterDisponible Filter = "disponible"
)

var filterColumns = map[Filter]string{
	FilterOferta:     "oferta",
	FilterNuevo:      "nuevo",
	FilterDisponible: "disponible",
}

// ParseFilter returns the known filter for raw. Unknown values mean no filter.
func ParseFilter(raw string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := filterColumns[f]; ok {
		return f
	}
	return FilterAll
}

// Column returns the flag column the filter constrains, or "" for FilterAll.
func (f Filter) Column() string {
	return filterColumns[f]
}

// ListQuery is a resolved catalog page request.
type ListQuery struct {
	Page   pagination.Page
	Filter Filter
	Search string
}

// PublicProduct is the storefront projection of a product.
type PublicProduct struct {
	ID          int64      `json:"id"`
	Nombre      string     `json:"nombre"`
	Categoria   string     `json:"categoria"`
	Descripcion string     `json:"descripcion"`
	Precio      float64    `json:"precio"`
	Disponible  types.Flag `json:"disponible"`
	Oferta      types.Flag `json:"oferta"`
	Nuevo       types.Flag `json:"nuevo"`
	Imagen      string     `json:"imagen"`
}

// AdminProduct carries every column including audit timestamps.
type AdminProduct struct {
	ID            int64      `json:"id"`
	Nombre        string     `json:"nombre"`
	Descripcion   string     `json:"descripcion"`
	Categoria     string     `json:"categoria"`
	Proveedor     string     `json:"proveedor"`
	Precio        float64    `json:"precio"`
	Stock         int        `json:"stock"`
	Oferta        types.Flag `json:"oferta"`
	Nuevo         types.Flag `json:"nuevo"`
	Disponible    types.Flag `json:"disponible"`
	Visible       types.Flag `json:"visible"`
	Imagen        string     `json:"imagen"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// AdminPage is the admin listing body.
type AdminPage struct {
	Products []AdminProduct `json:"products"`
	Total    int64          `json:"total"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Nombre      string
	Descripcion string
	Categoria   string
	Proveedor   string
	Precio      float64
	Stock       int
	Oferta      types.Flag
	Nuevo       types.Flag
	Disponible  types.Flag
	Visible     types.Flag
	Imagen      string
}

// UpdateProductInput holds optional mutation values. Nil fields are left untouched.
type UpdateProductInput struct {
	Nombre      *string
	Descripcion *string
	Categoria   *string
	Proveedor   *string
	Precio      *float64
	Stock       *int
	Oferta      *types.Flag
	Nuevo       *types.Flag
	Disponible  *types.Flag
	Visible     *types.Flag
	Imagen      *string
}

func (in UpdateProductInput) isEmpty() bool {
	return in.Nombre == nil && in.Descripcion == nil && in.Categoria == nil && in.Proveedor == nil &&
		in.Precio == nil && in.Stock == nil && in.Oferta == nil && in.Nuevo == nil &&
		in.Disponible == nil && in.Visible == nil && in.Imagen == nil
}

func toPublic(p models.Product) PublicProduct {
	return PublicProduct{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Categoria:   p.Categoria,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Disponible:  types.NormalizeFlag(p.Disponible),
		Oferta:      types.NormalizeFlag(p.Oferta),
		Nuevo:       types.NormalizeFlag(p.Nuevo),
		Imagen:      p.Imagen,
	}
}

// ToAdmin maps a stored product to its admin projection.
func ToAdmin(p models.Product) AdminProduct {
	return AdminProduct{
		ID:            p.ID,
		Nombre:        p.Nombre,
		Descripcion:   p.Descripcion,
		Categoria:     p.Categoria,
		Proveedor:     p.Proveedor,
		Precio:        p.Precio,
		Stock:         p.Stock,
		Oferta:        types.NormalizeFlag(p.Oferta),
		Nuevo:         types.NormalizeFlag(p.Nuevo),
		Disponible:    types.NormalizeFlag(p.Disponible),
		Visible:       types.NormalizeFlag(p.Visible),
		Imagen:        p.Imagen,
		FechaCreacion: p.FechaCreacion,
		UpdatedAt:     p.UpdatedAt,
	}
}
