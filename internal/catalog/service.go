package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

const (
	defaultCategoria = "General"
	defaultProveedor = "Desconocido"

	audiencePublic = "public"
	audienceAdmin  = "admin"
)

// Service exposes catalog reads for the storefront and product management for admins.
type Service interface {
	ListPublic(ctx context.Context, q ListQuery) ([]PublicProduct, error)
	GetPublic(ctx context.Context, id int64) (*PublicProduct, error)
	ListAdmin(ctx context.Context, q ListQuery) (*AdminPage, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*AdminProduct, error)
	UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*AdminProduct, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ChangeRecorder stores the catalog freshness marker.
type ChangeRecorder interface {
	MarkChanged(ctx context.Context, at time.Time) error
}

// DirManager owns the per-product media directory.
type DirManager interface {
	EnsureDir(ctx context.Context, productID int64) (bool, error)
	RemoveDir(ctx context.Context, productID int64) error
}

type pageObserver interface {
	ObservePage(audience string, rows, limit int)
}

type service struct {
	repo    *Repository
	changes ChangeRecorder
	dirs    DirManager
	pages   pageObserver
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs a catalog service. pages may be nil.
func NewService(repo *Repository, changes ChangeRecorder, dirs DirManager, pages pageObserver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change recorder required")
	}
	if dirs == nil {
		return nil, fmt.Errorf("media directory manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		changes: changes,
		dirs:    dirs,
		pages:   pages,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) ListPublic(ctx context.Context, q ListQuery) ([]PublicProduct, error) {
	rows, err := s.repo.ListVisible(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list visible products")
	}
	s.observe(audiencePublic, len(rows), q.Page.Limit)

	out := make([]PublicProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPublic(row))
	}
	return out, nil
}

func (s *service) GetPublic(ctx context.Context, id int64) (*PublicProduct, error) {
	row, err := s.repo.FindVisibleByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "db: find visible product")
	}
	dto := toPublic(*row)
	return &dto, nil
}

func (s *service) ListAdmin(ctx context.Context, q ListQuery) (*AdminPage, error) {
	rows, total, err := s.repo.ListAdmin(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
	}
	s.observe(audienceAdmin, len(rows), q.Page.Limit)

	page := &AdminPage{Products: make([]AdminProduct, 0, len(rows)), Total: total}
	for _, row := range rows {
		page.Products = append(page.Products, ToAdmin(row))
	}
	return page, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*AdminProduct, error) {
	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre is required")
	}
	if input.Precio < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "precio must be >= 0")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be >= 0")
	}

	now := s.now().UTC()
	product := &models.Product{
		Nombre:        nombre,
		Descripcion:   strings.TrimSpace(input.Descripcion),
		Categoria:     orDefault(input.Categoria, defaultCategoria),
		Proveedor:     orDefault(input.Proveedor, defaultProveedor),
		Precio:        input.Precio,
		Stock:         input.Stock,
		Oferta:        types.NormalizeFlag(input.Oferta),
		Nuevo:         types.NormalizeFlag(input.Nuevo),
		Disponible:    types.NormalizeFlag(input.Disponible),
		Visible:       types.NormalizeFlag(input.Visible),
		Imagen:        strings.TrimSpace(input.Imagen),
		FechaCreacion: now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	if _, err := s.dirs.EnsureDir(ctx, product.ID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", product.ID), "catalog.media_dir_create_failed", err)
	}
	s.markChanged(ctx, now)

	dto := ToAdmin(*product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*AdminProduct, error) {
	if input.isEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	changes, err := buildChanges(input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	changes["updated_at"] = now
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, mapLookupError(err, "db: update product")
	}
	s.markChanged(ctx, now)

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "db: reload product")
	}
	dto := ToAdmin(*row)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err, "db: delete product")
	}
	if err := s.dirs.RemoveDir(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", id), "catalog.media_dir_remove_failed", err)
	}
	s.markChanged(ctx, s.now().UTC())
	return nil
}

func (s *service) observe(audience string, rows, limit int) {
	if s.pages != nil {
		s.pages.ObservePage(audience, rows, limit)
	}
}

// markChanged bumps the freshness marker. A failure only costs clients a refresh cycle.
func (s *service) markChanged(ctx context.Context, at time.Time) {
	if err := s.changes.MarkChanged(ctx, at); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.freshness_mark_failed")
	}
}

func buildChanges(input UpdateProductInput) (map[string]any, error) {
	changes := map[string]any{}
	if input.Nombre != nil {
		nombre := strings.TrimSpace(*input.Nombre)
		if nombre == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre cannot be empty")
		}
		changes["nombre"] = nombre
	}
	if input.Descripcion != nil {
		changes["descripcion"] = strings.TrimSpace(*input.Descripcion)
	}
	if input.Categoria != nil {
		changes["categoria"] = orDefault(*input.Categoria, defaultCategoria)
	}
	if input.Proveedor != nil {
		changes["proveedor"] = orDefault(*input.Proveedor, defaultProveedor)
	}
	if input.Precio != nil {
		if *input.Precio < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "precio must be >= 0")
		}
		changes["precio"] = *input.Precio
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be >= 0")
		}
		changes["stock"] = *input.Stock
	}
	if input.Imagen != nil {
		changes["imagen"] = strings.TrimSpace(*input.Imagen)
	}
	flags := map[string]*types.Flag{
		"oferta":     input.Oferta,
		"nuevo":      input.Nuevo,
		"disponible": input.Disponible,
		"visible":    input.Visible,
	}
	for col, flag := range flags {
		if flag != nil {
			changes[col] = types.NormalizeFlag(*flag)
		}
	}
	return changes, nil
}

func mapLookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
