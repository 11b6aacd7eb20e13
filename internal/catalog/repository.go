package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	"github.com/electrosoundpack/storefront-backend/pkg/db/textfold"
)

var (
	publicColumns = []string{
		"id", "nombre", "categoria", "descripcion", "precio",
		"disponible", "oferta", "nuevo", "imagen",
	}
	publicSearchColumns = []string{"nombre", "descripcion"}
	adminSearchColumns  = []string{"nombre", "categoria", "proveedor"}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// Repository persists catalog products via GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListVisible returns one page of visible products in id order.
func (r *Repository) ListVisible(ctx context.Context, q ListQuery) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(publicColumns).
		Where("visible = ?", 1)
	qb = applyPredicates(qb, q, publicSearchColumns)

	var rows []models.Product
	err := qb.Order("id ASC").
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Find(&rows).Error
	return rows, err
}

// ListAdmin returns one page of all products plus the total matching count.
func (r *Repository) ListAdmin(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	base := func() *gorm.DB {
		return applyPredicates(r.db.WithContext(ctx).Model(&models.Product{}), q, adminSearchColumns)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base().
		Order("id ASC").
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyPredicates(qb *gorm.DB, q ListQuery, searchColumns []string) *gorm.DB {
	if col := q.Filter.Column(); col != "" {
		qb = qb.Where(col+" = ?", 1)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		fold := textfold.For(qb)
		pattern := "%" + likeEscaper.Replace(fold.Text(search)) + "%"
		clauses := make([]string, 0, len(searchColumns))
		args := make([]any, 0, len(searchColumns))
		for _, col := range searchColumns {
			clauses = append(clauses, fold.Column(col)+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		qb = qb.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return qb
}

// FindByID loads a product regardless of visibility.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVisibleByID loads a product only when it is visible.
func (r *Repository) FindVisibleByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select(publicColumns).
		Where("id = ? AND visible = ?", id, 1).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update applies column changes to one product. It returns gorm.ErrRecordNotFound
// when no row has the id.
func (r *Repository) Update(ctx context.Context, id int64, changes map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one product. It returns gorm.ErrRecordNotFound when no row has the id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Upsert writes product under its id, inserting when absent. inserted reports which.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) (inserted bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		findErr := tx.Select("id", "fecha_creacion").Where("id = ?", product.ID).First(&existing).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			inserted = true
			return tx.Create(product).Error
		case findErr != nil:
			return findErr
		}
		product.FechaCreacion = existing.FechaCreacion
		return tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
			"nombre":      product.Nombre,
			"descripcion": product.Descripcion,
			"precio":      product.Precio,
			"categoria":   product.Categoria,
			"stock":       product.Stock,
			"proveedor":   product.Proveedor,
			"imagen":      product.Imagen,
			"oferta":      product.Oferta,
			"nuevo":       product.Nuevo,
			"disponible":  product.Disponible,
			"visible":     product.Visible,
			"updated_at":  product.UpdatedAt,
		}).Error
	})
	return inserted, err
}

// ListAll returns every product in id order.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// LatestUpdate returns the newest updated_at across products. ok is false for an empty table.
func (r *Repository) LatestUpdate(ctx context.Context) (time.Time, bool, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "updated_at").
		Order("updated_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return time.Time{}, false, err
	}
	if len(rows) == 0 {
		return time.Time{}, false, nil
	}
	return rows[0].UpdatedAt, true, nil
}
