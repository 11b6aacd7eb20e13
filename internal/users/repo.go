package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	"github.com/electrosoundpack/storefront-backend/pkg/db/textfold"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of users matching search on nombre or email, plus the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		qb := r.db.WithContext(ctx).Model(&models.User{})
		if search := strings.TrimSpace(q.Search); search != "" {
			fold := textfold.For(qb)
			pattern := "%" + likeEscaper.Replace(fold.Text(search)) + "%"
			qb = qb.Where("("+fold.Column("nombre")+` LIKE ? ESCAPE '\' OR `+fold.Column("email")+` LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return qb
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.User
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

// ListAll returns every user in id order.
func (r *Repository) ListAll(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// UpdateByEmail applies column changes. It returns gorm.ErrRecordNotFound for an unknown email.
func (r *Repository) UpdateByEmail(ctx context.Context, email string, changes map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByEmail removes a user. It returns gorm.ErrRecordNotFound for an unknown email.
func (r *Repository) DeleteByEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
