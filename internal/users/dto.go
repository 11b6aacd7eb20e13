package users

import (
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	"github.com/electrosoundpack/storefront-backend/pkg/pagination"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID        int64      `json:"id"`
	Nombre    string     `json:"nombre"`
	Email     string     `json:"email"`
	Telefono  string     `json:"telefono"`
	IsAdmin   types.Flag `json:"is_admin"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Email:     u.Email,
		Telefono:  u.Telefono,
		IsAdmin:   types.NormalizeFlag(u.IsAdmin),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Nombre       string
	Email        string
	PasswordHash string
	Telefono     string
	IsAdmin      types.Flag
}

func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Nombre:       d.Nombre,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Telefono:     d.Telefono,
		IsAdmin:      types.NormalizeFlag(d.IsAdmin),
	}
}

// ListQuery selects one page of the admin user listing.
type ListQuery struct {
	Page   pagination.Page
	Search string
}

// Page is the admin user listing body.
type Page struct {
	Users []UserDTO `json:"users"`
	Total int64     `json:"total"`
}

// UpdateInput carries optional account changes. Password is stored hashed.
type UpdateInput struct {
	Nombre   *string
	Telefono *string
	Password *string
	IsAdmin  *types.Flag
}

func (in UpdateInput) isEmpty() bool {
	return in.Nombre == nil && in.Telefono == nil && in.Password == nil && in.IsAdmin == nil
}
