package models

import (
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// User is a storefront account. Admins manage the catalog.
type User struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Nombre       string     `gorm:"column:nombre;not null"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Telefono     string     `gorm:"column:telefono;not null"`
	IsAdmin      types.Flag `gorm:"column:is_admin;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
