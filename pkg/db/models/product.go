package models

import (
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// Product is a catalog row. Flags are stored as 0/1 integers.
type Product struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Nombre        string     `gorm:"column:nombre;not null"`
	Descripcion   string     `gorm:"column:descripcion;not null"`
	Categoria     string     `gorm:"column:categoria;not null"`
	Proveedor     string     `gorm:"column:proveedor;not null"`
	Precio        float64    `gorm:"column:precio;not null"`
	Stock         int        `gorm:"column:stock;not null"`
	Oferta        types.Flag `gorm:"column:oferta;not null"`
	Nuevo         types.Flag `gorm:"column:nuevo;not null"`
	Disponible    types.Flag `gorm:"column:disponible;not null"`
	Visible       types.Flag `gorm:"column:visible;not null"`
	Imagen        string     `gorm:"column:imagen;not null"`
	FechaCreacion time.Time  `gorm:"column:fecha_creacion;not null"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;index"`
}

func (Product) TableName() string { return "products" }
