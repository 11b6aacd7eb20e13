package models

import "time"

// CartRecord holds the last saved cart for an account as serialized JSON.
// Each save overwrites the whole row.
type CartRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Items     string    `gorm:"column:items;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartRecord) TableName() string { return "carts" }

// All returns every model managed by the schema, in dependency order.
func All() []any {
	return []any{&Product{}, &User{}, &CartRecord{}}
}
