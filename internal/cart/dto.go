package cart

import (
	"github.com/shopspring/decimal"

	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

// Item is a denormalized product snapshot held in a cart.
type Item struct {
	ID         int64      `json:"id"`
	Quantity   int        `json:"quantity"`
	Nombre     string     `json:"nombre"`
	Precio     float64    `json:"precio"`
	Imagen     string     `json:"imagen"`
	Disponible types.Flag `json:"disponible"`
}

// SaveRequest is the body accepted by the save endpoint.
type SaveRequest struct {
	Cart []Item `json:"cart" validate:"required"`
}

// LoadResponse is the body returned by the load endpoint.
type LoadResponse struct {
	Carrito []Item `json:"carrito"`
}

// Summary prices a cart. Unavailable items count only toward StrikeTotal.
type Summary struct {
	Items       int             `json:"items"`
	Units       int             `json:"units"`
	Total       decimal.Decimal `json:"total"`
	StrikeTotal decimal.Decimal `json:"strikeTotal"`
}

// Summarize totals available items and, separately, the struck-through unavailable ones.
func Summarize(items []Item) Summary {
	summary := Summary{Total: decimal.Zero, StrikeTotal: decimal.Zero}
	for _, item := range items {
		line := decimal.NewFromFloat(item.Precio).Mul(decimal.NewFromInt(int64(item.Quantity)))
		summary.Items++
		summary.Units += item.Quantity
		if types.NormalizeFlag(item.Disponible).Bool() {
			summary.Total = summary.Total.Add(line)
		} else {
			summary.StrikeTotal = summary.StrikeTotal.Add(line)
		}
	}
	return summary
}
