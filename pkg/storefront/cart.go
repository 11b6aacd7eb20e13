package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/electrosoundpack/storefront-backend/internal/cart"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

const (
	PlaceholderImage = "assets/placeholder.webp"
	UnknownProduct   = "Producto desconocido"

	cartLoadErrorMessage = "Error al cargar carrito"
)

var (
	ErrUnknownProduct = errors.New("storefront: product not loaded")
	ErrCartIndex      = errors.New("storefront: cart index out of range")
	// ErrUnavailable rejects raising the quantity of an unavailable line.
	ErrUnavailable = errors.New("storefront: product unavailable")
)

// CartStore persists the whole cart for the session identity.
type CartStore interface {
	SaveCart(ctx context.Context, items []CartItem) error
	LoadCart(ctx context.Context) ([]CartItem, error)
}

// ProductLookup resolves products already loaded by the pager.
type ProductLookup interface {
	Find(id int64) (Product, bool)
}

// Cart is the optimistic local cart. Every mutation schedules a full-state
// save; the server copy only wins on Load.
type Cart struct {
	store    CartStore
	session  *Session
	products ProductLookup
	view     View
	logg     *logger.Logger
	debounce *Debouncer

	mu    sync.Mutex
	items []CartItem
}

type CartOptions struct {
	SaveDelay time.Duration
	Logger    *logger.Logger
}

func NewCart(store CartStore, session *Session, products ProductLookup, view View, opts CartOptions) *Cart {
	if view == nil {
		view = NopView{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Cart{
		store:    store,
		session:  session,
		products: products,
		view:     view,
		logg:     opts.Logger,
		debounce: NewDebouncer(opts.SaveDelay),
	}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CartItem(nil), c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	return c.Summary().Units
}

func (c *Cart) Summary() cart.Summary {
	return cart.Summarize(c.Items())
}

// Total sums price times quantity over available items.
func (c *Cart) Total() decimal.Decimal {
	return c.Summary().Total
}

// StrikeTotal is what unavailable items would have cost.
func (c *Cart) StrikeTotal() decimal.Decimal {
	return c.Summary().StrikeTotal
}

// Add puts one unit of a loaded product in the cart. It needs an active
// session, and an unavailable line already in the cart is not incremented.
func (c *Cart) Add(ctx context.Context, productID int64) error {
	if !c.session.Active() {
		return fmt.Errorf("%w: login required to add to cart", ErrUnauthorized)
	}
	product, ok := c.products.Find(productID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}

	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID != productID {
			continue
		}
		if !types.NormalizeFlag(c.items[i].Disponible).Bool() {
			c.mu.Unlock()
			return fmt.Errorf("%w: %d", ErrUnavailable, productID)
		}
		c.items[i].Quantity++
		found = true
		break
	}
	if !found {
		c.items = append(c.items, snapshot(product, 1))
	}
	c.mu.Unlock()

	c.changed(ctx)
	return nil
}

// ChangeQuantity adjusts a line by delta. A line that would drop below one
// unit is removed. Unavailable lines can only shrink.
func (c *Cart) ChangeQuantity(ctx context.Context, index, delta int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrCartIndex, index)
	}
	if delta > 0 && !types.NormalizeFlag(c.items[index].Disponible).Bool() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnavailable, c.items[index].ID)
	}
	next := c.items[index].Quantity + delta
	if next < 1 {
		c.items = append(c.items[:index], c.items[index+1:]...)
	} else {
		c.items[index].Quantity = next
	}
	c.mu.Unlock()

	c.changed(ctx)
	return nil
}

func (c *Cart) Remove(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrCartIndex, index)
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	c.mu.Unlock()

	c.changed(ctx)
	return nil
}

// Clear empties the local cart without saving.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.view.RenderCart(nil)
}

func (c *Cart) changed(ctx context.Context) {
	c.view.RenderCart(c.Items())
	c.Save(ctx)
}

// Save schedules a fire-and-forget upload of the whole cart. Nothing is sent
// without an active session.
func (c *Cart) Save(ctx context.Context) {
	if !c.session.Active() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	c.debounce.Trigger(func() {
		_ = c.SaveNow(ctx)
	})
}

// SaveNow uploads the cart immediately. An unauthorized response purges the
// session and asks the view to reload.
func (c *Cart) SaveNow(ctx context.Context) error {
	if !c.session.Active() {
		return nil
	}
	items := c.Items()
	for i := range items {
		items[i].Disponible = types.NormalizeFlag(items[i].Disponible)
	}

	err := c.store.SaveCart(ctx, items)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized):
		c.logg.Warn(ctx, "storefront.cart.save_unauthorized")
		c.session.Purge()
		c.view.Reload()
	default:
		c.logg.Error(ctx, "storefront.cart.save_failed", err)
	}
	return err
}

// Load replaces the local cart with the stored one, refreshed against the
// products the pager has loaded. Any failure logs the shopper out.
func (c *Cart) Load(ctx context.Context) error {
	if !c.session.Active() {
		return nil
	}
	stored, err := c.store.LoadCart(ctx)
	if err != nil {
		c.logg.Error(ctx, "storefront.cart.load_failed", err)
		c.view.Notify(cartLoadErrorMessage, true)
		c.session.Purge()
		return err
	}

	merged := make([]CartItem, 0, len(stored))
	for _, item := range stored {
		merged = append(merged, c.reconcile(item))
	}

	c.mu.Lock()
	c.items = merged
	c.mu.Unlock()
	c.view.RenderCart(c.Items())
	return nil
}

func (c *Cart) reconcile(stored CartItem) CartItem {
	quantity := stored.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if product, ok := c.products.Find(stored.ID); ok {
		return snapshot(product, quantity)
	}

	item := stored
	item.Quantity = quantity
	item.Disponible = types.NormalizeFlag(stored.Disponible)
	if item.Nombre == "" {
		item.Nombre = UnknownProduct
	}
	if item.Imagen == "" {
		item.Imagen = PlaceholderImage
	}
	return item
}

func snapshot(p Product, quantity int) CartItem {
	return CartItem{
		ID:         p.ID,
		Quantity:   quantity,
		Nombre:     p.Nombre,
		Precio:     p.Precio,
		Imagen:     p.Imagen,
		Disponible: types.NormalizeFlag(p.Disponible),
	}
}
