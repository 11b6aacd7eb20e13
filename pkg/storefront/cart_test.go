package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

type fakeCartStore struct {
	mu      sync.Mutex
	saved   [][]CartItem
	stored  []CartItem
	saveErr error
	loadErr error
}

func (f *fakeCartStore) SaveCart(_ context.Context, items []CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, items)
	if f.saveErr == nil {
		f.stored = append([]CartItem(nil), items...)
	}
	return f.saveErr
}

func (f *fakeCartStore) LoadCart(context.Context) ([]CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]CartItem(nil), f.stored...), nil
}

func (f *fakeCartStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type lookupMap map[int64]Product

func (m lookupMap) Find(id int64) (Product, bool) {
	p, ok := m[id]
	return p, ok
}

func loggedInSession(view View) *Session {
	s := NewSession(view)
	s.Set("token", "ana@example.com")
	return s
}

func TestCartAddSameProductTwiceIncrementsQuantity(t *testing.T) {
	products := lookupMap{1: {ID: 1, Nombre: "Cable", Precio: 2.5, Disponible: types.FlagOn}}
	c := NewCart(&fakeCartStore{}, loggedInSession(nil), products, nil, CartOptions{})
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, 1))
	require.NoError(t, c.Add(ctx, 1))

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
	require.True(t, decimal.RequireFromString("5").Equal(c.Total()))

	require.ErrorIs(t, c.Add(ctx, 42), ErrUnknownProduct)
}

func TestCartDecrementAtOneRemovesLine(t *testing.T) {
	products := lookupMap{
		1: {ID: 1, Precio: 10, Disponible: types.FlagOn},
		2: {ID: 2, Precio: 3, Disponible: types.FlagOn},
	}
	view := &recordingView{}
	c := NewCart(&fakeCartStore{}, loggedInSession(nil), products, view, CartOptions{})
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, 1))
	require.NoError(t, c.Add(ctx, 2))
	require.True(t, decimal.NewFromInt(13).Equal(c.Total()))

	require.NoError(t, c.ChangeQuantity(ctx, 1, +1))
	require.Equal(t, 2, c.Items()[1].Quantity)

	require.NoError(t, c.ChangeQuantity(ctx, 0, -1))
	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].ID)
	require.True(t, decimal.NewFromInt(6).Equal(c.Total()))
	require.Len(t, view.carts[len(view.carts)-1], 1)

	require.ErrorIs(t, c.ChangeQuantity(ctx, 5, 1), ErrCartIndex)
	require.NoError(t, c.Remove(ctx, 0))
	require.Empty(t, c.Items())
}

func TestCartUnavailableItemsOnlyStrikeThrough(t *testing.T) {
	products := lookupMap{
		1: {ID: 1, Precio: 10, Disponible: types.FlagOn},
		2: {ID: 2, Precio: 4, Disponible: types.FlagOff},
	}
	c := NewCart(&fakeCartStore{}, loggedInSession(nil), products, nil, CartOptions{})
	ctx := context.Background()
	require.NoError(t, c.Add(ctx, 1))
	require.NoError(t, c.Add(ctx, 2))

	require.True(t, decimal.NewFromInt(10).Equal(c.Total()))
	require.True(t, decimal.NewFromInt(4).Equal(c.StrikeTotal()))
	require.Equal(t, 2, c.Count())
}

func TestCartUnavailableLineCannotGrow(t *testing.T) {
	products := lookupMap{9: {ID: 9, Precio: 7, Disponible: types.FlagOff}}
	store := &fakeCartStore{}
	c := NewCart(store, loggedInSession(nil), products, nil, CartOptions{})
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, 9))
	require.ErrorIs(t, c.ChangeQuantity(ctx, 0, +1), ErrUnavailable)
	require.ErrorIs(t, c.Add(ctx, 9), ErrUnavailable)

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
	require.True(t, decimal.NewFromInt(7).Equal(c.StrikeTotal()))
	require.True(t, decimal.Zero.Equal(c.Total()))

	require.NoError(t, c.ChangeQuantity(ctx, 0, -1))
	require.Empty(t, c.Items())
}

func TestCartUnavailableStoredLineCannotGrow(t *testing.T) {
	store := &fakeCartStore{stored: []CartItem{{ID: 3, Quantity: 2, Precio: 5, Imagen: "a.jpg", Disponible: types.FlagOff}}}
	c := NewCart(store, loggedInSession(nil), lookupMap{}, nil, CartOptions{})
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.ErrorIs(t, c.ChangeQuantity(ctx, 0, +1), ErrUnavailable)
	require.NoError(t, c.ChangeQuantity(ctx, 0, -1))
	require.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCartAddRequiresSession(t *testing.T) {
	products := lookupMap{1: {ID: 1, Precio: 1, Disponible: types.FlagOn}}
	store := &fakeCartStore{}
	c := NewCart(store, NewSession(nil), products, nil, CartOptions{})

	require.ErrorIs(t, c.Add(context.Background(), 1), ErrUnauthorized)
	require.Empty(t, c.Items())
	require.Zero(t, store.saveCount())
}

func TestCartRoundTripWithProductGoneFromBuffer(t *testing.T) {
	for _, tc := range []struct {
		name       string
		disponible types.Flag
		total      int64
	}{
		{name: "available", disponible: types.FlagOn, total: 300},
		{name: "unavailable", disponible: types.FlagOff, total: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeCartStore{}
			ctx := context.Background()
			session := loggedInSession(nil)

			writer := NewCart(store, session, lookupMap{}, nil, CartOptions{})
			writer.items = []CartItem{{ID: 5, Quantity: 3, Precio: 100, Disponible: tc.disponible}}
			require.NoError(t, writer.SaveNow(ctx))

			reader := NewCart(store, session, lookupMap{}, nil, CartOptions{})
			require.NoError(t, reader.Load(ctx))

			require.Equal(t, []CartItem{{
				ID:         5,
				Quantity:   3,
				Nombre:     UnknownProduct,
				Precio:     100,
				Imagen:     PlaceholderImage,
				Disponible: tc.disponible,
			}}, reader.Items())
			require.True(t, decimal.NewFromInt(tc.total).Equal(reader.Total()))
		})
	}
}

func TestCartLoadPrefersLiveProductFields(t *testing.T) {
	store := &fakeCartStore{stored: []CartItem{
		{ID: 1, Quantity: 4, Nombre: "viejo", Precio: 1, Imagen: "old.jpg", Disponible: types.FlagOn},
	}}
	products := lookupMap{1: {ID: 1, Nombre: "nuevo", Precio: 9, Imagen: "new.webp", Disponible: types.FlagOff}}
	c := NewCart(store, loggedInSession(nil), products, nil, CartOptions{})

	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, []CartItem{{ID: 1, Quantity: 4, Nombre: "nuevo", Precio: 9, Imagen: "new.webp", Disponible: types.FlagOff}}, c.Items())
}

func TestCartLoadFailurePurgesSession(t *testing.T) {
	view := &recordingView{}
	session := loggedInSession(view)
	c := NewCart(&fakeCartStore{loadErr: ErrNetwork}, session, lookupMap{}, view, CartOptions{})

	require.ErrorIs(t, c.Load(context.Background()), ErrNetwork)
	require.False(t, session.Active())
	require.Equal(t, []string{cartLoadErrorMessage}, view.notices)
	require.Equal(t, 1, view.loggedOut)
}

func TestCartSaveUnauthorizedPurgesAndReloads(t *testing.T) {
	view := &recordingView{}
	session := loggedInSession(view)
	store := &fakeCartStore{saveErr: ErrUnauthorized}
	c := NewCart(store, session, lookupMap{}, view, CartOptions{})

	err := c.SaveNow(context.Background())
	require.True(t, errors.Is(err, ErrUnauthorized))
	require.False(t, session.Active())
	require.Equal(t, 1, view.reloads)
}

func TestCartSaveFailureKeepsLocalState(t *testing.T) {
	view := &recordingView{}
	session := loggedInSession(view)
	store := &fakeCartStore{saveErr: ErrNetwork}
	c := NewCart(store, session, lookupMap{1: {ID: 1, Precio: 1, Disponible: types.FlagOn}}, view, CartOptions{})

	require.NoError(t, c.Add(context.Background(), 1))
	require.Eventually(t, func() bool { return store.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, session.Active())
	require.Len(t, c.Items(), 1)
	require.Zero(t, view.reloads)
}

func TestCartSaveIsDebouncedAndNeedsSession(t *testing.T) {
	store := &fakeCartStore{}
	products := lookupMap{1: {ID: 1, Precio: 1, Disponible: types.FlagOn}}
	ctx := context.Background()

	anonymous := NewCart(store, NewSession(nil), products, nil, CartOptions{SaveDelay: 10 * time.Millisecond})
	anonymous.items = []CartItem{{ID: 1, Quantity: 1, Precio: 1, Disponible: types.FlagOn}}
	anonymous.Save(ctx)
	require.NoError(t, anonymous.SaveNow(ctx))
	time.Sleep(40 * time.Millisecond)
	require.Zero(t, store.saveCount())

	c := NewCart(store, loggedInSession(nil), products, nil, CartOptions{SaveDelay: 30 * time.Millisecond})
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Add(ctx, 1))
	}
	require.Eventually(t, func() bool { return store.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 1, store.saveCount())

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, 5, store.saved[0][0].Quantity)
}
