package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

func TestClientListCatalogQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/catalog", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "12", q.Get("limit"))
		require.Equal(t, "oferta", q.Get("filter"))
		require.Equal(t, "cable usb", q.Get("q"))
		_, _ = w.Write([]byte(`[{"id":3,"nombre":"Cable USB-C","precio":4.5,"disponible":"si","oferta":1}]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client(), nil)
	require.NoError(t, err)

	rows, err := client.ListCatalog(context.Background(), CatalogQuery{Page: 2, Limit: 12, Filter: catalog.FilterOferta, Query: "cable usb"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, types.FlagOn, rows[0].Disponible)
}

func TestClientOmitsFilterAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("filter"))
		require.False(t, r.URL.Query().Has("q"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	rows, err := client.ListCatalog(context.Background(), CatalogQuery{Page: 1, Limit: 12, Filter: catalog.FilterAll})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestClientMapsStatuses(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":"X","message":"nope"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.LoadCart(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Contains(t, err.Error(), "nope")

	status = http.StatusForbidden
	require.ErrorIs(t, client.SaveCart(ctx, nil), ErrUnauthorized)

	status = http.StatusInternalServerError
	_, err = client.Freshness(ctx)
	require.ErrorIs(t, err, ErrNetwork)
	require.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClientTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, nil, nil)
	require.NoError(t, err)
	_, err = client.Freshness(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
}

func TestClientLoginThenCartUsesBearer(t *testing.T) {
	var saved struct {
		Cart []CartItem `json:"cart"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"data":{"token":"tok-1","expires_in":7200,"user":{"email":"ana@example.com"}}}`))
		case "/api/cart/save":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			_, _ = w.Write([]byte(`{"message":"Carrito guardado."}`))
		case "/api/cart/":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"carrito":[{"id":5,"quantity":3,"precio":100,"disponible":1}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	session := NewSession(nil)
	client, err := NewClient(srv.URL+"/", srv.Client(), session)
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := client.Login(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "tok-1", resp.Token)
	require.True(t, session.Active())
	require.Equal(t, "ana@example.com", session.Email())

	require.NoError(t, client.SaveCart(ctx, []CartItem{{ID: 5, Quantity: 3, Precio: 100, Disponible: types.FlagOn}}))
	require.Len(t, saved.Cart, 1)

	items, err := client.LoadCart(ctx)
	require.NoError(t, err)
	require.Equal(t, []CartItem{{ID: 5, Quantity: 3, Precio: 100, Disponible: types.FlagOn}}, items)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("/api", nil, nil)
	require.Error(t, err)
}
