// Package storefront is the browser-side half of the catalog and cart
// contracts: an HTTP client for the public endpoints plus the session-scoped
// pager, cart and freshness poller that drive a View.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/electrosoundpack/storefront-backend/internal/auth"
	"github.com/electrosoundpack/storefront-backend/internal/cart"
	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/internal/freshness"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("storefront: unauthorized")
	// ErrNetwork wraps transport failures and unexpected statuses.
	ErrNetwork = errors.New("storefront: network error")
)

type (
	Product      = catalog.PublicProduct
	CartItem     = cart.Item
	FreshnessDoc = freshness.Response
)

// CatalogQuery is one page request against the public catalog.
type CatalogQuery struct {
	Page   int
	Limit  int
	Filter catalog.Filter
	Query  string
}

// Client talks to the storefront API. The bearer token comes from the
// attached Session on every call.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *Session
}

func NewClient(baseURL string, httpClient *http.Client, session *Session) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if session == nil {
		session = NewSession(nil)
	}
	return &Client{base: u, http: httpClient, session: session}, nil
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) ListCatalog(ctx context.Context, q CatalogQuery) ([]Product, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Filter != "" && q.Filter != catalog.FilterAll {
		params.Set("filter", string(q.Filter))
	}
	if q.Query != "" {
		params.Set("q", q.Query)
	}

	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/catalog", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Freshness(ctx context.Context) (FreshnessDoc, error) {
	var out FreshnessDoc
	err := c.do(ctx, http.MethodGet, "/api/freshness", nil, nil, &out)
	return out, err
}

func (c *Client) SaveCart(ctx context.Context, items []CartItem) error {
	return c.do(ctx, http.MethodPost, "/api/cart/save", nil, cart.SaveRequest{Cart: items}, nil)
}

func (c *Client) LoadCart(ctx context.Context) ([]CartItem, error) {
	var out cart.LoadResponse
	if err := c.do(ctx, http.MethodGet, "/api/cart/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Carrito, nil
}

// Login authenticates and stores the token and email on the session.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	body := auth.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &envelope); err != nil {
		return nil, err
	}
	resp := envelope.Data
	c.session.Set(resp.Token, email)
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	target := *c.base
	target.Path = c.base.Path + path
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s: %s", ErrUnauthorized, method, path, errorMessage(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrNetwork, method, path, resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrNetwork, path, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
