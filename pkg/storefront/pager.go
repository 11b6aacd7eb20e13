package storefront

import (
	"context"
	"strings"
	"sync"

	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const (
	DefaultPageSize = 12
	// ScrollThreshold is how close to the document end, in pixels, a scroll
	// must reach before the next page is requested.
	ScrollThreshold = 500

	loadErrorMessage = "Error al cargar productos. Intenta de nuevo."
)

type PagerState int

const (
	StateIdle PagerState = iota
	StateLoading
	StateExhausted
)

func (s PagerState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// CatalogSource fetches one page of the public catalog.
type CatalogSource interface {
	ListCatalog(ctx context.Context, q CatalogQuery) ([]Product, error)
}

// Pager is the infinite-scroll consumer of the public catalog. A page shorter
// than the limit exhausts the pager until the filter or query changes.
type Pager struct {
	source CatalogSource
	view   View
	logg   *logger.Logger
	limit  int

	mu         sync.Mutex
	state      PagerState
	page       int
	filter     catalog.Filter
	query      string
	generation uint64
	products   []Product
}

func NewPager(source CatalogSource, view View, limit int, logg *logger.Logger) *Pager {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if view == nil {
		view = NopView{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Pager{
		source: source,
		view:   view,
		logg:   logg,
		limit:  limit,
		page:   1,
		filter: catalog.FilterAll,
	}
}

func (p *Pager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Page is the number of the next page to request.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Products returns a copy of the buffer in server order.
func (p *Pager) Products() []Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Product, len(p.products))
	copy(out, p.products)
	return out
}

// Find looks a product up in the buffer.
func (p *Pager) Find(id int64) (Product, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, product := range p.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

// Reset sets filter and query, rewinds to page 1 and invalidates any request
// still in flight. The buffer is kept until the next clearing fetch lands.
func (p *Pager) Reset(filter catalog.Filter, query string) {
	p.mu.Lock()
	p.resetLocked(filter, query)
	p.mu.Unlock()
}

func (p *Pager) resetLocked(filter catalog.Filter, query string) {
	if filter == "" {
		filter = catalog.FilterAll
	}
	p.filter = filter
	p.query = strings.TrimSpace(query)
	p.page = 1
	p.state = StateIdle
	p.generation++
}

// FetchNext requests the current page. Without clearExisting it is a no-op
// unless the pager is idle. With clearExisting the result replaces the buffer
// and any older request is discarded when it lands.
func (p *Pager) FetchNext(ctx context.Context, clearExisting bool) ([]Product, error) {
	rows, _, err := p.fetch(ctx, clearExisting)
	return rows, err
}

// fetch reports applied=false when the call was skipped or its response was
// superseded by a later reset.
func (p *Pager) fetch(ctx context.Context, clearExisting bool) ([]Product, bool, error) {
	p.mu.Lock()
	if !clearExisting && p.state != StateIdle {
		p.mu.Unlock()
		return nil, false, nil
	}
	if clearExisting {
		p.generation++
		p.page = 1
	}
	p.state = StateLoading
	gen := p.generation
	q := CatalogQuery{Page: p.page, Limit: p.limit, Filter: p.filter, Query: p.query}
	p.mu.Unlock()

	rows, err := p.source.ListCatalog(ctx, q)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logg.Debug(ctx, "storefront.pager.stale_response")
		return nil, false, nil
	}
	if err != nil {
		p.state = StateExhausted
		p.mu.Unlock()
		p.logg.Error(ctx, "storefront.pager.fetch_failed", err)
		p.view.Notify(loadErrorMessage, true)
		return nil, false, err
	}

	if clearExisting {
		p.products = append([]Product(nil), rows...)
	} else {
		p.products = append(p.products, rows...)
	}
	exhausted := len(rows) < p.limit
	if exhausted {
		p.state = StateExhausted
	} else {
		p.state = StateIdle
		p.page++
	}
	showEnd := exhausted && len(p.products) > 0 && p.query == ""
	p.mu.Unlock()

	p.view.Render(rows, clearExisting)
	if showEnd {
		p.view.ShowEndOfResults()
	}
	return rows, true, nil
}

// OnScroll fetches the next page once the viewport is within ScrollThreshold
// of the document end.
func (p *Pager) OnScroll(ctx context.Context, scrollY, viewportHeight, documentHeight float64) ([]Product, error) {
	if scrollY < documentHeight-viewportHeight-ScrollThreshold {
		return nil, nil
	}
	return p.FetchNext(ctx, false)
}

// ApplySearchAndFilter empties the buffer and the view, loads page 1 of the
// new filter and query, then scrolls to the results.
func (p *Pager) ApplySearchAndFilter(ctx context.Context, filter catalog.Filter, query string) ([]Product, error) {
	p.mu.Lock()
	p.resetLocked(filter, query)
	p.products = nil
	searching := p.query != ""
	p.mu.Unlock()

	p.view.Clear()
	rows, applied, err := p.fetch(ctx, true)
	if !applied {
		return nil, err
	}
	p.view.ScrollToResults()
	if searching && len(rows) == 0 {
		p.view.ShowNoResults()
	}
	return rows, nil
}
