package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontMetrics tracks catalog paging, cart writes and CSV imports.
type StorefrontMetrics struct {
	pages      *prometheus.CounterVec
	lastPages  *prometheus.CounterVec
	cartSaves  *prometheus.CounterVec
	importRows *prometheus.CounterVec
}

// NewStorefrontMetrics registers the domain metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	pages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_pages_served_total",
		Help: "Catalog pages served, by audience.",
	}, []string{"audience"})
	lastPages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_short_pages_total",
		Help: "Catalog pages shorter than the requested limit, by audience.",
	}, []string{"audience"})
	cartSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_saves_total",
		Help: "Cart save attempts by outcome.",
	}, []string{"outcome"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_rows_total",
		Help: "CSV import rows by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(pages, lastPages, cartSaves, importRows)
	return &StorefrontMetrics{
		pages:      pages,
		lastPages:  lastPages,
		cartSaves:  cartSaves,
		importRows: importRows,
	}
}

// ObservePage counts a served page and whether it was short.
func (m *StorefrontMetrics) ObservePage(audience string, rows, limit int) {
	if m == nil || m.pages == nil {
		return
	}
	audience = normalizeLabel(audience)
	m.pages.WithLabelValues(audience).Inc()
	if rows < limit {
		m.lastPages.WithLabelValues(audience).Inc()
	}
}

// IncCartSave counts a cart save with outcome "ok" or "error".
func (m *StorefrontMetrics) IncCartSave(outcome string) {
	if m == nil || m.cartSaves == nil {
		return
	}
	m.cartSaves.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddImportRows adds n rows under outcome (inserted, updated, failed).
func (m *StorefrontMetrics) AddImportRows(outcome string, n int) {
	if m == nil || m.importRows == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}
