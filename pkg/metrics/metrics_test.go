package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/catalog", 200, 120*time.Millisecond)
	m.Observe("GET", "/api/catalog", 200, 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/catalog"); err != nil || got != 2 {
		t.Fatalf("expected 2 requests, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/catalog"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f err=%v", got, err)
	}
}

func TestStorefrontMetricsShortPages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)
	m.ObservePage("public", 12, 12)
	m.ObservePage("public", 3, 12)
	m.IncCartSave("ok")
	m.AddImportRows("inserted", 4)
	m.AddImportRows("failed", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "catalog_pages_served_total", "audience", "public"); got != 2 {
		t.Fatalf("expected 2 pages, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "catalog_short_pages_total", "audience", "public"); got != 1 {
		t.Fatalf("expected 1 short page, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "catalog_import_rows_total", "outcome", "inserted"); got != 4 {
		t.Fatalf("expected 4 inserted rows, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "catalog_import_rows_total", "outcome", "failed"); err == nil {
		t.Fatal("zero adds should not create a series")
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	NewStorefrontMetrics(nil).ObservePage("admin", 0, 20)
	var m *StorefrontMetrics
	m.IncCartSave("error")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
