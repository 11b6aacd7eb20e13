// Package transfer moves catalog and account data in and out as CSV.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

const (
	defaultCategoria = "General"
	defaultProveedor = "Desconocido"
)

type productUpserter interface {
	Upsert(ctx context.Context, product *models.Product) (bool, error)
}

type dirEnsurer interface {
	EnsureDir(ctx context.Context, productID int64) (bool, error)
}

type changeRecorder interface {
	MarkChanged(ctx context.Context, at time.Time) error
}

type rowCounter interface {
	AddImportRows(outcome string, n int)
}

// RowFailure explains why one CSV row was not imported.
type RowFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Total           int          `json:"total"`
	Insertados      int          `json:"insertados"`
	Actualizados    int          `json:"actualizados"`
	Fallidos        int          `json:"fallidos"`
	CarpetasCreadas int          `json:"carpetasCreadas"`
	Fallos          []RowFailure `json:"fallos"`
}

type rowError struct {
	id  string
	err error
}

func (e *rowError) Error() string { return e.id + ": " + e.err.Error() }
func (e *rowError) Unwrap() error { return e.err }

// Importer upserts products from CSV rows keyed by id.
type Importer struct {
	products productUpserter
	dirs     dirEnsurer
	changes  changeRecorder
	counts   rowCounter
	logg     *logger.Logger
	now      func() time.Time
}

// NewImporter builds an importer. counts may be nil.
func NewImporter(products productUpserter, dirs dirEnsurer, changes changeRecorder, counts rowCounter, logg *logger.Logger) (*Importer, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dirs == nil {
		return nil, fmt.Errorf("media directory manager required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Importer{products: products, dirs: dirs, changes: changes, counts: counts, logg: logg, now: time.Now}, nil
}

// Import reads a header row followed by product rows. Headers are case-insensitive.
// A row failure never aborts the import; a malformed CSV does.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid csv header")
	}
	columns := indexHeader(header)

	summary := &ImportSummary{Fallos: []RowFailure{}}
	var failures error
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid csv row")
		}
		if isBlank(record) {
			continue
		}
		summary.Total++

		row := rowValues{columns: columns, record: record}
		inserted, created, err := im.importRow(ctx, row)
		if err != nil {
			failures = multierr.Append(failures, err)
			continue
		}
		if inserted {
			summary.Insertados++
		} else {
			summary.Actualizados++
		}
		if created {
			summary.CarpetasCreadas++
		}
	}

	for _, err := range multierr.Errors(failures) {
		failure := RowFailure{ID: "N/A", Error: err.Error()}
		var re *rowError
		if errors.As(err, &re) {
			failure = RowFailure{ID: re.id, Error: re.err.Error()}
		}
		summary.Fallos = append(summary.Fallos, failure)
	}
	summary.Fallidos = len(summary.Fallos)

	if im.counts != nil {
		im.counts.AddImportRows("inserted", summary.Insertados)
		im.counts.AddImportRows("updated", summary.Actualizados)
		im.counts.AddImportRows("failed", summary.Fallidos)
	}
	if summary.Insertados+summary.Actualizados > 0 {
		if err := im.changes.MarkChanged(ctx, im.now().UTC()); err != nil {
			im.logg.Warn(im.logg.WithField(ctx, "error", err.Error()), "import.freshness_mark_failed")
		}
	}
	if failures != nil {
		im.logg.Warn(im.logg.WithFields(ctx, map[string]any{
			"failed": summary.Fallidos,
			"total":  summary.Total,
		}), "import.rows_failed")
	}
	return summary, nil
}

func (im *Importer) importRow(ctx context.Context, row rowValues) (inserted, created bool, err error) {
	rawID := row.get("id")
	nombre := row.get("nombre")
	if rawID == "" || nombre == "" {
		return false, false, &rowError{id: "N/A", err: errors.New("row is missing id or nombre")}
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return false, false, &rowError{id: rawID, err: errors.New("id must be a positive integer")}
	}

	created, err = im.dirs.EnsureDir(ctx, id)
	if err != nil {
		return false, false, &rowError{id: rawID, err: fmt.Errorf("create media dir: %w", err)}
	}

	now := im.now().UTC()
	product := &models.Product{
		ID:            id,
		Nombre:        nombre,
		Descripcion:   row.get("descripcion"),
		Categoria:     orDefault(row.get("categoria"), defaultCategoria),
		Proveedor:     orDefault(row.get("proveedor"), defaultProveedor),
		Precio:        parsePrice(row.get("precio")),
		Stock:         parseStock(row.get("stock")),
		Oferta:        types.NormalizeFlag(row.get("oferta")),
		Nuevo:         types.NormalizeFlag(row.get("nuevo")),
		Disponible:    types.NormalizeFlag(row.get("disponible")),
		Visible:       parseVisible(row.get("visible")),
		Imagen:        row.get("imagen"),
		FechaCreacion: now,
		UpdatedAt:     now,
	}
	inserted, err = im.products.Upsert(ctx, product)
	if err != nil {
		return false, created, &rowError{id: rawID, err: err}
	}
	return inserted, created, nil
}

type rowValues struct {
	columns map[string]int
	record  []string
}

func (r rowValues) get(name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parsePrice(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseStock(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseVisible treats an empty cell as visible; anything else goes through the flag rules.
func parseVisible(raw string) types.Flag {
	if raw == "" {
		return types.FlagOn
	}
	return types.NormalizeFlag(raw)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
