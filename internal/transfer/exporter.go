package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
)

// Exportable tables.
const (
	TableProductos = "productos"
	TableUsuarios  = "usuarios"
)

var (
	productHeader = []string{
		"id", "nombre", "precio", "descripcion", "categoria", "stock", "oferta",
		"nuevo", "disponible", "proveedor", "imagen", "visible", "fecha_creacion",
	}
	userHeader = []string{"email", "nombre", "telefono", "is_admin", "created_at"}
)

type productLister interface {
	ListAll(ctx context.Context) ([]models.Product, error)
}

type userLister interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

// Export is a rendered CSV file.
type Export struct {
	Filename string
	Rows     [][]string
}

// WriteTo writes the export as CSV.
func (e *Export) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	if err := writer.WriteAll(e.Rows); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Exporter renders whole tables as CSV. Password hashes are never exported.
type Exporter struct {
	products productLister
	users    userLister
	now      func() time.Time
}

func NewExporter(products productLister, users userLister) (*Exporter, error) {
	if products == nil || users == nil {
		return nil, fmt.Errorf("product and user repositories required")
	}
	return &Exporter{products: products, users: users, now: time.Now}, nil
}

// Export renders table, which must be TableProductos or TableUsuarios.
func (ex *Exporter) Export(ctx context.Context, table string) (*Export, error) {
	var rows [][]string
	switch table {
	case TableProductos:
		products, err := ex.products.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
		}
		rows = make([][]string, 0, len(products)+1)
		rows = append(rows, productHeader)
		for _, p := range products {
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10),
				p.Nombre,
				strconv.FormatFloat(p.Precio, 'f', -1, 64),
				p.Descripcion,
				p.Categoria,
				strconv.Itoa(p.Stock),
				p.Oferta.String(),
				p.Nuevo.String(),
				p.Disponible.String(),
				p.Proveedor,
				p.Imagen,
				p.Visible.String(),
				p.FechaCreacion.UTC().Format(time.RFC3339),
			})
		}
	case TableUsuarios:
		users, err := ex.users.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list users")
		}
		rows = make([][]string, 0, len(users)+1)
		rows = append(rows, userHeader)
		for _, u := range users {
			rows = append(rows, []string{
				u.Email,
				u.Nombre,
				u.Telefono,
				u.IsAdmin.String(),
				u.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown export table").
			WithDetails(map[string]any{"table": table, "allowed": []string{TableProductos, TableUsuarios}})
	}

	if len(rows) <= 1 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no data to export")
	}
	return &Export{
		Filename: fmt.Sprintf("storefront_%s_%s.csv", table, ex.now().UTC().Format("2006-01-02")),
		Rows:     rows,
	}, nil
}
