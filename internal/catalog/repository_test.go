package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/electrosoundpack/storefront-backend/pkg/db/dbtest"
	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
	"github.com/electrosoundpack/storefront-backend/pkg/pagination"
	"github.com/electrosoundpack/storefront-backend/pkg/types"
)

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	if p.Categoria == "" {
		p.Categoria = defaultCategoria
	}
	if p.Proveedor == "" {
		p.Proveedor = defaultProveedor
	}
	if p.FechaCreacion.IsZero() {
		p.FechaCreacion = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.FechaCreacion
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestListVisiblePagesCoverVisibleSetInOrder(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	var want []int64
	for i := 1; i <= 25; i++ {
		visible := types.FlagOn
		if i%5 == 0 {
			visible = types.FlagOff
		}
		p := seedProduct(t, db, models.Product{Nombre: fmt.Sprintf("producto %02d", i), Visible: visible})
		if visible == types.FlagOn {
			want = append(want, p.ID)
		}
	}

	var got []int64
	for n := 1; ; n++ {
		page := pagination.Page{Number: n, Limit: 7}
		rows, err := repo.ListVisible(ctx, ListQuery{Page: page, Filter: FilterAll})
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		for _, row := range rows {
			got = append(got, row.ID)
		}
		if page.IsLast(len(rows)) {
			break
		}
		if n > 10 {
			t.Fatal("pagination never produced a short page")
		}
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, want[i], got[i])
		}
	}
}

func TestListVisibleExactMultipleEndsWithEmptyPage(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	for i := 0; i < 4; i++ {
		seedProduct(t, db, models.Product{Nombre: fmt.Sprintf("p%d", i), Visible: types.FlagOn})
	}

	rows, err := repo.ListVisible(context.Background(), ListQuery{Page: pagination.Page{Number: 3, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(rows))
	}
}

func TestListVisibleFilterAndSearch(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, models.Product{Nombre: "Guitarra Eléctrica", Descripcion: "seis cuerdas", Oferta: types.FlagOn, Visible: types.FlagOn})
	seedProduct(t, db, models.Product{Nombre: "Bajo", Descripcion: "GUITARRA baja", Visible: types.FlagOn})
	seedProduct(t, db, models.Product{Nombre: "Guitarra oculta", Oferta: types.FlagOn, Visible: types.FlagOff})
	seedProduct(t, db, models.Product{Nombre: "Pedal 100%", Nuevo: types.FlagOn, Visible: types.FlagOn})

	page := pagination.Page{Number: 1, Limit: 12}

	rows, err := repo.ListVisible(ctx, ListQuery{Page: page, Filter: FilterAll, Search: "guitarra"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 matches across nombre and descripcion, got %d", len(rows))
	}

	rows, err = repo.ListVisible(ctx, ListQuery{Page: page, Filter: FilterOferta, Search: "GUITARRA"})
	if err != nil {
		t.Fatalf("filtered search: %v", err)
	}
	if len(rows) != 1 || rows[0].Nombre != "Guitarra Eléctrica" {
		t.Fatalf("expected only the visible offer, got %+v", rows)
	}

	rows, err = repo.ListVisible(ctx, ListQuery{Page: page, Search: "0%"})
	if err != nil {
		t.Fatalf("wildcard search: %v", err)
	}
	if len(rows) != 1 || rows[0].Nombre != "Pedal 100%" {
		t.Fatalf("expected literal percent match, got %+v", rows)
	}

	rows, err = repo.ListVisible(ctx, ListQuery{Page: page, Filter: FilterNuevo})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 nuevo product, got %d", len(rows))
	}
}

func TestListVisibleSearchFoldsNonASCIICase(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, models.Product{Nombre: "Cable USB-C", Visible: types.FlagOn})
	seedProduct(t, db, models.Product{Nombre: "Mouse Óptico", Visible: types.FlagOn})

	page := pagination.Page{Number: 1, Limit: 12}
	for _, term := range []string{"usb", "USB", "Usb"} {
		rows, err := repo.ListVisible(ctx, ListQuery{Page: page, Search: term})
		if err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
		if len(rows) != 1 || rows[0].Nombre != "Cable USB-C" {
			t.Fatalf("search %q: expected only the cable, got %+v", term, rows)
		}
	}
	for _, term := range []string{"óptico", "ÓPTICO", "Óptico"} {
		rows, err := repo.ListVisible(ctx, ListQuery{Page: page, Search: term})
		if err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
		if len(rows) != 1 || rows[0].Nombre != "Mouse Óptico" {
			t.Fatalf("search %q: expected only the mouse, got %+v", term, rows)
		}
	}
}

func TestListAdminTotalIgnoresPagination(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)

	for i := 0; i < 5; i++ {
		seedProduct(t, db, models.Product{Nombre: fmt.Sprintf("cable %d", i), Proveedor: "Acme", Visible: types.FlagOff})
	}
	seedProduct(t, db, models.Product{Nombre: "Micrófono", Categoria: "Audio", Visible: types.FlagOn})

	rows, total, err := repo.ListAdmin(context.Background(), ListQuery{Page: pagination.Page{Number: 2, Limit: 2}, Search: "acme"})
	if err != nil {
		t.Fatalf("list admin: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(rows))
	}

	rows, total, err = repo.ListAdmin(context.Background(), ListQuery{Page: pagination.Page{Number: 1, Limit: 20}, Search: "audio"})
	if err != nil {
		t.Fatalf("list admin by categoria: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected one categoria match, got total=%d rows=%d", total, len(rows))
	}
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	if err := repo.Update(ctx, 999, map[string]any{"nombre": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := repo.Delete(ctx, 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestUpsertInsertsThenUpdates(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	product := &models.Product{
		ID: 42, Nombre: "Teclado", Categoria: "General", Proveedor: "Desconocido",
		Precio: 10, Visible: types.FlagOn, FechaCreacion: created, UpdatedAt: created,
	}
	inserted, err := repo.Upsert(ctx, product)
	if err != nil || !inserted {
		t.Fatalf("expected insert, got inserted=%v err=%v", inserted, err)
	}

	later := created.Add(time.Hour)
	update := &models.Product{
		ID: 42, Nombre: "Teclado 88", Categoria: "Teclados", Proveedor: "Desconocido",
		Precio: 20, FechaCreacion: later, UpdatedAt: later,
	}
	inserted, err = repo.Upsert(ctx, update)
	if err != nil || inserted {
		t.Fatalf("expected update, got inserted=%v err=%v", inserted, err)
	}

	stored, err := repo.FindByID(ctx, 42)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Nombre != "Teclado 88" || stored.Precio != 20 {
		t.Fatalf("expected updated row, got %+v", stored)
	}
	if !stored.FechaCreacion.Equal(created) {
		t.Fatalf("expected creation date preserved, got %v", stored.FechaCreacion)
	}
	if stored.Visible != types.FlagOff {
		t.Fatalf("expected import update to overwrite visibility")
	}
}

func TestLatestUpdate(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	if _, ok, err := repo.LatestUpdate(ctx); err != nil || ok {
		t.Fatalf("expected no marker on empty table, ok=%v err=%v", ok, err)
	}

	newest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, db, models.Product{Nombre: "a", UpdatedAt: newest.Add(-time.Hour)})
	seedProduct(t, db, models.Product{Nombre: "b", UpdatedAt: newest})

	got, ok, err := repo.LatestUpdate(ctx)
	if err != nil || !ok {
		t.Fatalf("latest update: ok=%v err=%v", ok, err)
	}
	if !got.Equal(newest) {
		t.Fatalf("expected %v, got %v", newest, got)
	}
}
