package pagination

import "testing"

func TestResolveDefaults(t *testing.T) {
	cases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{name: "missing", wantPage: 1, wantLimit: 12},
		{name: "numeric", page: "3", limit: "5", wantPage: 3, wantLimit: 5},
		{name: "non numeric", page: "abc", limit: "x", wantPage: 1, wantLimit: 12},
		{name: "zero", page: "0", limit: "0", wantPage: 1, wantLimit: 12},
		{name: "negative", page: "-2", limit: "-10", wantPage: 1, wantLimit: 12},
		{name: "whitespace", page: " 2 ", limit: " 7 ", wantPage: 2, wantLimit: 7},
		{name: "over max", page: "1", limit: "1000", wantPage: 1, wantLimit: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.page, tc.limit, 12, 100)
			if got.Number != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("Resolve(%q,%q) = %+v, want page=%d limit=%d", tc.page, tc.limit, got, tc.wantPage, tc.wantLimit)
			}
			if got.Offset() < 0 {
				t.Fatalf("negative offset %d", got.Offset())
			}
		})
	}
}

func TestOffsetMath(t *testing.T) {
	if off := (Page{Number: 1, Limit: 12}).Offset(); off != 0 {
		t.Fatalf("page 1 offset should be 0, got %d", off)
	}
	if off := (Page{Number: 4, Limit: 20}).Offset(); off != 60 {
		t.Fatalf("page 4 offset should be 60, got %d", off)
	}
}

func TestIsLast(t *testing.T) {
	p := Page{Number: 1, Limit: 12}
	if !p.IsLast(0) || !p.IsLast(11) {
		t.Fatal("short pages must be last")
	}
	if p.IsLast(12) {
		t.Fatal("a full page is never last")
	}
}

func TestResolveGuardsBadDefaults(t *testing.T) {
	got := Resolve("", "", 500, 50)
	if got.Limit != 50 {
		t.Fatalf("default above max should be capped, got %d", got.Limit)
	}
	got = Resolve("", "", 0, 0)
	if got.Limit != 1 {
		t.Fatalf("unusable default should become 1, got %d", got.Limit)
	}
}
