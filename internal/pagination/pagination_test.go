package pagination

import (
	"testing"
	"yatube/internal/models"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		name       string
		requested  int
		total      int64
		number     int
		totalPages int
		offset     int
	}{
		{"first page", 1, 13, 1, 2, 0},
		{"second page", 2, 13, 2, 2, 10},
		{"zero falls back to first", 0, 13, 1, 2, 0},
		{"negative falls back to first", -3, 13, 1, 2, 0},
		{"past the end clamps to last", 99, 13, 2, 2, 10},
		{"exact multiple", 2, 20, 2, 2, 10},
		{"empty sequence still has one page", 1, 0, 1, 1, 0},
		{"empty sequence, huge request", 42, 0, 1, 1, 0},
		{"single item", 1, 1, 1, 1, 0},
	}

	for _, tc := range cases {
		number, totalPages, offset := Clamp(tc.requested, tc.total)
		if number != tc.number || totalPages != tc.totalPages || offset != tc.offset {
			t.Errorf("%s: Clamp(%d, %d) = (%d, %d, %d), want (%d, %d, %d)",
				tc.name, tc.requested, tc.total, number, totalPages, offset,
				tc.number, tc.totalPages, tc.offset)
		}
	}
}

func TestNewPageFlags(t *testing.T) {
	full := make([]models.Post, PerPage)
	first := NewPage(full, 1, 2)
	if first.HasPrev {
		t.Error("first page should not have a previous page")
	}
	if !first.HasNext {
		t.Error("first page of two should have a next page")
	}

	last := NewPage(make([]models.Post, 3), 2, 2)
	if !last.HasPrev {
		t.Error("second page should have a previous page")
	}
	if last.HasNext {
		t.Error("last page should not have a next page")
	}

	only := NewPage(nil, 1, 1)
	if only.HasPrev || only.HasNext {
		t.Error("a single page should have neither neighbor")
	}
}
