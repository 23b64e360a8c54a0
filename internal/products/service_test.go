package products

import (
	"testing"

	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

func TestValidateProductInput(t *testing.T) {
	t.Parallel()

	discount := 40000
	tooHigh := 50000

	cases := []struct {
		name     string
		itemName string
		list     int
		discount *int
		stock    int
		axes     types.VariantAxes
		wantErr  bool
	}{
		{name: "valid", itemName: "Kopi Gayo", list: 50000, stock: 10},
		{name: "validDiscount", itemName: "Kopi Gayo", list: 50000, discount: &discount, stock: 10},
		{name: "blankName", itemName: "   ", list: 50000, stock: 10, wantErr: true},
		{name: "zeroPrice", itemName: "Kopi Gayo", list: 0, stock: 10, wantErr: true},
		{name: "negativeStock", itemName: "Kopi Gayo", list: 50000, stock: -1, wantErr: true},
		{name: "discountNotBelowList", itemName: "Kopi Gayo", list: 50000, discount: &tooHigh, stock: 10, wantErr: true},
		{
			name:     "validAxes",
			itemName: "Kaos Polos",
			list:     75000,
			stock:    10,
			axes: types.VariantAxes{
				{Name: "Ukuran", Options: []string{"M", "L"}},
				{Name: "Warna", Options: []string{"Hitam"}},
			},
		},
		{
			name:     "axisWithoutOptions",
			itemName: "Kaos Polos",
			list:     75000,
			stock:    10,
			axes:     types.VariantAxes{{Name: "Ukuran"}},
			wantErr:  true,
		},
		{
			name:     "duplicateAxis",
			itemName: "Kaos Polos",
			list:     75000,
			stock:    10,
			axes: types.VariantAxes{
				{Name: "Ukuran", Options: []string{"M"}},
				{Name: "Ukuran", Options: []string{"L"}},
			},
			wantErr: true,
		},
		{
			name:     "blankAxisName",
			itemName: "Kaos Polos",
			list:     75000,
			stock:    10,
			axes:     types.VariantAxes{{Name: " ", Options: []string{"M"}}},
			wantErr:  true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateProductInput(tc.itemName, tc.list, tc.discount, tc.stock, tc.axes)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeValidation {
					t.Fatalf("expected validation code, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Kopi Gayo 250g":       "kopi-gayo-250g",
		"  Batik Tulis  Solo ": "batik-tulis-solo",
		"Teh & Madu!":          "teh-madu",
	}
	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}
