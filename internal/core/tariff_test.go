package core

import (
	"errors"
	"slices"
	"testing"
)

func TestTariffTablePrice(t *testing.T) {
	tt := DefaultTariffs()
	cases := []struct {
		class   string
		want    float64
		wantErr bool
	}{
		{"R-1", 1500, false},
		{"R-2", 2000, false},
		{"R-3", 2500, false},
		{"B-2", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := tt.Price(tc.class)
		if tc.wantErr {
			var lerr *LookupError
			if !errors.As(err, &lerr) || lerr.Class != tc.class {
				t.Fatalf("Price(%q): expected *LookupError, got %v", tc.class, err)
			}
			if !errors.Is(err, ErrUnknownTariffClass) {
				t.Fatalf("Price(%q): expected ErrUnknownTariffClass", tc.class)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("Price(%q) = %v, %v; want %v", tc.class, got, err, tc.want)
		}
	}
}

func TestTariffTablePriceOrDefault(t *testing.T) {
	tt := DefaultTariffs()
	if got := tt.PriceOrDefault("R-3"); got != 2500 {
		t.Fatalf("PriceOrDefault(R-3) = %v, want 2500", got)
	}
	if got := tt.PriceOrDefault("unknown"); got != 1500 {
		t.Fatalf("PriceOrDefault(unknown) = %v, want 1500", got)
	}

	custom := TariffTable{Default: "B-1", Prices: map[string]float64{"B-1": 1100, "B-2": 1400}}
	if got := custom.PriceOrDefault("R-1"); got != 1100 {
		t.Fatalf("custom default fallback = %v, want 1100", got)
	}

	empty := TariffTable{}
	if got := empty.PriceOrDefault("R-1"); got != FallbackPrice {
		t.Fatalf("empty table fallback = %v, want %v", got, FallbackPrice)
	}
}

func TestTariffTableOpenAndCloned(t *testing.T) {
	tt := DefaultTariffs()
	tt.Prices["R-4"] = 3000
	if !tt.Has("R-4") {
		t.Fatalf("expected R-4 to be priced after adding it")
	}
	if got := tt.Classes(); !slices.Equal(got, []string{"R-1", "R-2", "R-3", "R-4"}) {
		t.Fatalf("Classes = %v", got)
	}

	c := tt.Clone()
	c.Prices["R-1"] = 1
	if tt.Prices["R-1"] != 1500 {
		t.Fatalf("Clone shares the price map")
	}
}

func TestTariffTableMaxPrice(t *testing.T) {
	cases := []struct {
		name  string
		table TariffTable
		want  float64
	}{
		{"reference", DefaultTariffs(), 2500},
		{"empty uses fallback", TariffTable{}, FallbackPrice},
		{"cheap table keeps fallback", TariffTable{Default: "B-1", Prices: map[string]float64{"B-1": 900}}, FallbackPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.table.MaxPrice(); got != tc.want {
				t.Fatalf("MaxPrice = %v, want %v", got, tc.want)
			}
		})
	}
}
