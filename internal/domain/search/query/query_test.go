package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/propsearch/internal/domain"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/strategy"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New(Params{Text: "apartment in warsaw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Mode() != mode.Hybrid {
		t.Errorf("default mode = %q, want hybrid", q.Mode())
	}
	if q.Strategy() != strategy.Balanced {
		t.Errorf("default strategy = %q, want balanced", q.Strategy())
	}
	if q.K() != DefaultK {
		t.Errorf("default k = %d, want %d", q.K(), DefaultK)
	}
	if q.FetchK() != DefaultFetchK {
		t.Errorf("default fetchK = %d, want %d", q.FetchK(), DefaultFetchK)
	}
	if q.SortDirection() != SortAscending {
		t.Errorf("default sort direction = %q, want asc", q.SortDirection())
	}
}

func TestNew_FetchKRaisedToK(t *testing.T) {
	q, err := New(Params{Text: "x", K: 50, FetchK: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FetchK() != 50 {
		t.Errorf("fetchK = %d, want raised to k=50", q.FetchK())
	}
}

func TestNew_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"empty text", Params{}},
		{"bad mode", Params{Text: "x", Mode: "keyword"}},
		{"bad strategy", Params{Text: "x", Strategy: "yield"}},
		{"bad sort direction", Params{Text: "x", SortDirection: "up"}},
		{"geo out of range", Params{Text: "x", Geo: &GeoCircle{Lat: 95, Lon: 0, RadiusKm: 5}}},
		{"geo zero radius", Params{Text: "x", Geo: &GeoCircle{Lat: 52, Lon: 21, RadiusKm: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("error should wrap ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestNew_ClampsLimits(t *testing.T) {
	q, err := New(Params{Text: "x", K: 10_000, FetchK: 10_000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.K() != MaxK {
		t.Errorf("k = %d, want clamped to %d", q.K(), MaxK)
	}
	if q.FetchK() != MaxFetchK {
		t.Errorf("fetchK = %d, want clamped to %d", q.FetchK(), MaxFetchK)
	}
}

func TestRange_IsSet(t *testing.T) {
	if (Range{}).IsSet() {
		t.Error("empty range should not be set")
	}
	v := 100.0
	if !(Range{Min: &v}).IsSet() {
		t.Error("range with min should be set")
	}
	if !(Range{Max: &v}).IsSet() {
		t.Error("range with max should be set")
	}
}
