package coinbasepro

import (
	"testing"
	"time"
)

func TestBookLevel_Param(t *testing.T) {
	levels := map[BookLevel]string{
		BookLevel1: "1",
		BookLevel2: "2",
		BookLevel3: "3",
	}

	for level, want := range levels {
		p := level.param()
		if p.Key != "level" || p.Value != want {
			t.Errorf("BookLevel %d param = (%s, %s), want (level, %s)", level, p.Key, p.Value, want)
		}
	}
}

func TestGranularity_Valid(t *testing.T) {
	valid := []Granularity{Granularity1m, Granularity5m, Granularity15m, Granularity1h, Granularity6h, Granularity1d}
	for _, g := range valid {
		if !g.Valid() {
			t.Errorf("Granularity %d should be valid", g)
		}
	}

	for _, g := range []Granularity{0, 1, 120, 7200, -60} {
		if g.Valid() {
			t.Errorf("Granularity %d should not be valid", g)
		}
	}
}

func TestGranularity_Param(t *testing.T) {
	p := Granularity1h.param()
	if p.Key != "granularity" || p.Value != "3600" {
		t.Errorf("Granularity1h param = (%s, %s), want (granularity, 3600)", p.Key, p.Value)
	}
}

func TestHistoricRatesOpts_ParamsOrderAndFormat(t *testing.T) {
	opts := HistoricRatesOpts{
		Start:       time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
		Granularity: Granularity1h,
	}

	params := opts.params()
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}

	// start, end, granularity in that order, RFC 3339 timestamps.
	checks := []Param{
		{Key: "start", Value: "2021-01-01T00:00:00Z"},
		{Key: "end", Value: "2021-01-02T00:00:00Z"},
		{Key: "granularity", Value: "3600"},
	}
	for i, want := range checks {
		if params[i] != want {
			t.Errorf("param[%d] = %v, want %v", i, params[i], want)
		}
	}
}

func TestHistoricRatesOpts_ZeroFieldsOmitted(t *testing.T) {
	if params := (HistoricRatesOpts{}).params(); params != nil {
		t.Errorf("zero opts should produce no params, got %v", params)
	}

	params := HistoricRatesOpts{Granularity: Granularity1d}.params()
	if len(params) != 1 || params[0].Key != "granularity" || params[0].Value != "86400" {
		t.Errorf("granularity-only opts wrong: %v", params)
	}
}
