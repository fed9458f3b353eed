package prior_test

import (
	"math"
	"testing"

	"github.com/hollowcreek/bayeslist/prior"
	"github.com/hollowcreek/bayeslist/rule"
)

func TestNewValidatesParams(t *testing.T) {
	cases := []struct {
		name           string
		nrules         int
		lambda, eta    float64
		wantErr        bool
	}{
		{"valid", 5, 1, 1, false},
		{"zero nrules", 0, 1, 1, true},
		{"zero lambda", 5, 0, 1, true},
		{"negative eta", 5, 1, -1, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := prior.New(c.nrules, c.lambda, c.eta)
			if (err != nil) != c.wantErr {
				t.Errorf("New(%d, %v, %v) error = %v, wantErr %v", c.nrules, c.lambda, c.eta, err, c.wantErr)
			}
		})
	}
}

func TestCacheIsFinite(t *testing.T) {
	cache, err := prior.New(10, 2, 1.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for k, v := range cache.LogLambdaPMF {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("LogLambdaPMF[%d] = %v, want finite", k, v)
		}
	}
	for c, v := range cache.LogEtaPMF {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("LogEtaPMF[%d] = %v, want finite", c, v)
		}
	}
	if cache.EtaNorm <= 0 || cache.EtaNorm > 1 {
		t.Errorf("EtaNorm = %v, want in (0, 1]", cache.EtaNorm)
	}
}

func TestCacheSizedToMaxCardinality(t *testing.T) {
	cache, err := prior.New(4, 1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := len(cache.LogEtaPMF), rule.MaxCardinality+1; got != want {
		t.Errorf("len(LogEtaPMF) = %d, want %d", got, want)
	}
}

func TestStale(t *testing.T) {
	cache, err := prior.New(4, 1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cache.Stale(4, 1, 1) {
		t.Errorf("Stale() = true for identical params, want false")
	}
	if !cache.Stale(5, 1, 1) {
		t.Errorf("Stale() = false for a different nrules, want true")
	}
	if !cache.Stale(4, 2, 1) {
		t.Errorf("Stale() = false for a different lambda, want true")
	}
}
