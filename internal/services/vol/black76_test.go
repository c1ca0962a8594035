package vol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"VolPull/internal/domain/models"
)

func TestBlack76PutCallParity(t *testing.T) {
	cases := []struct{ F, K, T, sigma float64 }{
		{100, 100, 0.1, 0.6},
		{100, 80, 0.05, 0.4},
		{50000, 65000, 0.25, 1.2},
		{3000, 2000, 0.02, 0.9},
		{1.5, 1.8, 0.5, 0.3},
	}
	for _, c := range cases {
		call := Black76Price(c.F, c.K, c.T, c.sigma, models.Call, 0)
		put := Black76Price(c.F, c.K, c.T, c.sigma, models.Put, 0)
		assert.InDelta(t, c.F-c.K, call-put, 1e-9*math.Max(1, c.F),
			"parity violated F=%v K=%v T=%v sigma=%v", c.F, c.K, c.T, c.sigma)
	}
}

func TestBlack76ATMPositive(t *testing.T) {
	p := Black76Price(100, 100, 0.1, 0.6, models.Call, 0)
	if p <= 0 {
		t.Fatalf("ATM call should have positive value, got %v", p)
	}
	// ATM forward call approximation: F * sigma * sqrt(T/(2*pi))
	approx := 100 * 0.6 * math.Sqrt(0.1/(2*math.Pi))
	assert.InDelta(t, approx, p, approx*0.01)
}

func TestBlack76Discounting(t *testing.T) {
	undiscounted := Black76Price(100, 90, 0.5, 0.5, models.Call, 0)
	discounted := Black76Price(100, 90, 0.5, 0.5, models.Call, 0.05)
	assert.InDelta(t, undiscounted*math.Exp(-0.05*0.5), discounted, 1e-12)
}

func TestBlack76InvalidInputsUnpriced(t *testing.T) {
	cases := []struct{ F, K, T, sigma float64 }{
		{0, 100, 0.1, 0.6},
		{100, 0, 0.1, 0.6},
		{100, 100, 0, 0.6},
		{100, 100, -0.1, 0.6},
		{100, 100, 0.1, 0},
		{-100, 100, 0.1, 0.6},
	}
	for _, c := range cases {
		if p := Black76Price(c.F, c.K, c.T, c.sigma, models.Call, 0); p != 0 {
			t.Fatalf("expected 0.0 for F=%v K=%v T=%v sigma=%v, got %v", c.F, c.K, c.T, c.sigma, p)
		}
	}
}

func TestBlack76DeepITMCallNearIntrinsic(t *testing.T) {
	// Short maturity, deep ITM: price converges to F - K.
	p := Black76Price(100, 50, 0.01, 0.3, models.Call, 0)
	assert.InDelta(t, 50.0, p, 0.01)
}
