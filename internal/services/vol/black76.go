package vol

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"VolPull/internal/domain/models"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Black76Price returns the Black-76 price of a European option on a
// forward. F is the forward price, K the strike, T the time to expiry in
// years, sigma the implied volatility (decimal), r the risk-free rate.
//
// Any non-positive F, K, T, or sigma yields 0.0, meaning "unpriced"
// rather than "worthless"; callers must treat zero as no price. Pure
// function, safe for concurrent use.
func Black76Price(F, K, T, sigma float64, optType models.OptionType, r float64) float64 {
	if T <= 0 || sigma <= 0 || F <= 0 || K <= 0 {
		return 0.0
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(F/K) + 0.5*sigma*sigma*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	discount := math.Exp(-r * T)

	if optType == models.Call {
		return discount * (F*stdNormal.CDF(d1) - K*stdNormal.CDF(d2))
	}
	return discount * (K*stdNormal.CDF(-d2) - F*stdNormal.CDF(-d1))
}
