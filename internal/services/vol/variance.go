package vol

import (
	"sort"

	"VolPull/internal/domain/models"
)

// minOTMPerSide is the minimum number of strikes required strictly on
// each side of K0 for a variance estimate.
const minOTMPerSide = 3

// minContributions is the minimum number of priced strikes that must
// survive into the integration sum.
const minContributions = 6

// strikePair holds at most one quote per option type at a single strike.
// Duplicates of the same type are resolved last-seen-wins.
type strikePair struct {
	call *models.OptionQuote
	put  *models.OptionQuote
}

func (p *strikePair) set(q models.OptionQuote) {
	cp := q
	if q.Type == models.Call {
		p.call = &cp
	} else {
		p.put = &cp
	}
}

// ExpiryVariance computes the Carr-Madan model-free variance for a single
// expiry from its quote set. T is the time to expiry in years and F the
// forward price for that expiry.
//
// The returned StrikeCount is min(OTM put strikes, OTM call strikes) and
// is populated even when ok is false, so callers can report how far short
// the grid fell. ok is false whenever the data cannot support a
// statistically meaningful estimate: fewer than 3 distinct strikes, fewer
// than 3 strikes on either side of K0, fewer than 6 surviving priced
// contributions, or a non-positive variance.
func ExpiryVariance(quotes []models.OptionQuote, T, F, r float64) (models.VarianceResult, bool) {
	if T <= 0 || F <= 0 || len(quotes) == 0 {
		return models.VarianceResult{}, false
	}

	// Dedupe by strike, one slot per option type.
	byStrike := make(map[float64]*strikePair)
	for _, q := range quotes {
		if !q.HasValidIV() || !q.Type.Valid() {
			continue
		}
		p, ok := byStrike[q.Strike]
		if !ok {
			p = &strikePair{}
			byStrike[q.Strike] = p
		}
		p.set(q)
	}

	strikes := make([]float64, 0, len(byStrike))
	for k := range byStrike {
		strikes = append(strikes, k)
	}
	sort.Float64s(strikes)
	if len(strikes) < minOTMPerSide {
		return models.VarianceResult{}, false
	}

	// K0: highest strike at or below the forward; if every strike sits
	// above the forward, the lowest strike stands in.
	k0 := strikes[0]
	for _, k := range strikes {
		if k <= F {
			k0 = k
		} else {
			break
		}
	}

	// Select the OTM quote per strike: puts below K0, calls above, with
	// the other side as fallback when the preferred one is missing.
	type selection struct {
		strike float64
		iv     float64
	}
	selected := make([]selection, 0, len(strikes))
	putCount, callCount := 0, 0

	for _, k := range strikes {
		pair := byStrike[k]
		var q *models.OptionQuote
		switch {
		case k < k0:
			q = pair.put
			if q == nil {
				q = pair.call
			}
			putCount++
		case k > k0:
			q = pair.call
			if q == nil {
				q = pair.put
			}
			callCount++
		default:
			q = pair.put
			if q == nil {
				q = pair.call
			}
		}
		if q == nil {
			continue
		}
		selected = append(selected, selection{strike: k, iv: q.MarkIV})
	}

	achieved := putCount
	if callCount < achieved {
		achieved = callCount
	}
	if putCount < minOTMPerSide || callCount < minOTMPerSide {
		return models.VarianceResult{StrikeCount: achieved}, false
	}

	// Price each selected strike via Black-76 and assemble contributions.
	// dK neighbors come from the selected (deduplicated, IV-filtered)
	// strike list; strikes whose price collapses to zero drop out of the
	// sum afterwards but still shape their neighbors' widths.
	type contribution struct {
		strike, dK, price float64
	}
	contributions := make([]contribution, 0, len(selected))

	for idx, sel := range selected {
		var price float64
		switch {
		case sel.strike < k0:
			price = Black76Price(F, sel.strike, T, sel.iv, models.Put, r)
		case sel.strike > k0:
			price = Black76Price(F, sel.strike, T, sel.iv, models.Call, r)
		default:
			// At K0 use the straddle average: both sides with their own
			// IVs when both are quoted, else both legs off the one IV
			// available.
			pair := byStrike[sel.strike]
			if pair.put != nil && pair.call != nil {
				price = (Black76Price(F, sel.strike, T, pair.call.MarkIV, models.Call, r) +
					Black76Price(F, sel.strike, T, pair.put.MarkIV, models.Put, r)) / 2.0
			} else {
				price = (Black76Price(F, sel.strike, T, sel.iv, models.Call, r) +
					Black76Price(F, sel.strike, T, sel.iv, models.Put, r)) / 2.0
			}
		}
		if price <= 0 {
			continue
		}

		var dK float64
		switch idx {
		case 0:
			dK = selected[1].strike - selected[0].strike
		case len(selected) - 1:
			dK = selected[idx].strike - selected[idx-1].strike
		default:
			dK = (selected[idx+1].strike - selected[idx-1].strike) / 2.0
		}

		contributions = append(contributions, contribution{strike: sel.strike, dK: dK, price: price})
	}

	if len(contributions) < minContributions {
		return models.VarianceResult{StrikeCount: achieved}, false
	}

	// sigma^2 = (2/T) * sum(dK_i / K_i^2 * Q(K_i)) - (1/T) * (F/K0 - 1)^2
	sum := 0.0
	for _, c := range contributions {
		sum += c.dK / (c.strike * c.strike) * c.price
	}
	fwdTerm := F/k0 - 1.0
	variance := (2.0/T)*sum - (1.0/T)*fwdTerm*fwdTerm

	if variance <= 0 {
		return models.VarianceResult{StrikeCount: achieved}, false
	}

	return models.VarianceResult{Variance: variance, StrikeCount: achieved}, true
}
