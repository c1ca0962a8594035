package vol

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"VolPull/internal/domain/models"
)

// MinValidationDays is the smallest overlap that supports a comparison.
const MinValidationDays = 5

// DefaultCorrelationThreshold is the advisory pass mark for the
// reconstruction check.
const DefaultCorrelationThreshold = 0.90

// CompareToOfficial aligns an externally published daily index series
// against the computed daily DVOL series by UTC date (last value per day
// on the official side) and reports Pearson correlation, mean absolute
// error, and RMSE over the matched days.
//
// This is an acceptance check on the Carr-Madan reconstruction, not part
// of the production computation; a failed report is logged for review,
// never an abort. ok is false when fewer than MinValidationDays days
// overlap.
func CompareToOfficial(official []models.IndexPoint, computed []models.DailyDvol, corrThreshold float64) (models.ValidationReport, bool) {
	if corrThreshold <= 0 {
		corrThreshold = DefaultCorrelationThreshold
	}

	officialByDay := make(map[string]float64, len(official))
	for _, p := range official {
		officialByDay[p.Date] = p.Close // last value per day wins
	}

	days := make([]string, 0, len(computed))
	computedByDay := make(map[string]float64, len(computed))
	for _, d := range computed {
		if _, ok := officialByDay[d.Date]; !ok {
			continue
		}
		if _, seen := computedByDay[d.Date]; !seen {
			days = append(days, d.Date)
		}
		computedByDay[d.Date] = d.Dvol
	}
	sort.Strings(days)

	if len(days) < MinValidationDays {
		return models.ValidationReport{Days: len(days)}, false
	}

	x := make([]float64, len(days))
	y := make([]float64, len(days))
	for i, day := range days {
		x[i] = officialByDay[day]
		y[i] = computedByDay[day]
	}

	corr := stat.Correlation(x, y, nil)

	var absSum, sqSum float64
	for i := range x {
		d := y[i] - x[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(x))

	report := models.ValidationReport{
		Days:        len(days),
		Correlation: corr,
		MAE:         absSum / n,
		RMSE:        math.Sqrt(sqSum / n),
	}
	report.Pass = report.Correlation > corrThreshold
	return report, true
}
