package scoring

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/stockvision/stockvision/internal/models"
)

// ForecastDays is the fixed forecast horizon.
const ForecastDays = 7

// Band margin bounds. The margin grows by marginPerDay each day; the
// width floor in Forecast keeps the band non-decreasing even when the
// lower bound clamps at zero.
const (
	marginBaseMin = 5.0
	marginBaseMax = 12.0
	marginPerDay  = 2.0
)

// Forecast extrapolates the demand series ForecastDays ahead using a
// least-squares linear trend plus a deterministic weekly seasonality term.
// Identical input always produces identical output.
func Forecast(series []float64) []models.ForecastPoint {
	if len(series) < 3 {
		flat := make([]float64, ForecastDays)
		for i := range flat {
			flat[i] = 50
		}
		series = flat
	}

	n := float64(len(series))
	slope, stderr := linearTrend(series)
	last := series[len(series)-1]

	forecast := make([]models.ForecastPoint, 0, ForecastDays)
	prevWidth := 0
	for day := 1; day <= ForecastDays; day++ {
		predicted := last + slope*float64(day)
		predicted += 3 * math.Sin(float64(day-1)*math.Pi/3.5)
		predicted = clamp(predicted, 0, 100)

		margin := 1.96 * stderr * math.Sqrt(1+float64(day)/n)
		margin = clamp(margin, marginBaseMin, marginBaseMax)
		margin += marginPerDay * float64(day-1)

		lower := int(math.Round(predicted - margin))
		if lower < 0 {
			lower = 0
		}
		upper := int(math.Round(predicted + margin))

		// When lower clamps at zero, a falling prediction can shrink
		// the band faster than the per-day margin grows it. Floor the
		// width at the previous day's.
		if upper-lower < prevWidth {
			upper = lower + prevWidth
		}
		prevWidth = upper - lower

		forecast = append(forecast, models.ForecastPoint{
			Day:       day,
			Predicted: round1(predicted),
			Lower:     lower,
			Upper:     upper,
		})
	}
	return forecast
}

// linearTrend fits y = a + b*x by least squares and returns the slope and
// the residual standard error.
func linearTrend(series []float64) (slope, stderr float64) {
	n := len(series)
	xMean := float64(n-1) / 2
	yMean, err := stats.Mean(series)
	if err != nil {
		return 0, 0
	}

	var num, den float64
	for i, y := range series {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den != 0 {
		slope = num / den
	}

	var sse float64
	for i, y := range series {
		fitted := yMean + slope*(float64(i)-xMean)
		sse += (y - fitted) * (y - fitted)
	}
	dof := n - 2
	if dof < 1 {
		dof = 1
	}
	stderr = math.Sqrt(sse / float64(dof))
	return slope, stderr
}
