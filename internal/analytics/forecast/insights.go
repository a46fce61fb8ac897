package forecast

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/finsightapp/finsight/internal/analytics"
)

// insightSlope returns the regression slope of values, or 0 when no line can be fitted.
func insightSlope(values []float64) float64 {
	fit, err := fitLine(values)
	if err != nil {
		return 0
	}
	return fit.Slope
}

func meanConfidence(points []ForecastPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Confidence
	}
	return sum / float64(len(points))
}

// generateInsights describes trend, volatility and confidence of a forecast.
func generateInsights(values []float64, points []ForecastPoint, opts Options, p Profile) []string {
	insights := []string{}

	mean := analytics.Mean(values)
	relative := 0.0
	if mean != 0 {
		relative = insightSlope(values) / math.Abs(mean)
	}
	switch {
	case relative > 0.05:
		insights = append(insights, fmt.Sprintf("Strong upward trend: values grow by about %.1f%% per period", relative*100))
	case relative > 0.01:
		insights = append(insights, fmt.Sprintf("Moderate growth: values rise by about %.1f%% per period", relative*100))
	case relative < -0.01:
		insights = append(insights, fmt.Sprintf("Declining trend: values fall by about %.1f%% per period", -relative*100))
	default:
		insights = append(insights, "Stable pattern: no significant trend in the historical data")
	}

	vol := volatility(values)
	switch {
	case vol > 0.3:
		insights = append(insights, fmt.Sprintf("High volatility (%.0f%% coefficient of variation): plan with wider safety margins", vol*100))
	case vol < 0.1:
		insights = append(insights, "Low volatility: historical values are consistent, which supports reliable planning")
	}

	conf := meanConfidence(points)
	switch {
	case conf > 0.8:
		insights = append(insights, fmt.Sprintf("High forecast confidence (%.0f%% on average)", conf*100))
	case conf < 0.6:
		insights = append(insights, fmt.Sprintf("Use caution: average forecast confidence is only %.0f%%", conf*100))
	}

	if opts.IncludeSeasonality && p.SeasonalityStrength > seasonalityThreshold {
		insights = append(insights, fmt.Sprintf("Seasonal pattern detected over a %d-period cycle", SeasonLength))
	}
	return insights
}

// generateRecommendations returns planning advice for the forecast.
func generateRecommendations(values []float64, points []ForecastPoint, opts Options, locale language.Tag) []string {
	recs := []string{}
	n := len(values)

	if n < 12 {
		recs = append(recs, "Collect at least 12 periods of history to improve forecast reliability")
	}
	if float64(opts.Periods) > float64(n)/2 {
		recs = append(recs, fmt.Sprintf("Shorten the forecast horizon: %d periods is long relative to %d periods of history", opts.Periods, n))
	}

	histMean := analytics.Mean(values)
	if histMean != 0 && len(points) > 0 {
		ratio := analytics.Mean(pointValues(points)) / histMean
		switch {
		case ratio > 1.2:
			recs = append(recs, fmt.Sprintf("Forecast points to %.0f%% growth: prepare inventory, staffing and working capital to scale up", (ratio-1)*100))
		case ratio < 0.8:
			recs = append(recs, fmt.Sprintf("Forecast points to a %.0f%% decline: review pricing, costs and sales strategy", (1-ratio)*100))
		}
	}

	if opts.LocaleContext {
		recs = append(recs, localeRecommendations(points, locale)...)
	}
	return recs
}

// localeRecommendations adds region notes with amounts formatted for locale.
func localeRecommendations(points []ForecastPoint, locale language.Tag) []string {
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(decimal.NewFromFloat(p.Value))
	}

	region, _ := locale.Region()
	printer := message.NewPrinter(locale)
	return []string{
		printer.Sprintf("Projected total for the next %d periods: %s", len(points), FormatAmount(locale, total)),
		printer.Sprintf("Factor regional festive and fiscal year-end seasons in %s into inventory and cash planning", region.String()),
		"Keep a cash buffer for local tax and statutory payment deadlines that fall inside the forecast window",
	}
}

// FormatAmount renders amount rounded to two decimals with the currency and
// digit grouping of locale.
func FormatAmount(locale language.Tag, amount decimal.Decimal) string {
	unit, _ := currency.FromTag(locale)
	printer := message.NewPrinter(locale)
	return printer.Sprintf("%s %v", unit.String(), number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
}

func pointValues(points []ForecastPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
