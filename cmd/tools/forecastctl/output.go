package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/services"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// printer formats amounts with the grouping rules of a locale
type printer struct {
	w  io.Writer
	mp *message.Printer
}

func newPrinter(w io.Writer, tag language.Tag) *printer {
	return &printer{w: w, mp: message.NewPrinter(tag)}
}

func (p *printer) amount(v float64) string {
	return p.mp.Sprintf("%.2f", v)
}

func (p *printer) percent(v float64) string {
	return p.mp.Sprintf("%.1f%%", v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// renderForecast prints a forecast as a table followed by its accuracy,
// insights and recommendations
func (p *printer) renderForecast(resp *services.ForecastResponse) error {
	fmt.Fprintf(p.w, "Method: %s (requested %s), %d data points\n",
		resp.Method, resp.RequestedMethod, resp.DataPoints)
	if len(resp.Outliers) > 0 {
		fmt.Fprintf(p.w, "Outliers replaced at indexes %v\n", resp.Outliers)
	}
	fmt.Fprintln(p.w)

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD\tDATE\tFORECAST\tLOWER\tUPPER\tCONFIDENCE\t")
	for i, point := range resp.Predictions {
		lower, upper := point.Value, point.Value
		if i < len(resp.ConfidenceIntervals) {
			lower = resp.ConfidenceIntervals[i].Lower
			upper = resp.ConfidenceIntervals[i].Upper
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1,
			point.Timestamp.Format("2006-01-02"),
			p.amount(point.Value),
			p.amount(lower),
			p.amount(upper),
			p.percent(point.Confidence*100),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	acc := resp.Accuracy
	fmt.Fprintf(p.w, "\nAccuracy: MAPE %s, RMSE %s, R² %.3f, confidence %s\n",
		p.percent(acc.MAPE), p.amount(acc.RMSE), acc.RSquared, p.percent(acc.Confidence*100))

	writeList(p.w, "Insights", resp.Insights)
	writeList(p.w, "Recommendations", resp.Recommendations)
	return nil
}

// renderValidation prints the three validation scores and the verdict
func (p *printer) renderValidation(resp *services.ValidateResponse) error {
	verdict := "VALID"
	if !resp.IsValid {
		verdict = "NOT VALID"
	}
	fmt.Fprintf(p.w, "Model: %s (%d data points)\n\n", verdict, resp.DataPoints)

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSCORE")
	fmt.Fprintf(tw, "cross-validation\t%.3f\n", resp.Metrics.CrossValidationScore)
	fmt.Fprintf(tw, "holdout\t%.3f\n", resp.Metrics.HoldoutScore)
	fmt.Fprintf(tw, "stability\t%.3f\n", resp.Metrics.StabilityScore)
	if err := tw.Flush(); err != nil {
		return err
	}

	writeList(p.w, "Recommendations", resp.Recommendations)
	return nil
}

// renderModel prints the engine description
func (p *printer) renderModel(m forecast.ModelMetrics) error {
	methods := make([]string, len(m.Methods))
	for i, method := range m.Methods {
		methods[i] = method.String()
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Engine\t%s %s\n", m.Name, m.Version)
	fmt.Fprintf(tw, "Methods\t%s\n", strings.Join(methods, ", "))
	fmt.Fprintf(tw, "Season length\t%d\n", m.SeasonLength)
	fmt.Fprintf(tw, "Minimum data points\t%d\n", m.MinDataPoints)
	fmt.Fprintf(tw, "Outlier multiplier\t%.1f\n", m.OutlierMultiplier)
	fmt.Fprintf(tw, "Smoothing alphas\t%v\n", m.AlphaGrid)
	fmt.Fprintf(tw, "Confidence levels\t%v\n", m.ConfidenceLevels)
	fmt.Fprintf(tw, "Cross-validation folds\t%d\n", m.CrossValidationFolds)
	fmt.Fprintf(tw, "Validation thresholds\tcv %.2f, holdout %.2f, stability %.2f\n",
		m.ValidationThresholds.CrossValidationScore,
		m.ValidationThresholds.HoldoutScore,
		m.ValidationThresholds.StabilityScore)
	if err := tw.Flush(); err != nil {
		return err
	}

	writeList(p.w, "Capabilities", m.Capabilities)
	return nil
}

// renderOutliers prints the fences and each replaced observation
func (p *printer) renderOutliers(resp *services.OutlierResponse) error {
	fmt.Fprintf(p.w, "Fences: [%s, %s], replacement %s\n",
		p.amount(resp.Bounds.Lower), p.amount(resp.Bounds.Upper), p.amount(resp.Replacement))
	if len(resp.Outliers) == 0 {
		fmt.Fprintln(p.w, "No outliers found")
		return nil
	}
	fmt.Fprintln(p.w)

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tDATE\tVALUE\tTYPE\tSCORE")
	for _, o := range resp.Outliers {
		date := "-"
		if o.Timestamp != nil {
			date = o.Timestamp.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", o.Index, date, p.amount(o.Value), o.Type, o.Score)
	}
	return tw.Flush()
}

// renderWorkers prints registered workers and, when probed, their health
func renderWorkers(w io.Writer, workers []models.WorkerInfo, health map[string]string) error {
	if len(workers) == 0 {
		fmt.Fprintln(w, "No forecast workers registered")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tADDRESS\tSTATUS\tVERSION\tPROCESSED\tFAILED\tUPDATED"
	if health != nil {
		header += "\tHEALTH"
	}
	fmt.Fprintln(tw, header)
	for _, info := range workers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s",
			info.ID, info.Address, info.Status, info.Version,
			info.Processed, info.Failed, info.UpdatedAt.Format("2006-01-02 15:04:05"))
		if health != nil {
			fmt.Fprintf(tw, "\t%s", health[info.ID])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
