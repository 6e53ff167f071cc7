// Package output renders projection results as a human-readable table or
// as CSV.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/pkg/format"
)

// PrettyFormat writes a human-readable rather than machine-readable table
// of the projection, year by year, followed by a summary and the tax
// estimate when one is present.
func PrettyFormat(w io.Writer, outcome *calculator.Outcome) {
	if outcome == nil || outcome.Projection == nil {
		return
	}
	proj := outcome.Projection

	fmt.Fprintf(w, "Jahr | %14s | %14s | %14s | %14s\n",
		"Startkapital", "Einzahlungen", "Zinsen", "Endkapital")
	fmt.Fprintf(w, "____ | %s | %s | %s | %s\n",
		strings.Repeat("_", 14), strings.Repeat("_", 14),
		strings.Repeat("_", 14), strings.Repeat("_", 14))
	for _, row := range proj.Years {
		fmt.Fprintf(w, "%4d | %14s | %14s | %14s | %14s\n",
			row.Year,
			format.Currency(row.StartBalance),
			format.Currency(row.Contributions),
			format.Currency(row.Interest),
			format.Currency(row.EndBalance),
		)
	}

	fmt.Fprintf(w, "\nEndkapital:     %s\n", format.Currency(proj.FinalBalance))
	fmt.Fprintf(w, "Einzahlungen:   %s\n", format.Currency(proj.TotalContributions))
	fmt.Fprintf(w, "Zinsen gesamt:  %s\n", format.Currency(proj.TotalInterest))
	if proj.RealFinalBalance != 0 {
		fmt.Fprintf(w, "Kaufkraft:      %s\n", format.Currency(proj.RealFinalBalance))
	}

	if tax := outcome.Tax; tax != nil {
		fmt.Fprintf(w, "\n--- Steuerschätzung ---\n")
		fmt.Fprintf(w, "Zinsertrag brutto:      %s\n", format.Currency(tax.GrossInterest))
		fmt.Fprintf(w, "Sparerpauschbetrag:     %s\n", format.Currency(tax.AllowanceApplied))
		fmt.Fprintf(w, "Abgeltungsteuer:        %s\n", format.Currency(tax.CapitalGainsTax))
		fmt.Fprintf(w, "Solidaritätszuschlag:   %s\n", format.Currency(tax.SolidaritySurcharge))
		if tax.ChurchTax > 0 {
			fmt.Fprintf(w, "Kirchensteuer:          %s\n", format.Currency(tax.ChurchTax))
		}
		fmt.Fprintf(w, "Steuern gesamt:         %s\n", format.Currency(tax.TotalTax))
		fmt.Fprintf(w, "Zinsertrag netto:       %s\n", format.Currency(tax.NetInterest))
		fmt.Fprintf(w, "Effektiver Steuersatz:  %s\n", format.Percent(tax.EffectiveRate))
	}
}

// CsvFormat writes the projection years in comma-separated value format.
// Values use machine decimals so the output imports cleanly into
// spreadsheets regardless of locale settings.
func CsvFormat(w io.Writer, outcome *calculator.Outcome) {
	if outcome == nil || outcome.Projection == nil {
		return
	}
	fmt.Fprintf(w, `"year","startBalance","contributions","interest","endBalance"`)
	fmt.Fprintf(w, "\n")
	for _, row := range outcome.Projection.Years {
		fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%.2f"`,
			row.Year, row.StartBalance, row.Contributions, row.Interest, row.EndBalance)
		fmt.Fprintf(w, "\n")
	}
}
