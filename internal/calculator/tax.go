package calculator

import (
	"math"

	"github.com/zinswerk/zinsrechner/pkg/constants"
	"github.com/zinswerk/zinsrechner/pkg/mathutil"
)

// TaxOptions configures the German capital-gains tax estimate.
type TaxOptions struct {
	// ChurchTaxRate is the Kirchensteuer rate in percent (0, 8, or 9).
	ChurchTaxRate float64 `json:"churchTaxRate"`
	// AllowanceUsed is the portion of the annual Sparerpauschbetrag
	// already consumed elsewhere, in euros.
	AllowanceUsed float64 `json:"allowanceUsed"`
}

// TaxEstimate breaks down the estimated tax burden on the projection's
// interest gains.
type TaxEstimate struct {
	GrossInterest       float64 `json:"grossInterest"`
	TaxableInterest     float64 `json:"taxableInterest"`
	AllowanceApplied    float64 `json:"allowanceApplied"`
	CapitalGainsTax     float64 `json:"capitalGainsTax"`
	SolidaritySurcharge float64 `json:"solidaritySurcharge"`
	ChurchTax           float64 `json:"churchTax"`
	TotalTax            float64 `json:"totalTax"`
	NetInterest         float64 `json:"netInterest"`
	EffectiveRate       float64 `json:"effectiveRate"`
}

// EstimateTax applies the Abgeltungsteuer with the annual
// Sparerpauschbetrag allowance to each projection year. The allowance
// renews every year; the solidarity surcharge and an optional
// Kirchensteuer are surcharges on the capital-gains tax amount.
func EstimateTax(proj *Projection, opts TaxOptions) TaxEstimate {
	estimate := TaxEstimate{}
	if proj == nil {
		return estimate
	}

	allowance := constants.Sparerpauschbetrag - opts.AllowanceUsed
	if allowance < 0 {
		allowance = 0
	}

	for _, year := range proj.Years {
		gain := year.Interest
		if gain <= 0 {
			continue
		}
		estimate.GrossInterest += gain

		applied := math.Min(gain, allowance)
		taxable := gain - applied
		estimate.AllowanceApplied += applied
		estimate.TaxableInterest += taxable

		tax := mathutil.ApplyPercentage(taxable, constants.AbgeltungsteuerRate)
		estimate.CapitalGainsTax += tax
		estimate.SolidaritySurcharge += mathutil.ApplyPercentage(tax, constants.SolidaritaetszuschlagRate)
		estimate.ChurchTax += mathutil.ApplyPercentage(tax, opts.ChurchTaxRate)
	}

	estimate.GrossInterest = mathutil.Round(estimate.GrossInterest)
	estimate.TaxableInterest = mathutil.Round(estimate.TaxableInterest)
	estimate.AllowanceApplied = mathutil.Round(estimate.AllowanceApplied)
	estimate.CapitalGainsTax = mathutil.Round(estimate.CapitalGainsTax)
	estimate.SolidaritySurcharge = mathutil.Round(estimate.SolidaritySurcharge)
	estimate.ChurchTax = mathutil.Round(estimate.ChurchTax)
	estimate.TotalTax = mathutil.Round(estimate.CapitalGainsTax + estimate.SolidaritySurcharge + estimate.ChurchTax)
	estimate.NetInterest = mathutil.Round(estimate.GrossInterest - estimate.TotalTax)
	if estimate.GrossInterest > 0 {
		estimate.EffectiveRate = mathutil.Round(mathutil.CalculatePercentage(estimate.TotalTax, estimate.GrossInterest))
	}

	return estimate
}
