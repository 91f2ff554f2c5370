// Package gst implements the GST arithmetic applied to invoice lines.
//
// When buyer and seller share a state code the tax splits evenly into
// CGST and SGST; otherwise the full rate is charged as IGST. The split is
// mutually exclusive: a line never carries both.
package gst

import "math"

// Breakdown is the tax computation for a single line.
type Breakdown struct {
	Taxable float64 `json:"taxable"`
	CGST    float64 `json:"cgst"`
	SGST    float64 `json:"sgst"`
	IGST    float64 `json:"igst"`
	Total   float64 `json:"total"`
}

// StateCode derives the state code from a GSTIN: its first two characters.
// Returns "" when the GSTIN is missing or shorter than two characters.
// Two empty codes compare equal, so unregistered parties get the
// intra-state split.
func StateCode(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// Calculate computes the GST breakdown for a line of qty units at the
// given unit price and tax rate (a percentage). Inputs are assumed
// non-negative; validation belongs to the caller.
func Calculate(price float64, qty int64, rate float64, sellerState, buyerState string) Breakdown {
	taxable := price * float64(qty)

	var cgst, sgst, igst float64
	if sellerState == buyerState {
		cgst = taxable * (rate / 2) / 100
		sgst = taxable * (rate / 2) / 100
	} else {
		igst = taxable * rate / 100
	}

	total := taxable + cgst + sgst + igst

	return Breakdown{
		Taxable: Round2(taxable),
		CGST:    Round2(cgst),
		SGST:    Round2(sgst),
		IGST:    Round2(igst),
		Total:   Round2(total),
	}
}

// Round2 rounds a monetary value to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
