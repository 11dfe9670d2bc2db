// Package pricing holds the quotation arithmetic: item amounts, bioanalysis
// cost, discounts, rounding and VAT. All amounts are whole KRW.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"labquote/models"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid pricing input")

// Fees are the quotation-wide constants that are not tied to a catalog item.
type Fees struct {
	MethodValidationFee int64 `yaml:"method_validation_fee" json:"method_validation_fee"`
	PerSampleFee        int64 `yaml:"per_sample_fee" json:"per_sample_fee"`
	RoundingUnit        int64 `yaml:"rounding_unit" json:"rounding_unit"`
	VATPercent          int64 `yaml:"vat_percent" json:"vat_percent"`
}

// DefaultFees apply when the catalog file leaves a fee unset.
var DefaultFees = Fees{
	MethodValidationFee: 5_000_000,
	PerSampleFee:        50_000,
	RoundingUnit:        1_000,
	VATPercent:          10,
}

// WithDefaults fills zero fields from DefaultFees.
func (f Fees) WithDefaults() Fees {
	if f.MethodValidationFee == 0 {
		f.MethodValidationFee = DefaultFees.MethodValidationFee
	}
	if f.PerSampleFee == 0 {
		f.PerSampleFee = DefaultFees.PerSampleFee
	}
	if f.RoundingUnit <= 0 {
		f.RoundingUnit = DefaultFees.RoundingUnit
	}
	if f.VATPercent == 0 {
		f.VATPercent = DefaultFees.VATPercent
	}
	return f
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ItemAmount is unit price times quantity.
func ItemAmount(unitPrice int64, quantity int) (int64, error) {
	if unitPrice < 0 {
		return 0, invalid("unit price %d is negative", unitPrice)
	}
	if quantity < 1 {
		return 0, invalid("quantity %d must be at least 1", quantity)
	}
	return unitPrice * int64(quantity), nil
}

// AnalysisSamples is the number of bioanalysis samples a toxicity item produces.
func AnalysisSamples(groups, animalsPerGroup, timepoints int) int {
	if groups <= 0 || animalsPerGroup <= 0 || timepoints <= 0 {
		return 0
	}
	return groups * animalsPerGroup * timepoints
}

// AnalysisCost charges the method validation fee once when any item carries
// analysis, plus the per-sample fee for every sample.
func AnalysisCost(fees Fees, samplesPerItem []int) int64 {
	if len(samplesPerItem) == 0 {
		return 0
	}
	cost := fees.MethodValidationFee
	for _, s := range samplesPerItem {
		if s > 0 {
			cost += int64(s) * fees.PerSampleFee
		}
	}
	return cost
}

// EfficacyUnitPrice is the setup fee plus the per-group price for each group.
func EfficacyUnitPrice(setupFee, pricePerGroup int64, groups int) (int64, error) {
	if setupFee < 0 || pricePerGroup < 0 {
		return 0, invalid("efficacy prices must not be negative")
	}
	if groups < 1 {
		return 0, invalid("efficacy study needs at least one group, got %d", groups)
	}
	return setupFee + pricePerGroup*int64(groups), nil
}

// ClinicalPathologyUnitPrice bills at least minSamples samples.
func ClinicalPathologyUnitPrice(pricePerSample int64, samples, minSamples int) (int64, error) {
	if pricePerSample < 0 {
		return 0, invalid("price per sample must not be negative")
	}
	if samples < 1 {
		return 0, invalid("sample count %d must be at least 1", samples)
	}
	if samples < minSamples {
		samples = minSamples
	}
	return pricePerSample * int64(samples), nil
}

// Subtotal sums item amounts.
func Subtotal(amounts []int64) int64 {
	var sum int64
	for _, a := range amounts {
		sum += a
	}
	return sum
}

// Discount is a rate (percent) or fixed amount reduction.
type Discount struct {
	Type  string
	Value float64
}

// Amount returns the discount in won for the given base.
func (d Discount) Amount(base int64) (int64, error) {
	switch d.Type {
	case "", models.DiscountNone:
		return 0, nil
	case models.DiscountRate:
		if d.Value < 0 || d.Value > 100 || math.IsNaN(d.Value) {
			return 0, invalid("discount rate %.2f must be between 0 and 100", d.Value)
		}
		// basis points keep fractional percentages out of float rounding
		bp := int64(math.Round(d.Value * 100))
		return base * bp / 10_000, nil
	case models.DiscountAmount:
		amount := int64(math.Round(d.Value))
		if amount < 0 || amount > base {
			return 0, invalid("discount amount %d must be between 0 and %d", amount, base)
		}
		return amount, nil
	default:
		return 0, invalid("unknown discount type %q", d.Type)
	}
}

// Summary is the priced footer of a quotation.
type Summary struct {
	Subtotal       int64 `json:"subtotal"`
	AnalysisCost   int64 `json:"analysis_cost"`
	DiscountAmount int64 `json:"discount_amount"`
	Total          int64 `json:"total"`
	VAT            int64 `json:"vat"`
	GrandTotal     int64 `json:"grand_total"`
}

// Summarize applies the discount to subtotal+analysis, truncates the total to
// the rounding unit (the remainder joins the discount) and adds VAT.
func Summarize(fees Fees, subtotal, analysisCost int64, d Discount) (Summary, error) {
	if subtotal < 0 || analysisCost < 0 {
		return Summary{}, invalid("subtotal and analysis cost must not be negative")
	}
	fees = fees.WithDefaults()
	base := subtotal + analysisCost
	discount, err := d.Amount(base)
	if err != nil {
		return Summary{}, err
	}
	total := base - discount
	if rem := total % fees.RoundingUnit; rem != 0 {
		total -= rem
		discount += rem
	}
	vat := total * fees.VATPercent / 100
	return Summary{
		Subtotal:       subtotal,
		AnalysisCost:   analysisCost,
		DiscountAmount: discount,
		Total:          total,
		VAT:            vat,
		GrandTotal:     total + vat,
	}, nil
}
