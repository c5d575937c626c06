// Package judge implements MetadataJudge: scoring a SearchResult's title,
// description, and URL against four independent sub-judges, with no
// network I/O, grounded on internal/scheduler/dod.go's shape of reducing
// several independent checks to one aggregate result.
package judge

import "github.com/shopspring/decimal"

// Weights controls how the four sub-judges combine into one composite
// score. All four default to 0.25 (equal weighting) per spec.md §9's
// resolved open question; an operator may reweight them as long as they
// still sum to 1.00 within a small tolerance.
type Weights struct {
	FundingKeyword decimal.Decimal
	Credibility    decimal.Decimal
	Geography      decimal.Decimal
	OrgType        decimal.Decimal
}

// DefaultWeights returns the equal-weighting default.
func DefaultWeights() Weights {
	quarter := decimal.NewFromFloat(0.25)
	return Weights{
		FundingKeyword: quarter,
		Credibility:    quarter,
		Geography:      quarter,
		OrgType:        quarter,
	}
}

var weightTolerance = decimal.NewFromFloat(0.01)

// ValidateWeights checks that the four weights sum to 1.00 within ±0.01,
// as required by spec.md §9's resolution of the judge-weighting open
// question.
func ValidateWeights(w Weights) error {
	sum := w.FundingKeyword.Add(w.Credibility).Add(w.Geography).Add(w.OrgType)
	diff := sum.Sub(decimal.NewFromInt(1)).Abs()
	if diff.GreaterThan(weightTolerance) {
		return &WeightError{Sum: sum}
	}
	return nil
}

// WeightError reports an invalid weight configuration.
type WeightError struct {
	Sum decimal.Decimal
}

func (e *WeightError) Error() string {
	return "judge: weights must sum to 1.00 ±0.01, got " + e.Sum.String()
}
