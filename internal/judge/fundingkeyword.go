package judge

import (
	"strings"

	"github.com/shopspring/decimal"
)

// fundingTermWeight maps a funding-vocabulary term to the fraction of the
// sub-judge's score it contributes when found in a result's title or
// description. Weights are hand-tuned: terms that name a concrete funding
// instrument ("grant", "scholarship") outweigh generic program language
// ("initiative", "programme").
var fundingTermWeight = map[string]float64{
	"grant":                     0.30,
	"call for proposals":        0.30,
	"funding":                   0.25,
	"scholarship":               0.25,
	"request for applications":  0.25,
	"fellowship":                0.20,
	"rfp":                       0.20,
	"subsidy":                   0.20,
	"endowment":                 0.20,
	"award":                     0.15,
	"tender":                    0.15,
	"donor":                     0.15,
	"philanthropy":              0.15,
	"apply now":                 0.10,
	"deadline":                  0.05,
}

// fundingKeywordScore returns a 0..1 score reflecting how strongly the
// combined title+description reads as an actual funding opportunity
// rather than incidental mention. Matches are capped at 1.0.
func fundingKeywordScore(title, description string) decimal.Decimal {
	text := strings.ToLower(title + " " + description)
	total := decimal.Zero
	for term, weight := range fundingTermWeight {
		if strings.Contains(text, term) {
			total = total.Add(decimal.NewFromFloat(weight))
		}
	}
	one := decimal.NewFromInt(1)
	if total.GreaterThan(one) {
		total = one
	}
	return total
}
