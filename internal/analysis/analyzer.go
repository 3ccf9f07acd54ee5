// Package analysis turns raw property figures into an offer ceiling and a letter rank.
package analysis

import (
	"math"

	"github.com/shopspring/decimal"

	"quickflip/server/internal/models"
)

// MAOFactor is the share of ARV an investor should pay before repairs (the 70% rule).
const MAOFactor = 0.70

type threshold struct {
	rank        models.Rank
	minSpread   float64
	minDiscount float64
}

// Checked top-down; the first satisfied row wins.
var rankThresholds = []threshold{
	{rank: models.RankA, minSpread: 30000, minDiscount: 25},
	{rank: models.RankB, minSpread: 15000, minDiscount: 20},
	{rank: models.RankC, minSpread: 5000, minDiscount: 10},
}

// Analyze computes the deal metrics for a property. It has no side effects and
// returns identical output for identical input.
func Analyze(p models.Property) models.Analysis {
	arv := p.ARVOrZero()
	repair := p.RepairCostOrZero()
	asking := p.AskingPrice

	mao := math.Max(0, MAOFactor*arv-repair)
	spread := math.Max(0, mao-asking)
	discount := 0.0
	if arv > 0 {
		discount = (1 - asking/arv) * 100
	}

	return models.Analysis{
		ARV:               arv,
		RepairCost:        repair,
		AskingPrice:       asking,
		MaxAllowableOffer: Round2(mao),
		ProjectedSpread:   Round2(spread),
		DiscountPct:       Round2(discount),
		Rank:              RankFor(spread, discount),
	}
}

// RankFor grades a deal from its unrounded spread and discount percentage.
func RankFor(spread, discountPct float64) models.Rank {
	for _, t := range rankThresholds {
		if spread >= t.minSpread && discountPct >= t.minDiscount {
			return t.rank
		}
	}
	return models.RankD
}

// exactExponent is below the smallest float64 exponent, so conversion keeps every binary digit.
const exactExponent = -1100

// Round2 rounds a monetary or percentage value to two decimal places. Ties go to
// the even digit and are judged on the exact binary value, so 2.675 (stored just
// below the tie) becomes 2.67.
func Round2(v float64) float64 {
	return decimal.NewFromFloatWithExponent(v, exactExponent).RoundBank(2).InexactFloat64()
}
