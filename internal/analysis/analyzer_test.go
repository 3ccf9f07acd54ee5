package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"quickflip/server/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		property models.Property
		expected models.Analysis
	}{
		{
			name:     "Rank B when spread misses the A threshold",
			property: models.Property{AskingPrice: 100000, ARV: ptr(200000), RepairCost: ptr(20000)},
			expected: models.Analysis{
				ARV:               200000,
				RepairCost:        20000,
				AskingPrice:       100000,
				MaxAllowableOffer: 120000,
				ProjectedSpread:   20000,
				DiscountPct:       50,
				Rank:              models.RankB,
			},
		},
		{
			name:     "Missing ARV is treated as zero",
			property: models.Property{AskingPrice: 50000, RepairCost: ptr(0)},
			expected: models.Analysis{AskingPrice: 50000, Rank: models.RankD},
		},
		{
			name:     "Missing repair cost is treated as zero",
			property: models.Property{AskingPrice: 100000, ARV: ptr(300000)},
			expected: models.Analysis{
				ARV:               300000,
				AskingPrice:       100000,
				MaxAllowableOffer: 210000,
				ProjectedSpread:   110000,
				DiscountPct:       66.67,
				Rank:              models.RankA,
			},
		},
		{
			name:     "Repairs larger than the 70% ceiling clamp MAO to zero",
			property: models.Property{AskingPrice: 10000, ARV: ptr(100000), RepairCost: ptr(90000)},
			expected: models.Analysis{
				ARV:         100000,
				RepairCost:  90000,
				AskingPrice: 10000,
				DiscountPct: 90,
				Rank:        models.RankD,
			},
		},
		{
			name:     "Asking above ARV gives a negative discount",
			property: models.Property{AskingPrice: 250000, ARV: ptr(200000), RepairCost: ptr(0)},
			expected: models.Analysis{
				ARV:               200000,
				AskingPrice:       250000,
				MaxAllowableOffer: 140000,
				DiscountPct:       -25,
				Rank:              models.RankD,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Analyze(tt.property))
		})
	}
}

func TestAnalyze_NeverNegative(t *testing.T) {
	values := []float64{0, 1, 999.99, 5000, 70000, 150000, 1e6}
	for _, arv := range values {
		for _, repair := range values {
			for _, asking := range values {
				a := Analyze(models.Property{AskingPrice: asking, ARV: ptr(arv), RepairCost: ptr(repair)})
				assert.GreaterOrEqual(t, a.MaxAllowableOffer, 0.0)
				assert.GreaterOrEqual(t, a.ProjectedSpread, 0.0)
			}
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	p := models.Property{AskingPrice: 123456.78, ARV: ptr(345678.9), RepairCost: ptr(12345.6)}
	assert.Equal(t, Analyze(p), Analyze(p))
}

func TestRankFor_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		spread   float64
		discount float64
		expected models.Rank
	}{
		{"A at exact thresholds", 30000, 25, models.RankA},
		{"B when discount just below A", 30000, 24.99, models.RankB},
		{"B at exact thresholds", 15000, 20, models.RankB},
		{"C at exact thresholds", 5000, 10, models.RankC},
		{"D when spread just below C", 4999.99, 50, models.RankD},
		{"D when discount just below C", 100000, 9.99, models.RankD},
		{"D for zero deal", 0, 0, models.RankD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RankFor(tt.spread, tt.discount))
		})
	}
}

func TestRankFor_Monotonic(t *testing.T) {
	spreads := []float64{0, 4999, 5000, 14999, 15000, 29999, 30000, 80000}
	discounts := []float64{0, 9, 10, 19, 20, 24, 25, 60}

	for _, d := range discounts {
		for i := 1; i < len(spreads); i++ {
			lower := RankFor(spreads[i-1], d)
			higher := RankFor(spreads[i], d)
			assert.True(t, higher.AtLeast(lower), "spread %v -> %v at discount %v", spreads[i-1], spreads[i], d)
		}
	}
	for _, s := range spreads {
		for i := 1; i < len(discounts); i++ {
			lower := RankFor(s, discounts[i-1])
			higher := RankFor(s, discounts[i])
			assert.True(t, higher.AtLeast(lower), "discount %v -> %v at spread %v", discounts[i-1], discounts[i], s)
		}
	}
}

func TestRankFor_UsesUnroundedValues(t *testing.T) {
	// 4999.996 rounds to 5000.00 for display but must not earn a C.
	assert.Equal(t, models.RankD, RankFor(4999.996, 50))
	assert.Equal(t, 5000.0, Round2(4999.996))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 1234.57, Round2(1234.5678))
}

func TestRound2_Ties(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.675, 2.67},
		{1.005, 1.0},
		{0.125, 0.12},
		{0.375, 0.38},
		{-0.125, -0.12},
		{50.0, 50.0},
		{49.9935, 49.99},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}
