package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateShare(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		percentage string
		expected   string
	}{
		{"sixty percent of a thousand", "1000.00", "60.00", "600.00"},
		{"forty percent of a thousand", "1000.00", "40.00", "400.00"},
		{"third of a hundred", "100.00", "33.33", "33.33"},
		{"remainder of a hundred", "100.00", "33.34", "33.34"},
		{"half cent rounds up", "0.05", "50.00", "0.03"},
		{"third of ten", "10.00", "33.33", "3.33"},
		{"zero percentage", "123.45", "0", "0.00"},
		{"whole amount", "123.45", "100", "123.45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateShare(dec(tt.amount), dec(tt.percentage))
			assert.True(t, got.Equal(dec(tt.expected)), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestCalculateShare_IsDeterministic(t *testing.T) {
	first := CalculateShare(dec("987.65"), dec("12.34"))
	second := CalculateShare(dec("987.65"), dec("12.34"))
	assert.True(t, first.Equal(second))
}

func TestCalculateShare_IndependentRoundingMayNotReconcile(t *testing.T) {
	amount := dec("0.10")
	shares := []decimal.Decimal{
		CalculateShare(amount, dec("33.33")),
		CalculateShare(amount, dec("33.33")),
		CalculateShare(amount, dec("33.34")),
	}
	total := shares[0].Add(shares[1]).Add(shares[2])
	assert.True(t, total.Equal(dec("0.09")), "got %s", total)
}

func TestSumsToWhole(t *testing.T) {
	tests := []struct {
		name        string
		percentages []string
		expected    bool
	}{
		{"sixty forty", []string{"60.00", "40.00"}, true},
		{"three way", []string{"33.33", "33.33", "33.34"}, true},
		{"single party", []string{"100"}, true},
		{"short by a cent", []string{"60.00", "39.99"}, false},
		{"over by a cent", []string{"60.00", "40.01"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percentages := make([]decimal.Decimal, len(tt.percentages))
			for i, p := range tt.percentages {
				percentages[i] = dec(p)
			}
			assert.Equal(t, tt.expected, SumsToWhole(percentages))
		})
	}
}

func TestPercentageChecks(t *testing.T) {
	assert.True(t, IsPercentageInRange(dec("0")))
	assert.True(t, IsPercentageInRange(dec("100")))
	assert.False(t, IsPercentageInRange(dec("-0.01")))
	assert.False(t, IsPercentageInRange(dec("100.01")))

	assert.True(t, HasPercentagePrecision(dec("33.33")))
	assert.True(t, HasPercentagePrecision(dec("50")))
	assert.False(t, HasPercentagePrecision(dec("33.333")))
}
