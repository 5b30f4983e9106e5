package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"50", "$50.00"},
		{"1234.56", "$1,234.56"},
		{"10000", "$10,000.00"},
		{"612.345", "$612.35"},
		{"0.004", "$0.00"},
		{"1234567.8", "$1,234,567.80"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(decimal.RequireFromString(tt.in)))
		})
	}
}
