package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCode(t *testing.T) {
	assert.Equal(t, "33", StateCode("33ABCDE1234F1Z5"))
	assert.Equal(t, "29", StateCode("29AAACB2894G1ZJ"))
	assert.Equal(t, "", StateCode(""))
	assert.Equal(t, "", StateCode("3"))
	assert.Equal(t, "12", StateCode("12"))
}

func TestCalculateIntraState(t *testing.T) {
	b := Calculate(100, 2, 18, "33", "33")

	assert.Equal(t, 200.0, b.Taxable)
	assert.Equal(t, 18.0, b.CGST)
	assert.Equal(t, 18.0, b.SGST)
	assert.Equal(t, 0.0, b.IGST)
	assert.Equal(t, 236.0, b.Total)
}

func TestCalculateInterState(t *testing.T) {
	b := Calculate(100, 2, 18, "33", "29")

	assert.Equal(t, 200.0, b.Taxable)
	assert.Equal(t, 0.0, b.CGST)
	assert.Equal(t, 0.0, b.SGST)
	assert.Equal(t, 36.0, b.IGST)
	assert.Equal(t, 236.0, b.Total)
}

func TestCalculateEmptyStatesTreatedAsEqual(t *testing.T) {
	b := Calculate(50, 1, 12, "", "")

	assert.Equal(t, 50.0, b.Taxable)
	assert.Equal(t, 3.0, b.CGST)
	assert.Equal(t, 3.0, b.SGST)
	assert.Equal(t, 0.0, b.IGST)
	assert.Equal(t, 56.0, b.Total)
}

func TestCalculateSplitIsMutuallyExclusive(t *testing.T) {
	cases := []struct {
		name         string
		seller, buyer string
	}{
		{"same state", "33", "33"},
		{"different state", "33", "07"},
		{"seller only", "33", ""},
		{"buyer only", "", "29"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Calculate(149.99, 3, 18, tc.seller, tc.buyer)
			if tc.seller == tc.buyer {
				assert.Equal(t, b.CGST, b.SGST)
				assert.Equal(t, 0.0, b.IGST)
				assert.InDelta(t, b.Taxable+2*b.CGST, b.Total, 0.011)
			} else {
				assert.Equal(t, 0.0, b.CGST)
				assert.Equal(t, 0.0, b.SGST)
				assert.InDelta(t, b.Taxable+b.IGST, b.Total, 0.011)
			}
		})
	}
}

func TestCalculateZeroQuantity(t *testing.T) {
	b := Calculate(100, 0, 18, "33", "29")

	assert.Equal(t, 0.0, b.Taxable)
	assert.Equal(t, 0.0, b.IGST)
	assert.Equal(t, 0.0, b.Total)
}

func TestCalculateZeroRate(t *testing.T) {
	b := Calculate(80, 5, 0, "33", "33")

	assert.Equal(t, 400.0, b.Taxable)
	assert.Equal(t, 0.0, b.CGST)
	assert.Equal(t, 0.0, b.SGST)
	assert.Equal(t, 400.0, b.Total)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 10.12, Round2(10.1234))
	assert.Equal(t, 0.0, Round2(0))
}
