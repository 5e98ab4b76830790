package notation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUnits(t *testing.T) {
	assert := assert.New(t)

	units, err := ToUnits(0.5, 120)
	assert.NoError(err)
	assert.InDelta(2.0, units, 1e-9)

	units, err = ToUnits(0, 90)
	assert.NoError(err)
	assert.Equal(0.0, units)

	_, err = ToUnits(1.0, 0)
	assert.ErrorIs(err, ErrInvalidTempo)

	_, err = ToUnits(1.0, -60)
	assert.ErrorIs(err, ErrInvalidTempo)
}

func TestQuantizeIdempotentOnCanonicalValues(t *testing.T) {
	for _, c := range canonicalDurations {
		t.Run(fmt.Sprintf("canonical %d", c), func(t *testing.T) {
			if got := Quantize(float64(c)); got != c {
				t.Errorf("Quantize(%d) = %d, want unchanged", c, got)
			}
		})
	}
}

func TestQuantizeTiesPreferSmaller(t *testing.T) {
	cases := []struct {
		units float64
		want  Duration
	}{
		{2.5, 2},  // midway between 2 and 3
		{3.5, 3},  // midway between 3 and 4
		{5, 4},    // midway between 4 and 6
		{7, 6},    // midway between 6 and 8
		{10, 8},   // midway between 8 and 12
		{14, 12},  // midway between 12 and 16
		{20, 16},  // midway between 16 and 24
		{28, 24},  // midway between 24 and 32
	}
	for _, tc := range cases {
		if got := Quantize(tc.units); got != tc.want {
			t.Errorf("Quantize(%v) = %d, want %d", tc.units, got, tc.want)
		}
	}
}

func TestQuantizeClampsTinyDurations(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Duration(1), Quantize(0.49))
	assert.Equal(Duration(1), Quantize(0.01))
	assert.Equal(Duration(1), Quantize(0.5))
	assert.Equal(Duration(1), Quantize(1.4))
}

func TestQuantizeNearest(t *testing.T) {
	cases := []struct {
		units float64
		want  Duration
	}{
		{1.9, 2},
		{2.6, 3},
		{4.9, 4},
		{5.1, 6},
		{30, 32},
		{100, 32},
	}
	for _, tc := range cases {
		if got := Quantize(tc.units); got != tc.want {
			t.Errorf("Quantize(%v) = %d, want %d", tc.units, got, tc.want)
		}
	}
}

func TestDecomposeGapGreedyLargestFirst(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(DecomposeGap(0))
	assert.Nil(DecomposeGap(0.4))
	assert.Equal([]Duration{1}, DecomposeGap(0.6))
	assert.Equal([]Duration{4, 1}, DecomposeGap(5))
	assert.Equal([]Duration{6, 1}, DecomposeGap(7))
	assert.Equal([]Duration{32, 8, 2}, DecomposeGap(42))
	assert.Equal([]Duration{8, 1, 1}, DecomposeGap(9.5))
}

func TestDecomposeGapSumsToRoundedGap(t *testing.T) {
	for gap := 1; gap <= 100; gap++ {
		total := 0
		for _, d := range DecomposeGap(float64(gap)) {
			if !d.IsCanonical() {
				t.Fatalf("gap %d produced non-canonical rest %d", gap, d)
			}
			total += int(d)
		}
		if total != gap {
			t.Errorf("gap %d decomposed to %d units", gap, total)
		}
	}
}
