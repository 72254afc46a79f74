package qheom

import (
	"fmt"
	"math"
	"testing"
)

func TestDetailedBalance(t *testing.T) {
	t.Parallel()
	baths := []Bath{
		{SpectralDensity: Debye, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Temperature: 298},
		{SpectralDensity: Debye, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Temperature: 77},
		{SpectralDensity: Ohmic, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Exponent: 1, Temperature: 298},
		{SpectralDensity: Ohmic, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Exponent: 3, Temperature: 150},
	}
	for _, bath := range baths {
		t.Run(fmt.Sprintf("%s %g", bath.SpectralDensity, bath.Temperature), func(t *testing.T) {
			t.Parallel()
			wT := bath.ThermalFrequency()
			for _, omega := range []float64{1e10, 1e12, 5e12, 3e13, 8e13} {
				down, up := bath.Rate(omega), bath.Rate(-omega)
				if down <= 0 || up <= 0 {
					t.Fatalf("%g %g %g", omega, down, up)
				}
				ratio := down / up
				expected := math.Exp(omega / wT)
				if math.Abs(ratio/expected-1) > 1e-9 {
					t.Fatalf("%g %g, expected %g", omega, ratio, expected)
				}
			}
		})
	}
}

func TestRateZeroFrequency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		bath Bath
		zero float64
	}{
		{
			bath: Bath{SpectralDensity: Debye, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Temperature: 298},
			zero: 2 * math.Pi * (Boltzmann * 298 / Hbar) * 2 * DefaultScaleFactor / DefaultCutoffFreq,
		},
		{
			bath: Bath{SpectralDensity: Ohmic, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Exponent: 1, Temperature: 298},
			zero: 2 * math.Pi * (Boltzmann * 298 / Hbar) * 2 * DefaultScaleFactor / DefaultCutoffFreq,
		},
		{
			bath: Bath{SpectralDensity: Ohmic, CutoffFreq: DefaultCutoffFreq, Reorg: DefaultScaleFactor, Exponent: 2, Temperature: 298},
			zero: 0,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %g", test.bath.SpectralDensity, test.bath.Exponent), func(t *testing.T) {
			t.Parallel()
			zero := test.bath.Rate(0)
			if math.Abs(zero-test.zero) > 1e-12*math.Max(1, test.zero) {
				t.Fatalf("%g, expected %g", zero, test.zero)
			}
			// The rate is continuous at zero frequency.
			scale := 2 * math.Pi * test.bath.ThermalFrequency() * 2 * test.bath.Reorg / test.bath.CutoffFreq
			for _, omega := range []float64{1e6, -1e6} {
				near := test.bath.Rate(omega)
				if math.Abs(near-zero) > 1e-6*scale {
					t.Fatalf("%g %g, expected %g", omega, near, zero)
				}
			}
		})
	}
}

func TestSpectralDensity(t *testing.T) {
	t.Parallel()
	const cutoff, reorg = 2.0, 3.0
	if j := DebyeSpectralDensity(cutoff, cutoff, reorg); math.Abs(j-reorg) > 1e-15 {
		t.Fatalf("%g", j)
	}
	if j := DebyeSpectralDensity(0, cutoff, reorg); j != 0 {
		t.Fatalf("%g", j)
	}
	if j := OhmicSpectralDensity(cutoff, cutoff, reorg, 1); math.Abs(j-2*reorg/math.E) > 1e-15 {
		t.Fatalf("%g", j)
	}
	if j := OhmicSpectralDensity(-cutoff, cutoff, reorg, 2); math.Abs(j+2*reorg/math.E) > 1e-15 {
		t.Fatalf("%g", j)
	}
}
