package qheom

import (
	"math"
)

const (
	// SpeedOfLight in m s^-1.
	SpeedOfLight = 299792458.0
	// Hbar is the reduced Planck constant in J s.
	Hbar = 1.054571817e-34
	// Boltzmann constant in J K^-1.
	Boltzmann = 1.380649e-23

	// wavenumber converts cm^-1 to rad s^-1.
	wavenumber = 2 * math.Pi * SpeedOfLight * 100
)

// DebyeSpectralDensity returns J(ω) = 2λωωc / (ω² + ωc²).
func DebyeSpectralDensity(omega, cutoff, reorg float64) float64 {
	return 2 * reorg * omega * cutoff / (omega*omega + cutoff*cutoff)
}

// OhmicSpectralDensity returns J(ω) = (2λ/Γ(s)) (ω/ωc)^s exp(-ω/ωc), odd in ω.
// For s = 1 its small frequency limit 2λω/ωc coincides with the Debye form.
func OhmicSpectralDensity(omega, cutoff, reorg, exponent float64) float64 {
	if omega == 0 {
		return 0
	}
	if omega < 0 {
		return -OhmicSpectralDensity(-omega, cutoff, reorg, exponent)
	}
	x := omega / cutoff
	return 2 * reorg / math.Gamma(exponent) * math.Pow(x, exponent) * math.Exp(-x)
}

// Bath is a harmonic bath at a fixed temperature.
// Frequencies and the coupling strength Reorg are in rad s^-1.
type Bath struct {
	SpectralDensity SpectralDensity
	CutoffFreq      float64
	Reorg           float64
	// Exponent is only used by the Ohmic spectral density.
	Exponent    float64
	Temperature float64
}

// J evaluates the spectral density.
func (b Bath) J(omega float64) float64 {
	switch b.SpectralDensity {
	case Ohmic:
		return OhmicSpectralDensity(omega, b.CutoffFreq, b.Reorg, b.Exponent)
	default:
		return DebyeSpectralDensity(omega, b.CutoffFreq, b.Reorg)
	}
}

// ThermalFrequency returns kT/ħ in rad s^-1.
func (b Bath) ThermalFrequency() float64 {
	return Boltzmann * b.Temperature / Hbar
}

// BoseEinstein returns the occupation of a bath mode of positive frequency omega.
func (b Bath) BoseEinstein(omega float64) float64 {
	return 1 / math.Expm1(omega/b.ThermalFrequency())
}

// Rate returns the transition rate, in s^-1, of a transition that releases ħω into the bath.
// Positive omega is a downhill transition, negative omega an uphill one, and
// Rate(ω) / Rate(-ω) = exp(ħω/kT).
func (b Bath) Rate(omega float64) float64 {
	switch {
	case omega > 0:
		return 2 * math.Pi * b.J(omega) * (1 + b.BoseEinstein(omega))
	case omega < 0:
		return 2 * math.Pi * b.J(-omega) * b.BoseEinstein(-omega)
	default:
		return 2 * math.Pi * b.ThermalFrequency() * b.zeroFrequencySlope()
	}
}

// zeroFrequencySlope returns the limit of J(ω)/ω as ω → 0.
func (b Bath) zeroFrequencySlope() float64 {
	switch {
	case b.SpectralDensity != Ohmic:
		return 2 * b.Reorg / b.CutoffFreq
	case b.Exponent == 1:
		return 2 * b.Reorg / b.CutoffFreq
	default:
		return 0
	}
}
