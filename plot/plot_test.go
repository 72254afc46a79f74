package plot

import (
	"math"
	"strings"
	"testing"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/analysis"
)

func TestDynamics(t *testing.T) {
	t.Parallel()
	var states []*qheom.State
	for _, d := range []qheom.Dynamics{qheom.NewDephasing(qheom.LocalDephasing), qheom.NewThermalising(qheom.GlobalThermalising)} {
		cfg, err := qheom.NewConfig(2, qheom.LinearChain, d, qheom.WithSteps(50))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		state, err := qheom.Compute(cfg)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		states = append(states, state)
	}
	elements, err := analysis.ParseElements(2, "diagonals")
	if err != nil {
		t.Fatalf("%+v", err)
	}

	fig, err := Dynamics(states, DynamicsArgs{Elements: elements, Asymptote: true}, DefaultOptions)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for _, s := range []string{"ρ11 (Local Deph.)", "ρ22 (Global Therm., debye)", "1/N", "site population"} {
		if !strings.Contains(fig, s) {
			t.Fatalf("%q not in\n%s", s, fig)
		}
	}

	// Trace distance is undefined for the dephasing system.
	args := DynamicsArgs{Measures: []analysis.TraceMeasure{analysis.Distance}}
	if _, err := Dynamics(states, args, DefaultOptions); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDynamicsIncomparable(t *testing.T) {
	t.Parallel()
	var states []*qheom.State
	for _, steps := range []int{10, 20} {
		cfg, err := qheom.NewConfig(2, qheom.LinearChain, qheom.NewDephasing(qheom.LocalDephasing), qheom.WithSteps(steps))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		state, err := qheom.Compute(cfg)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		states = append(states, state)
	}
	args := DynamicsArgs{Measures: []analysis.TraceMeasure{analysis.Squared}}
	if _, err := Dynamics(states, args, DefaultOptions); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSpectralDensity(t *testing.T) {
	t.Parallel()
	debye, err := qheom.NewConfig(2, qheom.LinearChain, qheom.NewThermalising(qheom.LocalThermalising))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	ohmic, err := debye.WithSpectralDensity(qheom.Ohmic)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	fig, err := SpectralDensity([]qheom.Config{debye, ohmic}, DefaultOptions)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !strings.Contains(fig, "debye") || !strings.Contains(fig, "ohmic") {
		t.Fatalf("%s", fig)
	}

	dephasing, err := qheom.NewConfig(2, qheom.LinearChain, qheom.NewDephasing(qheom.LocalDephasing))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := SpectralDensity([]qheom.Config{dephasing}, DefaultOptions); err == nil {
		t.Fatalf("expected error for the local dephasing model")
	}
}

func TestSpectralDensitySamples(t *testing.T) {
	t.Parallel()
	bath := qheom.NewThermalising(qheom.GlobalThermalising).Bath()
	freqs, js := SpectralDensitySamples(bath)
	if len(freqs) != 1000 || freqs[0] != 0 {
		t.Fatalf("%d %g", len(freqs), freqs[0])
	}
	if last := freqs[len(freqs)-1]; last >= 10*bath.CutoffFreq {
		t.Fatalf("%g", last)
	}
	// The Debye spectral density peaks at the cutoff frequency with value λ.
	if math.Abs(js[100]-bath.Reorg) > 1e-9*bath.Reorg {
		t.Fatalf("%g %g", js[100], bath.Reorg)
	}
}
