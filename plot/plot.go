// Package plot draws terminal figures of the dynamics and spectral densities of quantum systems.
package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/analysis"
)

// Options controls the size of a figure in terminal cells.
type Options struct {
	Height int
	Width  int
}

// DefaultOptions fits a figure in an 80 column terminal.
var DefaultOptions = Options{Height: 15, Width: 70}

var modelLabels = map[qheom.DynamicsModel]string{
	qheom.Simple:             "Simple",
	qheom.LocalDephasing:     "Local Deph.",
	qheom.LocalThermalising:  "Local Therm.",
	qheom.GlobalThermalising: "Global Therm.",
}

var palette = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
	asciigraph.Gray,
}

// DynamicsArgs selects what a dynamics figure shows.
type DynamicsArgs struct {
	Elements   []analysis.Element
	Coherences []analysis.Coherence
	Measures   []analysis.TraceMeasure
	// Asymptote draws the 1/N line of a fully mixed state.
	Asymptote bool
}

// Dynamics plots the selected elements and trace measures of one or more computed systems against time.
// Systems plotted together must share the number of sites, steps and time step.
func Dynamics(states []*qheom.State, args DynamicsArgs, opt Options) (string, error) {
	if len(states) == 0 {
		return "", errors.Errorf("no systems to plot")
	}
	configs := make([]qheom.Config, 0, len(states))
	for _, s := range states {
		configs = append(configs, s.Config)
	}
	if err := analysis.CheckComparable(configs); err != nil {
		return "", errors.Wrap(err, "")
	}

	var data [][]float64
	var legends []string
	multiple := len(states) > 1
	for _, state := range states {
		series, err := analysis.Dynamics(state, args.Elements, args.Coherences, args.Measures)
		if err != nil {
			return "", errors.Wrap(err, "")
		}
		for _, s := range series {
			data = append(data, s.Values)
			legends = append(legends, legend(s.Name, state.Config, multiple))
		}
	}
	if args.Asymptote {
		a := analysis.Asymptote(states[0])
		data = append(data, a.Values)
		legends = append(legends, a.Name)
	}
	if len(data) == 0 {
		return "", errors.Errorf("nothing to plot")
	}

	lower, upper := bounds(analysis.TypeOf(args.Elements))
	last := states[0].Trajectory[len(states[0].Trajectory)-1].Time
	caption := fmt.Sprintf("%s over 0-%.0f fs", yLabel(args.Elements), last*1e15)
	return asciigraph.PlotMany(data,
		asciigraph.Height(opt.Height),
		asciigraph.Width(opt.Width),
		asciigraph.LowerBound(lower),
		asciigraph.UpperBound(upper),
		asciigraph.SeriesColors(colors(len(data))...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(caption),
	), nil
}

// SpectralDensity plots J(ω) of each thermalising system over [0, 10ωc) in steps of ωc/100.
// Frequencies and J(ω) are in rad ps^-1.
func SpectralDensity(configs []qheom.Config, opt Options) (string, error) {
	if len(configs) == 0 {
		return "", errors.Errorf("no systems to plot")
	}
	var data [][]float64
	var legends []string
	var maxFreq float64
	for i, cfg := range configs {
		bath, ok := cfg.Bath()
		if !ok {
			return "", errors.Errorf("system %d: no spectral density for dynamics model %s", i, cfg.DynamicsModel())
		}
		freqs, js := SpectralDensitySamples(bath)
		floats.Scale(1e-12, js)
		data = append(data, js)
		legends = append(legends, fmt.Sprintf("%s (ωc=%.3g rad/ps)", bath.SpectralDensity, bath.CutoffFreq*1e-12))
		maxFreq = max(maxFreq, floats.Max(freqs)*1e-12)
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(opt.Height),
		asciigraph.Width(opt.Width),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(colors(len(data))...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("J(ω) / rad ps^-1 over ω in 0-%.3g rad ps^-1", maxFreq)),
	), nil
}

// SpectralDensitySamples evaluates the spectral density of bath over [0, 10ωc) in steps of ωc/100.
func SpectralDensitySamples(bath qheom.Bath) (freqs, js []float64) {
	const samples = 1000
	step := bath.CutoffFreq / 100
	freqs = make([]float64, samples)
	js = make([]float64, samples)
	for i := range samples {
		freqs[i] = float64(i) * step
		js[i] = bath.J(freqs[i])
	}
	return freqs, js
}

func legend(name string, cfg qheom.Config, multiple bool) string {
	if !multiple {
		return name
	}
	if spectral, ok := cfg.SpectralDensity(); ok {
		return fmt.Sprintf("%s (%s, %s)", name, modelLabels[cfg.DynamicsModel()], spectral)
	}
	return fmt.Sprintf("%s (%s)", name, modelLabels[cfg.DynamicsModel()])
}

func bounds(t analysis.ElementType) (float64, float64) {
	switch t {
	case analysis.BothElements:
		return -0.5, 1
	case analysis.OffDiagonals:
		return -0.5, 0.5
	default:
		return 0, 1
	}
}

func yLabel(elements []analysis.Element) string {
	switch analysis.TypeOf(elements) {
	case analysis.BothElements:
		return "amplitude"
	case analysis.Diagonals:
		return "site population"
	case analysis.OffDiagonals:
		return "coherences"
	default:
		return "trace measure"
	}
}

func colors(n int) []asciigraph.AnsiColor {
	cs := make([]asciigraph.AnsiColor, n)
	for i := range cs {
		cs[i] = palette[i%len(palette)]
	}
	return cs
}
