// Package analysis post-processes the trajectories of quantum systems.
package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/mat"
)

// TraceMeasure is a scalar summary of a density matrix.
type TraceMeasure int

const (
	// Squared is the purity tr(ρ²).
	Squared TraceMeasure = iota + 1
	// Distance is the trace distance to the thermal equilibrium state.
	Distance
)

func (m TraceMeasure) String() string {
	switch m {
	case Squared:
		return "squared"
	case Distance:
		return "distance"
	default:
		return fmt.Sprintf("TraceMeasure(%d)", int(m))
	}
}

// ParseTraceMeasures parses a comma separated list of "squared" and "distance".
func ParseTraceMeasures(s string) ([]TraceMeasure, error) {
	if s == "" {
		return nil, nil
	}
	var ms []TraceMeasure
	for _, f := range strings.Split(s, ",") {
		switch strings.TrimSpace(f) {
		case "squared":
			ms = append(ms, Squared)
		case "distance":
			ms = append(ms, Distance)
		default:
			return nil, errors.Errorf("unknown trace measure %q", f)
		}
	}
	return ms, nil
}

// TraceDistance returns ½ tr|a - b| for Hermitian a and b.
func TraceDistance(a, b *mat.Dense) (float64, error) {
	d := new(mat.Dense)
	d.Sub(a, b)
	vals, err := d.HermitianEigenvalues()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	for i, v := range vals {
		vals[i] = math.Abs(v)
	}
	return floats.Sum(vals) / 2, nil
}

// TraceDistanceSeries returns the trace distance between every step of the trajectory and the thermal equilibrium state.
func TraceDistanceSeries(state *qheom.State) ([]float64, error) {
	if state.Equilibrium == nil {
		return nil, errors.Errorf("no thermal equilibrium state for dynamics model %s", state.Config.DynamicsModel())
	}
	distances := make([]float64, 0, len(state.Trajectory))
	for k, step := range state.Trajectory {
		d, err := TraceDistance(step.Rho, state.Equilibrium)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("step %d", k))
		}
		distances = append(distances, d)
	}
	return distances, nil
}

// IntegrateTraceDistance returns the time integral, in s, of the trace distance to equilibrium.
func IntegrateTraceDistance(state *qheom.State) (float64, error) {
	if len(state.Trajectory) < 2 {
		return 0, errors.Errorf("need at least 2 steps, got %d", len(state.Trajectory))
	}
	distances, err := TraceDistanceSeries(state)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return integrate.Trapezoidal(state.Trajectory.Times(), distances), nil
}

// FitDecayRate fits values ≈ A·exp(-rate·t) by linear regression on log(values),
// ignoring values at or below floor.
func FitDecayRate(times, values []float64, floor float64) (float64, error) {
	if len(times) != len(values) {
		return 0, errors.Errorf("%d times %d values", len(times), len(values))
	}
	var x, y []float64
	for i, v := range values {
		if v <= floor {
			continue
		}
		x = append(x, times[i])
		y = append(y, math.Log(v))
	}
	if len(x) < 2 {
		return 0, errors.Errorf("only %d values above %g", len(x), floor)
	}
	_, slope := stat.LinearRegression(x, y, nil, false)
	return -slope, nil
}

// Series is a named time series.
type Series struct {
	Name   string
	Values []float64
}

// Dynamics extracts the time series of the selected elements and trace measures from a computed state.
// Diagonal elements report their real part, off-diagonal elements the requested coherences.
func Dynamics(state *qheom.State, elements []Element, coherences []Coherence, measures []TraceMeasure) ([]Series, error) {
	sites := state.Config.Sites()
	var series []Series
	for _, e := range elements {
		if e.Row < 1 || e.Row > sites || e.Col < 1 || e.Col > sites {
			return nil, errors.Errorf("element %s is outside %d sites", e, sites)
		}
		amplitudes := state.Trajectory.Element(e.Row-1, e.Col-1)
		if e.Diagonal() {
			series = append(series, Series{Name: "ρ" + e.String(), Values: realParts(amplitudes)})
			continue
		}
		for _, c := range coherences {
			switch c {
			case Real:
				series = append(series, Series{Name: "Re(ρ" + e.String() + ")", Values: realParts(amplitudes)})
			case Imag:
				series = append(series, Series{Name: "Im(ρ" + e.String() + ")", Values: imagParts(amplitudes)})
			}
		}
	}

	for _, m := range measures {
		switch m {
		case Squared:
			series = append(series, Series{Name: "tr(ρ²)", Values: state.Trajectory.Purities()})
		case Distance:
			distances, err := TraceDistanceSeries(state)
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			series = append(series, Series{Name: "½tr|ρ-ρeq|", Values: distances})
		default:
			return nil, errors.Errorf("unknown trace measure %s", m)
		}
	}
	return series, nil
}

// Asymptote returns the series constant at 1/N, the site population of a fully mixed state.
func Asymptote(state *qheom.State) Series {
	values := make([]float64, len(state.Trajectory))
	for i := range values {
		values[i] = 1 / float64(state.Config.Sites())
	}
	return Series{Name: "1/N", Values: values}
}

// CheckComparable returns an error unless all configs share the number of sites, steps and time step.
func CheckComparable(configs []qheom.Config) error {
	if len(configs) == 0 {
		return errors.Errorf("no systems")
	}
	first := configs[0]
	for i, c := range configs[1:] {
		switch {
		case c.Sites() != first.Sites():
			return errors.Errorf("system %d has %d sites, expected %d", i+1, c.Sites(), first.Sites())
		case c.Steps() != first.Steps():
			return errors.Errorf("system %d has %d steps, expected %d", i+1, c.Steps(), first.Steps())
		case c.TimeStep() != first.TimeStep():
			return errors.Errorf("system %d has time step %g, expected %g", i+1, c.TimeStep(), first.TimeStep())
		}
	}
	return nil
}

func realParts(zs []complex128) []float64 {
	xs := make([]float64, len(zs))
	for i, z := range zs {
		xs[i] = real(z)
	}
	return xs
}

func imagParts(zs []complex128) []float64 {
	xs := make([]float64, len(zs))
	for i, z := range zs {
		xs[i] = imag(z)
	}
	return xs
}
