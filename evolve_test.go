package qheom

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fumin/qheom/mat"
)

func TestInitialDensityMatrix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sites int
		pop   []int
		diag  []float64
	}{
		{sites: 2, pop: []int{1}, diag: []float64{1, 0}},
		{sites: 4, pop: []int{1}, diag: []float64{1, 0, 0, 0}},
		{sites: 4, pop: []int{1, 1, 3, 2}, diag: []float64{0.5, 0.25, 0.25, 0}},
		{sites: 3, pop: []int{3, 2}, diag: []float64{0, 0.5, 0.5}},
	}
	for _, test := range tests {
		cfg, err := NewConfig(test.sites, LinearChain, NewDephasing(LocalDephasing), WithInitSitePop(test.pop...))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		rho, err := InitialDensityMatrix(cfg)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		expected := mat.NewDense(test.sites, test.sites, nil)
		for i, v := range test.diag {
			expected.Set(i, i, complex(v, 0))
		}
		if maxDiff(rho, expected) != 0 {
			t.Fatalf("%v\n%s, expected\n%s", test.pop, rho, expected)
		}
		if rho.Trace() != 1 {
			t.Fatalf("%v", rho.Trace())
		}
	}
}

func TestEvolveSimpleUnitary(t *testing.T) {
	t.Parallel()
	for _, atomic := range []bool{true, false} {
		cfg, err := NewConfig(2, LinearChain, Dephasing{Kind: Simple, DecayRate: 0},
			WithTimeStep(5e-15), WithSteps(10), WithAtomicUnits(atomic))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		trajectory, err := Evolve(cfg)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if len(trajectory) != 10 {
			t.Fatalf("%d", len(trajectory))
		}
		if trajectory[0].Time != 0 || trajectory[0].Purity != 1 {
			t.Fatalf("%+v", trajectory[0])
		}
		for k, step := range trajectory {
			if math.Abs(step.Purity-1) > 1e-4 {
				t.Fatalf("%d %g", k, step.Purity)
			}
			if math.Abs(step.Time-float64(k)*5e-15) > 1e-30 {
				t.Fatalf("%d %g", k, step.Time)
			}
		}
		// Population starts flowing to the second site.
		if p := real(trajectory[9].Rho.At(1, 1)); p <= 0 {
			t.Fatalf("%g", p)
		}
	}
}

func TestEvolveSimpleUnitsAgree(t *testing.T) {
	t.Parallel()
	var trajectories []Trajectory
	for _, atomic := range []bool{true, false} {
		cfg, err := NewConfig(3, CyclicChain, NewDephasing(Simple), WithSteps(20), WithAtomicUnits(atomic))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		trajectory, err := Evolve(cfg)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		trajectories = append(trajectories, trajectory)
	}
	for k := range trajectories[0] {
		if d := maxDiff(trajectories[0][k].Rho, trajectories[1][k].Rho); d > 1e-12 {
			t.Fatalf("%d %g", k, d)
		}
	}
}

func TestEvolveSimpleInstability(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(2, LinearChain, Dephasing{Kind: Simple, DecayRate: 0}, WithTimeStep(1e-11), WithSteps(2000))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	_, err = Evolve(cfg)
	var instability *NumericalInstabilityError
	if !errors.As(err, &instability) {
		t.Fatalf("%+v", err)
	}
	if instability.Step <= 0 || instability.Time != float64(instability.Step)*1e-11 {
		t.Fatalf("%+v", instability)
	}
}

func TestEvolveLocalDephasingMixes(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(2, LinearChain, NewDephasing(LocalDephasing), WithTimeStep(1e-12), WithSteps(500))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	trajectory, err := Evolve(cfg)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	purities := trajectory.Purities()
	for k := 1; k < len(purities); k++ {
		if purities[k] > purities[k-1]+1e-12 {
			t.Fatalf("purity increased at %d: %g > %g", k, purities[k], purities[k-1])
		}
		if purities[k-1]-0.5 > 1e-9 && purities[k] >= purities[k-1] {
			t.Fatalf("purity not decreasing at %d: %g %g", k, purities[k], purities[k-1])
		}
		if purities[k] < 0.5-1e-9 {
			t.Fatalf("%d %g", k, purities[k])
		}
	}
	if last := purities[len(purities)-1]; math.Abs(last-0.5) > 1e-3 {
		t.Fatalf("%g", last)
	}
}

func TestEvolveGlobalThermalisingConverges(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(FMOSites, FMO, NewThermalising(GlobalThermalising), WithTimeStep(1e-14), WithSteps(1000))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	state, err := NewEngine(zerolog.Nop()).Compute(cfg)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if state.Equilibrium == nil || state.Propagator == nil || state.RelaxationSuperop == nil {
		t.Fatalf("%+v", state)
	}

	distances := make([]float64, 0, len(state.Trajectory))
	for _, step := range state.Trajectory {
		d, err := traceDistance(step.Rho, state.Equilibrium)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		distances = append(distances, d)
	}
	for k := 1; k < len(distances); k++ {
		if distances[k] > distances[k-1]+1e-9 {
			t.Fatalf("trace distance increased at %d: %g > %g", k, distances[k], distances[k-1])
		}
	}
	if distances[0] < 0.1 {
		t.Fatalf("%g", distances[0])
	}
	if last := distances[len(distances)-1]; last > 1e-2 {
		t.Fatalf("%g", last)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(3, Huckel, NewThermalising(LocalThermalising), WithSteps(50), WithInitSitePop(2))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	a, err := Compute(cfg)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	b, err := Compute(cfg)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if maxDiff(a.Propagator, b.Propagator) != 0 {
		t.Fatalf("propagators differ")
	}
	for k := range a.Trajectory {
		if maxDiff(a.Trajectory[k].Rho, b.Trajectory[k].Rho) != 0 {
			t.Fatalf("step %d differs", k)
		}
	}
}

func TestComputeErrors(t *testing.T) {
	t.Parallel()
	_, err := Compute(Config{})
	assertConfigurationError(t, err, "time_step")

	cfg := Config{
		sites:       2,
		interaction: LinearChain,
		dynamics:    Dephasing{Kind: DynamicsModel(99)},
		timeStep:    1e-15,
		steps:       2,
		initSitePop: []int{1},
	}
	_, err = Compute(cfg)
	var unsupported *UnsupportedModelError
	if !errors.As(err, &unsupported) {
		t.Fatalf("%+v", err)
	}
}

func traceDistance(a, b *mat.Dense) (float64, error) {
	d := new(mat.Dense)
	d.Sub(a, b)
	vals, err := d.HermitianEigenvalues()
	if err != nil {
		return 0, err
	}
	var s float64
	for _, v := range vals {
		s += math.Abs(v)
	}
	return s / 2, nil
}
