package qheom

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fumin/qheom/mat"
	"github.com/fumin/qheom/util"
)

const (
	// traceTolerance bounds |tr ρ - 1| along a trajectory.
	traceTolerance = 1e-6
	// hermitianTolerance bounds max|ρ - ρ†| relative to the largest element of ρ.
	hermitianTolerance = 1e-6
)

// Engine evolves quantum systems, logging progress to its logger.
type Engine struct {
	log      zerolog.Logger
	progress time.Duration
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log:      log.With().Str("component", "engine").Logger(),
		progress: 5 * time.Second,
	}
}

// Compute builds every quantity derived from cfg and evolves the initial density matrix.
// The propagator exp(L·dt) is computed once and applied at every step.
func (e *Engine) Compute(cfg Config) (*State, error) {
	if !positive(cfg.timeStep) {
		return nil, configErrorf("time_step", "%g s is not positive", cfg.timeStep)
	}
	if cfg.steps < 1 {
		return nil, configErrorf("steps", "%d is not positive", cfg.steps)
	}
	if model := cfg.DynamicsModel(); !slices.Contains(DynamicsModels, model) {
		return nil, unsupported(model)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	state := &State{Config: cfg}
	var err error
	if state.Hamiltonian, err = BuildHamiltonian(cfg.Sites(), cfg.Interaction()); err != nil {
		return nil, err
	}
	state.HamiltonianSuperop = HamiltonianSuperoperator(state.Hamiltonian)
	if state.Initial, err = InitialDensityMatrix(cfg); err != nil {
		return nil, err
	}
	if bath, ok := cfg.Bath(); ok {
		if state.Equilibrium, err = thermalState(state.Hamiltonian, bath); err != nil {
			return nil, err
		}
	}

	var step func(*mat.Dense) *mat.Dense
	switch cfg.DynamicsModel() {
	case Simple:
		decay, _ := cfg.DecayRate()
		step = simpleStep(state.Hamiltonian, cfg.Hbar(), cfg.TimeStep(), decay)
	default:
		if state.RelaxationSuperop, err = BuildSuperoperator(cfg, state.Hamiltonian); err != nil {
			return nil, err
		}
		generator := new(mat.Dense)
		generator.Add(state.HamiltonianSuperop, state.RelaxationSuperop)
		generator.Scale(complex(cfg.TimeStep(), 0), generator)
		state.Propagator = new(mat.Dense)
		state.Propagator.Exp(generator)
		step = propagate(state.Propagator)
	}
	e.log.Debug().
		Int("sites", cfg.Sites()).
		Str("interaction", cfg.Interaction().String()).
		Str("dynamics", cfg.DynamicsModel().String()).
		Dur("setup", time.Since(start)).
		Msg("built operators")

	if state.Trajectory, err = e.evolve(cfg, state.Initial, step); err != nil {
		return nil, err
	}
	last := state.Trajectory[len(state.Trajectory)-1]
	e.log.Info().
		Int("steps", cfg.Steps()).
		Float64("final_purity", last.Purity).
		Dur("elapsed", time.Since(start)).
		Msg("evolved")
	return state, nil
}

// Evolve returns the trajectory of cfg, whose first step is the initial density matrix at time zero.
func (e *Engine) Evolve(cfg Config) (Trajectory, error) {
	state, err := e.Compute(cfg)
	if err != nil {
		return nil, err
	}
	return state.Trajectory, nil
}

// Compute is Engine.Compute without logging.
func Compute(cfg Config) (*State, error) {
	return NewEngine(zerolog.Nop()).Compute(cfg)
}

// Evolve is Engine.Evolve without logging.
func Evolve(cfg Config) (Trajectory, error) {
	return NewEngine(zerolog.Nop()).Evolve(cfg)
}

func (e *Engine) evolve(cfg Config, initial *mat.Dense, step func(*mat.Dense) *mat.Dense) (Trajectory, error) {
	dt := cfg.TimeStep()
	trajectory := make(Trajectory, 0, cfg.Steps())
	throttle := util.NewSkipThrottler(e.progress)

	rho := initial
	for k := range cfg.Steps() {
		if k > 0 {
			rho = step(rho)
		}
		t := float64(k) * dt
		if err := checkDensityMatrix(k, t, rho); err != nil {
			return nil, err
		}
		trajectory = append(trajectory, Step{Time: t, Rho: rho, Purity: Purity(rho)})

		if throttle.Ok() {
			e.log.Info().Int("step", k).Int("steps", cfg.Steps()).Msg("evolving")
		}
	}
	return trajectory, nil
}

func propagate(propagator *mat.Dense) func(*mat.Dense) *mat.Dense {
	return func(rho *mat.Dense) *mat.Dense {
		n := rho.Rows()
		return mat.Unvec(propagator.MulVec(mat.Vec(rho)), n, n)
	}
}

// simpleStep returns ρ ↦ ρ - (i·dt/ħ)[ħH, ρ] - dt·Γ·ρ_offdiag, where H is in rad s^-1.
func simpleStep(hamiltonian *mat.Dense, hbar, dt, decay float64) func(*mat.Dense) *mat.Dense {
	energy := new(mat.Dense)
	energy.Scale(complex(hbar, 0), hamiltonian)
	return func(rho *mat.Dense) *mat.Dense {
		unitary := mat.Commutator(energy, rho)
		unitary.Scale(complex(0, dt/hbar), unitary)

		dephase := rho.Clone()
		for i := range rho.Rows() {
			dephase.Set(i, i, 0)
		}
		dephase.Scale(complex(dt*decay, 0), dephase)

		next := new(mat.Dense)
		next.Sub(rho, unitary)
		next.Sub(next, dephase)
		return next
	}
}

func checkDensityMatrix(step int, t float64, rho *mat.Dense) error {
	instability := func(format string, args ...any) error {
		return errors.WithStack(&NumericalInstabilityError{Step: step, Time: t, Reason: fmt.Sprintf(format, args...)})
	}
	if !rho.IsFinite() {
		return instability("non-finite element")
	}
	if tr := rho.Trace(); math.Abs(real(tr)-1) > traceTolerance || math.Abs(imag(tr)) > traceTolerance {
		return instability("trace %v", tr)
	}
	if dev := rho.HermitianDeviation(); dev > hermitianTolerance*math.Max(1, rho.MaxAbs()) {
		return instability("hermitian deviation %g", dev)
	}
	return nil
}
