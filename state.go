package qheom

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/qheom/mat"
)

// InitialDensityMatrix returns the diagonal density matrix that gives each listed site
// a weight of 1/len(pop). Sites listed more than once accumulate weight.
func InitialDensityMatrix(cfg Config) (*mat.Dense, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.Sites()
	rho := mat.NewDense(n, n, nil)
	w := 1 / float64(len(cfg.initSitePop))
	for _, s := range cfg.initSitePop {
		rho.Set(s-1, s-1, rho.At(s-1, s-1)+complex(w, 0))
	}
	return rho, nil
}

// ThermalEquilibriumState returns the Gibbs state exp(-H/ω_T)/Z of the system Hamiltonian.
// It is only defined for the thermalising dynamics models.
func ThermalEquilibriumState(cfg Config) (*mat.Dense, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	bath, ok := cfg.Bath()
	if !ok {
		return nil, configErrorf("temperature", "not applicable to dynamics model %s", cfg.DynamicsModel())
	}
	hamiltonian, err := BuildHamiltonian(cfg.Sites(), cfg.Interaction())
	if err != nil {
		return nil, err
	}
	return thermalState(hamiltonian, bath)
}

func thermalState(hamiltonian *mat.Dense, bath Bath) (*mat.Dense, error) {
	vvs, err := hamiltonian.EigenSym()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	n := hamiltonian.Rows()
	wT := bath.ThermalFrequency()

	// Shift by the ground energy so the largest weight is one.
	ground := vvs[0].Val
	weights := make([]float64, len(vvs))
	var z float64
	for k, vv := range vvs {
		weights[k] = math.Exp(-(vv.Val - ground) / wT)
		z += weights[k]
	}

	rho := mat.NewDense(n, n, nil)
	for k, vv := range vvs {
		p := weights[k] / z
		for i := range n {
			for j := range n {
				rho.Set(i, j, rho.At(i, j)+complex(p*vv.Vec[i]*vv.Vec[j], 0))
			}
		}
	}
	return rho, nil
}

// Purity returns Re tr(ρ²).
func Purity(rho *mat.Dense) float64 {
	var p float64
	n := rho.Rows()
	for i := range n {
		for j := range n {
			p += real(rho.At(i, j) * rho.At(j, i))
		}
	}
	return p
}

// Step is the density matrix at one time point of a trajectory.
type Step struct {
	Time   float64
	Rho    *mat.Dense
	Purity float64
}

// Trajectory is a time ordered sequence of steps starting at time zero.
type Trajectory []Step

// Times returns the time points of t.
func (t Trajectory) Times() []float64 {
	times := make([]float64, len(t))
	for i, s := range t {
		times[i] = s.Time
	}
	return times
}

// Purities returns the purity at every time point of t.
func (t Trajectory) Purities() []float64 {
	p := make([]float64, len(t))
	for i, s := range t {
		p[i] = s.Purity
	}
	return p
}

// Element returns the time series of the 0-indexed density matrix element (i, j).
func (t Trajectory) Element(i, j int) []complex128 {
	e := make([]complex128, len(t))
	for k, s := range t {
		e[k] = s.Rho.At(i, j)
	}
	return e
}

// State bundles a Config with every quantity derived from it.
// A State must not be modified after Compute returns it.
type State struct {
	Config             Config
	Hamiltonian        *mat.Dense
	HamiltonianSuperop *mat.Dense
	// RelaxationSuperop and Propagator are nil for the Simple model.
	RelaxationSuperop *mat.Dense
	// Propagator is exp((L_H + L_R)·dt).
	Propagator *mat.Dense
	Initial    *mat.Dense
	// Equilibrium is nil unless the dynamics model thermalises.
	Equilibrium *mat.Dense
	Trajectory  Trajectory
}
