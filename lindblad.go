package qheom

import (
	"github.com/pkg/errors"

	"github.com/fumin/qheom/mat"
)

// BuildSuperoperator returns the relaxation superoperator Σ_k γ_k D[L_k] of the configured Lindblad dynamics,
// acting on the row major vectorization of the density matrix.
// The Simple model has no superoperator and fails with UnsupportedModelError.
func BuildSuperoperator(cfg Config, hamiltonian *mat.Dense) (*mat.Dense, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.Sites()
	if hamiltonian.Rows() != n || hamiltonian.Cols() != n {
		return nil, errors.Errorf("hamiltonian %dx%d, expected %d sites", hamiltonian.Rows(), hamiltonian.Cols(), n)
	}

	switch d := cfg.Dynamics().(type) {
	case Dephasing:
		if d.Kind != LocalDephasing {
			return nil, unsupported(d.Kind)
		}
		return localDephasing(n, d.DecayRate).Dense(), nil
	case Thermalising:
		switch d.Kind {
		case LocalThermalising:
			return localThermalising(hamiltonian, d.Bath()).Dense(), nil
		case GlobalThermalising:
			super, err := globalThermalising(hamiltonian, d.Bath())
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			return super.Dense(), nil
		}
	}
	return nil, unsupported(cfg.DynamicsModel())
}

// localDephasing destroys the coherence between every pair of sites with jump operators |j><j|.
func localDephasing(n int, rate float64) *mat.COO {
	super := mat.COOZeros(n*n, n*n)
	for j := range n {
		super.Add(complex(rate, 0), dissipator(mat.Outer(n, j, j)))
	}
	return super
}

// localThermalising transfers excitations between every pair of sites with jump operators |i><j|,
// at rates set by the difference between the site energies on the diagonal of the Hamiltonian.
func localThermalising(hamiltonian *mat.Dense, bath Bath) *mat.COO {
	n := hamiltonian.Rows()
	super := mat.COOZeros(n*n, n*n)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			released := real(hamiltonian.At(j, j)) - real(hamiltonian.At(i, i))
			rate := bath.Rate(released)
			if rate == 0 {
				continue
			}
			super.Add(complex(rate, 0), dissipator(mat.Outer(n, i, j)))
		}
	}
	return super
}

// globalThermalising transfers population between the eigenstates of the Hamiltonian with jump operators |a><b|.
func globalThermalising(hamiltonian *mat.Dense, bath Bath) (*mat.COO, error) {
	n := hamiltonian.Rows()
	vvs, err := hamiltonian.EigenSym()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	super := mat.COOZeros(n*n, n*n)
	for a, va := range vvs {
		for b, vb := range vvs {
			if a == b {
				continue
			}
			rate := bath.Rate(vb.Val - va.Val)
			if rate == 0 {
				continue
			}
			jump := mat.NewDense(n, n, nil)
			for i := range n {
				for j := range n {
					jump.Set(i, j, complex(va.Vec[i]*vb.Vec[j], 0))
				}
			}
			super.Add(complex(rate, 0), dissipator(jump.COO()))
		}
	}
	return super, nil
}

// dissipator returns the superoperator of D[L]ρ = LρL† - ½{L†L, ρ}, which is
// L⊗L* - ½(L†L)⊗I - ½I⊗(L†L)ᵀ in row major vectorization.
func dissipator(l *mat.COO) *mat.COO {
	n := l.Rows()
	dense := l.Dense()
	ldl := new(mat.Dense)
	ldl.Mul(dense.H(), dense)

	super := l.Clone()
	super.Kron(dense.Conj().COO())

	left := ldl.COO()
	left.Kron(mat.COOIdentity(n))
	super.Add(-0.5, left)

	right := mat.COOIdentity(n)
	right.Kron(ldl.T().COO())
	super.Add(-0.5, right)
	return super
}
