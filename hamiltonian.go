package qheom

import (
	"github.com/fumin/qheom/mat"
)

const (
	// huckelAlpha is the site energy of the Hückel model in cm^-1.
	huckelAlpha = 12000
	// huckelBeta is the coupling between every pair of sites of the Hückel model in cm^-1.
	huckelBeta = 80
)

// fmoHamiltonian is the Fenna-Matthews-Olson complex of seven bacteriochlorophylls, in cm^-1.
var fmoHamiltonian = [][]complex128{
	{12410, -87.7, 5.5, -5.9, 6.7, -13.7, -9.9},
	{-87.7, 12530, 30.8, 8.2, 0.7, 11.8, 4.3},
	{5.5, 30.8, 12210, -53.5, -2.2, -9.6, 6.0},
	{-5.9, 8.2, -53.5, 12320, -70.7, -17.0, -63.3},
	{6.7, 0.7, -2.2, -70.7, 12480, 81.1, -1.3},
	{-13.7, 11.8, -9.6, -17.0, 81.1, 12630, 39.7},
	{-9.9, 4.3, 6.0, -63.3, -1.3, 39.7, 12440},
}

// FMOSites is the number of sites in the FMO Hamiltonian.
const FMOSites = 7

// BuildHamiltonian returns the real symmetric site Hamiltonian of an excitonic network.
// Entries are angular frequencies in rad s^-1, obtained from cm^-1 by the factor 2πc·100.
func BuildHamiltonian(sites int, model InteractionModel) (*mat.Dense, error) {
	if sites < 1 {
		return nil, configErrorf("sites", "%d is not positive", sites)
	}

	hamiltonian := mat.COOZeros(sites, sites)
	switch model {
	case LinearChain:
		chain(hamiltonian, sites, 1)
	case CyclicChain:
		chain(hamiltonian, sites, 1)
		switch {
		case sites == 1:
			hamiltonian.Add(1, mat.Outer(sites, 0, 0))
		case sites > 2:
			coupling(hamiltonian, sites, 0, sites-1, 1)
		}
	case Huckel:
		hamiltonian.Add(huckelAlpha, mat.COOIdentity(sites))
		for i := range sites {
			for j := i + 1; j < sites; j++ {
				coupling(hamiltonian, sites, i, j, huckelBeta)
			}
		}
	case FMO:
		if sites > FMOSites {
			return nil, configErrorf("sites", "FMO has at most %d sites, got %d", FMOSites, sites)
		}
		fmo := make([][]complex128, 0, sites)
		for _, row := range fmoHamiltonian[:sites] {
			fmo = append(fmo, row[:sites])
		}
		hamiltonian = mat.M(fmo)
	default:
		return nil, unsupported(model)
	}

	hamiltonian.Mul(mat.M([][]complex128{{wavenumber}}))
	return hamiltonian.Dense(), nil
}

// chain adds a coupling of strength v between consecutive sites.
func chain(hamiltonian *mat.COO, n int, v complex128) {
	for i := 0; i+1 < n; i++ {
		coupling(hamiltonian, n, i, i+1, v)
	}
}

func coupling(hamiltonian *mat.COO, n, i, j int, v complex128) {
	hamiltonian.Add(v, mat.Outer(n, i, j))
	hamiltonian.Add(v, mat.Outer(n, j, i))
}

// HamiltonianSuperoperator returns -i(H⊗I - I⊗Hᵀ), the generator of unitary evolution
// acting on the row major vectorization of the density matrix.
func HamiltonianSuperoperator(hamiltonian *mat.Dense) *mat.Dense {
	n := hamiltonian.Rows()
	left := hamiltonian.COO()
	left.Kron(mat.COOIdentity(n))

	right := mat.COOIdentity(n)
	right.Kron(hamiltonian.T().COO())

	left.Add(-1, right)
	left.Mul(mat.M([][]complex128{{-1i}}))
	return left.Dense()
}
