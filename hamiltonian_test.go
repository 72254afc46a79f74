package qheom

import (
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fumin/qheom/mat"
)

func TestBuildHamiltonian(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sites int
		model InteractionModel
		h     [][]complex128
	}{
		{sites: 1, model: LinearChain, h: [][]complex128{{0}}},
		{sites: 2, model: LinearChain, h: [][]complex128{{0, 1}, {1, 0}}},
		{sites: 3, model: LinearChain, h: [][]complex128{{0, 1, 0}, {1, 0, 1}, {0, 1, 0}}},
		{
			sites: 4,
			model: LinearChain,
			h: [][]complex128{
				{0, 1, 0, 0},
				{1, 0, 1, 0},
				{0, 1, 0, 1},
				{0, 0, 1, 0},
			},
		},
		{sites: 1, model: CyclicChain, h: [][]complex128{{1}}},
		{sites: 2, model: CyclicChain, h: [][]complex128{{0, 1}, {1, 0}}},
		{sites: 3, model: CyclicChain, h: [][]complex128{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}}},
		{
			sites: 4,
			model: CyclicChain,
			h: [][]complex128{
				{0, 1, 0, 1},
				{1, 0, 1, 0},
				{0, 1, 0, 1},
				{1, 0, 1, 0},
			},
		},
		{
			sites: 3,
			model: Huckel,
			h: [][]complex128{
				{12000, 80, 80},
				{80, 12000, 80},
				{80, 80, 12000},
			},
		},
		{
			sites: 4,
			model: Huckel,
			h: [][]complex128{
				{12000, 80, 80, 80},
				{80, 12000, 80, 80},
				{80, 80, 12000, 80},
				{80, 80, 80, 12000},
			},
		},
		{
			sites: 2,
			model: FMO,
			h: [][]complex128{
				{12410, -87.7},
				{-87.7, 12530},
			},
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %d", test.model, test.sites), func(t *testing.T) {
			t.Parallel()
			h, err := BuildHamiltonian(test.sites, test.model)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			expected := mat.D(test.h)
			expected.Scale(wavenumber, expected)
			if d := maxDiff(h, expected); d > 1e-12*expected.MaxAbs() {
				t.Fatalf("%s, expected %s", h, expected)
			}
		})
	}
}

func TestBuildHamiltonianFMOTooManySites(t *testing.T) {
	t.Parallel()
	_, err := BuildHamiltonian(FMOSites+1, FMO)
	assertConfigurationError(t, err, "sites")
}

func TestHamiltonianIsHermitian(t *testing.T) {
	t.Parallel()
	for _, model := range InteractionModels {
		for sites := 1; sites <= FMOSites; sites++ {
			h, err := BuildHamiltonian(sites, model)
			if err != nil {
				t.Fatalf("%s %d %+v", model, sites, err)
			}
			if dev := h.HermitianDeviation(); dev != 0 {
				t.Fatalf("%s %d %g", model, sites, dev)
			}
		}
	}
}

func TestNeighbours(t *testing.T) {
	t.Parallel()
	tests := []struct {
		model      InteractionModel
		neighbours []int
	}{
		{model: LinearChain, neighbours: []int{1, 2, 2, 1}},
		{model: CyclicChain, neighbours: []int{2, 2, 2, 2}},
		{model: Huckel, neighbours: []int{3, 3, 3, 3}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.model), func(t *testing.T) {
			t.Parallel()
			h, err := BuildHamiltonian(4, test.model)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			for i, expected := range test.neighbours {
				var n int
				for j := range h.Cols() {
					if i != j && h.At(i, j) != 0 {
						n++
					}
				}
				if n != expected {
					t.Fatalf("site %d has %d neighbours, expected %d", i, n, expected)
				}
			}
		})
	}
}

func TestHamiltonianSuperoperator(t *testing.T) {
	t.Parallel()
	h, err := BuildHamiltonian(2, LinearChain)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	super := HamiltonianSuperoperator(h)

	expected := mat.D([][]complex128{
		{0, -1, 1, 0},
		{-1, 0, 0, 1},
		{1, 0, 0, -1},
		{0, 1, -1, 0},
	})
	expected.Scale(-1i*wavenumber, expected)
	if d := maxDiff(super, expected); d > 1e-12*expected.MaxAbs() {
		t.Fatalf("%s, expected %s", super, expected)
	}

	for _, sites := range []int{2, 4, 6} {
		h, err := BuildHamiltonian(sites, CyclicChain)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		super := HamiltonianSuperoperator(h)
		if super.Rows() != sites*sites || super.Cols() != sites*sites {
			t.Fatalf("%d %dx%d", sites, super.Rows(), super.Cols())
		}
	}
}

func maxDiff(a, b *mat.Dense) float64 {
	d := new(mat.Dense)
	d.Sub(a, b)
	return d.MaxAbs()
}

func TestMain(m *testing.M) {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	os.Exit(m.Run())
}
