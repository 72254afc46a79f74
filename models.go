package qheom

import (
	"fmt"

	"github.com/pkg/errors"
)

// InteractionModel determines the topology of the site Hamiltonian.
type InteractionModel int

const (
	LinearChain InteractionModel = iota + 1
	CyclicChain
	FMO
	Huckel
)

var interactionNames = map[InteractionModel]string{
	LinearChain: "nearest neighbour linear",
	CyclicChain: "nearest neighbour cyclic",
	FMO:         "FMO",
	Huckel:      "Huckel",
}

// InteractionModels lists every implemented interaction model.
var InteractionModels = []InteractionModel{LinearChain, CyclicChain, FMO, Huckel}

func (m InteractionModel) String() string {
	if s, ok := interactionNames[m]; ok {
		return s
	}
	return fmt.Sprintf("InteractionModel(%d)", int(m))
}

func ParseInteractionModel(s string) (InteractionModel, error) {
	for m, name := range interactionNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.WithStack(&UnsupportedModelError{Model: s})
}

// DynamicsModel determines the relaxation superoperator and the one step update rule.
type DynamicsModel int

const (
	// Simple is unitary evolution with uniform dephasing of the coherences, integrated with an explicit first order step.
	Simple DynamicsModel = iota + 1
	LocalDephasing
	LocalThermalising
	GlobalThermalising
)

var dynamicsNames = map[DynamicsModel]string{
	Simple:             "simple",
	LocalDephasing:     "local dephasing lindblad",
	LocalThermalising:  "local thermalising lindblad",
	GlobalThermalising: "global thermalising lindblad",
}

// DynamicsModels lists every implemented dynamics model.
var DynamicsModels = []DynamicsModel{Simple, LocalDephasing, LocalThermalising, GlobalThermalising}

func (m DynamicsModel) String() string {
	if s, ok := dynamicsNames[m]; ok {
		return s
	}
	return fmt.Sprintf("DynamicsModel(%d)", int(m))
}

func ParseDynamicsModel(s string) (DynamicsModel, error) {
	for m, name := range dynamicsNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.WithStack(&UnsupportedModelError{Model: s})
}

// Thermalising reports whether the model relaxes towards the thermal equilibrium state.
func (m DynamicsModel) Thermalising() bool {
	return m == LocalThermalising || m == GlobalThermalising
}

// SpectralDensity is the functional form of the bath spectral density.
type SpectralDensity int

const (
	Debye SpectralDensity = iota + 1
	Ohmic
)

func (s SpectralDensity) String() string {
	switch s {
	case Debye:
		return "debye"
	case Ohmic:
		return "ohmic"
	default:
		return fmt.Sprintf("SpectralDensity(%d)", int(s))
	}
}

func ParseSpectralDensity(s string) (SpectralDensity, error) {
	switch s {
	case "debye":
		return Debye, nil
	case "ohmic":
		return Ohmic, nil
	default:
		return 0, errors.WithStack(&UnsupportedModelError{Model: s})
	}
}
