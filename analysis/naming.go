package analysis

import (
	"strconv"
	"strings"

	"github.com/fumin/qheom"
)

var interactionAbbrevs = map[qheom.InteractionModel]string{
	qheom.LinearChain: "near_neigh_lin",
	qheom.CyclicChain: "near_neigh_cyc",
	qheom.FMO:         "FMO",
	qheom.Huckel:      "huckel",
}

var dynamicsAbbrevs = map[qheom.DynamicsModel]string{
	qheom.Simple:             "simple",
	qheom.LocalDephasing:     "local_deph",
	qheom.LocalThermalising:  "local_therm",
	qheom.GlobalThermalising: "global_therm",
}

// Filename returns a descriptive file name, without version or extension, for a figure of the given type.
// Parameters shared by all configs are spelled out and the others are marked variable.
func Filename(plotType string, configs []qheom.Config, elements []Element) string {
	if len(configs) == 0 {
		return plotType
	}
	first := configs[0]
	parts := []string{plotType, strconv.Itoa(first.Sites()), "sites"}

	interaction := interactionAbbrevs[first.Interaction()]
	dynamics := dynamicsAbbrevs[first.DynamicsModel()]
	temperature, thermal := first.Temperature()
	spectral, _ := first.SpectralDensity()
	sameTemperature, sameSpectral := true, true
	for _, c := range configs[1:] {
		if c.Interaction() != first.Interaction() {
			interaction = "variable_interactions"
		}
		if c.DynamicsModel() != first.DynamicsModel() {
			dynamics = "variable_dynamics"
		}
		t, ok := c.Temperature()
		if ok != thermal || t != temperature {
			sameTemperature = false
		}
		s, _ := c.SpectralDensity()
		if s != spectral {
			sameSpectral = false
		}
	}
	parts = append(parts, interaction, dynamics)

	switch {
	case !sameTemperature:
		parts = append(parts, "variable_temp")
	case thermal:
		parts = append(parts, strconv.Itoa(int(temperature))+"K")
	}
	switch {
	case !sameSpectral:
		parts = append(parts, "variable_spec_dens")
	case thermal:
		parts = append(parts, spectral.String())
	}

	if len(elements) > 0 {
		parts = append(parts, "elements")
		for _, e := range elements {
			parts = append(parts, e.String())
		}
	}
	return strings.Join(parts, "_")
}
