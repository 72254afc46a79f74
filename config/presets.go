package config

// Presets are ready made systems for common studies.
var Presets = map[string][]System{
	"fmo-global": {
		{
			Sites:       7,
			Interaction: "FMO",
			Dynamics:    "global thermalising lindblad",
			TimeStep:    ptr(1e-14),
			Steps:       ptr(1000),
		},
	},
	"fmo-local-vs-global": {
		{
			Sites:       7,
			Interaction: "FMO",
			Dynamics:    "local thermalising lindblad",
			TimeStep:    ptr(1e-14),
			Steps:       ptr(1000),
		},
		{
			Sites:       7,
			Interaction: "FMO",
			Dynamics:    "global thermalising lindblad",
			TimeStep:    ptr(1e-14),
			Steps:       ptr(1000),
		},
	},
	"dimer-dephasing": {
		{
			Sites:       2,
			Interaction: "nearest neighbour linear",
			Dynamics:    "local dephasing lindblad",
			TimeStep:    ptr(1e-12),
			Steps:       ptr(500),
		},
	},
	"ring-unitary": {
		{
			Sites:       4,
			Interaction: "nearest neighbour cyclic",
			Dynamics:    "simple",
			Steps:       ptr(200),
			DecayRate:   ptr(0.0),
		},
	},
	"huckel-ohmic": {
		{
			Sites:           5,
			Interaction:     "Huckel",
			Dynamics:        "global thermalising lindblad",
			TimeStep:        ptr(1e-14),
			Steps:           ptr(500),
			SpectralDensity: "ohmic",
			OhmicExponent:   ptr(2.0),
		},
	},
}
