// Package config reads and writes YAML descriptions of quantum systems and figures.
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/analysis"
	"github.com/fumin/qheom/plot"
)

// System is the YAML form of a qheom.Config.
// Optional fields left out take their default values, and model-scoped fields
// must only be present for the dynamics models they apply to.
type System struct {
	Sites           int      `yaml:"sites"`
	Interaction     string   `yaml:"interaction_model"`
	Dynamics        string   `yaml:"dynamics_model"`
	TimeStep        *float64 `yaml:"time_interval,omitempty"`
	Steps           *int     `yaml:"timesteps,omitempty"`
	InitSitePop     []int    `yaml:"init_site_pop,omitempty"`
	AtomicUnits     bool     `yaml:"atomic_units,omitempty"`
	DecayRate       *float64 `yaml:"decay_rate,omitempty"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	ScaleFactor     *float64 `yaml:"therm_sf,omitempty"`
	CutoffFreq      *float64 `yaml:"cutoff_freq,omitempty"`
	SpectralDensity string   `yaml:"spectral_density,omitempty"`
	OhmicExponent   *float64 `yaml:"ohmic_exponent,omitempty"`
}

// Plot holds the arguments of a dynamics figure.
type Plot struct {
	Elements      string `yaml:"elements,omitempty"`
	Coherences    string `yaml:"coherences,omitempty"`
	TraceMeasures string `yaml:"trace_measure,omitempty"`
	Asymptote     bool   `yaml:"asymptote,omitempty"`
	Height        int    `yaml:"height,omitempty"`
	Width         int    `yaml:"width,omitempty"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// File is a complete run description.
type File struct {
	Systems []System `yaml:"systems"`
	Plot    Plot     `yaml:"plot"`
	// Store is the path of the SQLite run store.
	Store string `yaml:"store"`
	// OutDir receives CSV exports and provenance files.
	OutDir string `yaml:"out_dir"`
	Log    Log    `yaml:"log"`
}

func Default() *File {
	return &File{
		Plot: Plot{
			Elements:   "diagonals",
			Coherences: "imag",
			Height:     plot.DefaultOptions.Height,
			Width:      plot.DefaultOptions.Width,
		},
		Store:  "qheom.db",
		OutDir: "figures",
		Log:    Log{Level: "info", Pretty: true},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	f, err := Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

func Parse(b []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(b, f); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return f, nil
}

func Save(path string, f *File) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Configs builds every system of f.
func (f *File) Configs() ([]qheom.Config, error) {
	configs := make([]qheom.Config, 0, len(f.Systems))
	for i, s := range f.Systems {
		c, err := s.Build()
		if err != nil {
			return nil, errors.Wrap(err, "system "+strconv.Itoa(i))
		}
		configs = append(configs, c)
	}
	return configs, nil
}

// DynamicsArgs parses the figure arguments for systems of the given number of sites.
func (p Plot) DynamicsArgs(sites int) (plot.DynamicsArgs, error) {
	var args plot.DynamicsArgs
	var err error
	if args.Elements, err = analysis.ParseElements(sites, p.Elements); err != nil {
		return plot.DynamicsArgs{}, errors.Wrap(err, "")
	}
	if p.Coherences != "" {
		if args.Coherences, err = analysis.ParseCoherences(p.Coherences); err != nil {
			return plot.DynamicsArgs{}, errors.Wrap(err, "")
		}
	}
	if args.Measures, err = analysis.ParseTraceMeasures(p.TraceMeasures); err != nil {
		return plot.DynamicsArgs{}, errors.Wrap(err, "")
	}
	args.Asymptote = p.Asymptote
	return args, nil
}

func (p Plot) Options() plot.Options {
	opt := plot.DefaultOptions
	if p.Height > 0 {
		opt.Height = p.Height
	}
	if p.Width > 0 {
		opt.Width = p.Width
	}
	return opt
}

// Build validates s and converts it into a qheom.Config.
func (s System) Build() (qheom.Config, error) {
	interaction, err := qheom.ParseInteractionModel(s.Interaction)
	if err != nil {
		return qheom.Config{}, err
	}
	model, err := qheom.ParseDynamicsModel(s.Dynamics)
	if err != nil {
		return qheom.Config{}, err
	}
	dynamics, err := s.dynamics(model)
	if err != nil {
		return qheom.Config{}, err
	}

	var opts []qheom.Option
	if s.TimeStep != nil {
		opts = append(opts, qheom.WithTimeStep(*s.TimeStep))
	}
	if s.Steps != nil {
		opts = append(opts, qheom.WithSteps(*s.Steps))
	}
	if s.InitSitePop != nil {
		opts = append(opts, qheom.WithInitSitePop(s.InitSitePop...))
	}
	opts = append(opts, qheom.WithAtomicUnits(s.AtomicUnits))
	return qheom.NewConfig(s.Sites, interaction, dynamics, opts...)
}

func (s System) dynamics(model qheom.DynamicsModel) (qheom.Dynamics, error) {
	thermal := map[string]bool{
		"temperature":      s.Temperature != nil,
		"therm_sf":         s.ScaleFactor != nil,
		"cutoff_freq":      s.CutoffFreq != nil,
		"spectral_density": s.SpectralDensity != "",
		"ohmic_exponent":   s.OhmicExponent != nil,
	}

	if !model.Thermalising() {
		for _, field := range []string{"temperature", "therm_sf", "cutoff_freq", "spectral_density", "ohmic_exponent"} {
			if thermal[field] {
				return nil, notApplicable(field, model)
			}
		}
		d := qheom.NewDephasing(model)
		if s.DecayRate != nil {
			d.DecayRate = *s.DecayRate
		}
		return d, nil
	}

	if s.DecayRate != nil {
		return nil, notApplicable("decay_rate", model)
	}
	d := qheom.NewThermalising(model)
	if s.Temperature != nil {
		d.Temperature = *s.Temperature
	}
	if s.ScaleFactor != nil {
		d.ScaleFactor = *s.ScaleFactor
	}
	if s.CutoffFreq != nil {
		d.CutoffFreq = *s.CutoffFreq
	}
	if s.SpectralDensity != "" {
		sd, err := qheom.ParseSpectralDensity(s.SpectralDensity)
		if err != nil {
			return nil, err
		}
		d.SpectralDensity = sd
	}
	if s.OhmicExponent != nil {
		if d.SpectralDensity != qheom.Ohmic {
			return nil, notApplicable("ohmic_exponent", model)
		}
		d.OhmicExponent = *s.OhmicExponent
	}
	return d, nil
}

// FromConfig returns the YAML form of c with every applicable field spelled out.
func FromConfig(c qheom.Config) System {
	s := System{
		Sites:       c.Sites(),
		Interaction: c.Interaction().String(),
		Dynamics:    c.DynamicsModel().String(),
		TimeStep:    ptr(c.TimeStep()),
		Steps:       ptr(c.Steps()),
		InitSitePop: c.InitSitePop(),
		AtomicUnits: c.AtomicUnits(),
	}
	if v, ok := c.DecayRate(); ok {
		s.DecayRate = ptr(v)
	}
	if v, ok := c.Temperature(); ok {
		s.Temperature = ptr(v)
	}
	if v, ok := c.ScaleFactor(); ok {
		s.ScaleFactor = ptr(v)
	}
	if v, ok := c.CutoffFreq(); ok {
		s.CutoffFreq = ptr(v)
	}
	if v, ok := c.SpectralDensity(); ok {
		s.SpectralDensity = v.String()
	}
	if v, ok := c.OhmicExponent(); ok {
		s.OhmicExponent = ptr(v)
	}
	return s
}

func notApplicable(field string, model qheom.DynamicsModel) error {
	return errors.WithStack(&qheom.ConfigurationError{Field: field, Reason: "not applicable to dynamics model " + model.String()})
}

func ptr[T any](v T) *T { return &v }
