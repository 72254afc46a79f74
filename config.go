package qheom

import (
	"math"
	"slices"
)

// Default parameter values.
const (
	DefaultTimeStep        = 5e-15
	DefaultSteps           = 500
	DefaultDecayRate       = 6.024e12
	DefaultTemperature     = 298
	DefaultScaleFactor     = 1.391e12
	DefaultCutoffFreq      = 6.024e12
	DefaultOhmicExponent   = 1
	DefaultSpectralDensity = Debye
)

// Dynamics carries the parameters of a dynamics model.
// It is implemented by Dephasing and Thermalising only.
type Dynamics interface {
	Model() DynamicsModel
	validate() error
}

// Dephasing parameterizes the Simple and LocalDephasing models.
type Dephasing struct {
	Kind DynamicsModel
	// DecayRate is the dephasing rate of the coherences in rad s^-1.
	DecayRate float64
}

// NewDephasing returns dephasing parameters with the default decay rate.
func NewDephasing(kind DynamicsModel) Dephasing {
	return Dephasing{Kind: kind, DecayRate: DefaultDecayRate}
}

func (d Dephasing) Model() DynamicsModel { return d.Kind }

func (d Dephasing) validate() error {
	if d.Kind != Simple && d.Kind != LocalDephasing {
		return unsupported(d.Kind)
	}
	if !(d.DecayRate >= 0) || math.IsInf(d.DecayRate, 0) {
		return configErrorf("decay_rate", "%g is not a finite non-negative rate", d.DecayRate)
	}
	return nil
}

// Thermalising parameterizes the LocalThermalising and GlobalThermalising models.
type Thermalising struct {
	Kind DynamicsModel
	// Temperature of the bath in K.
	Temperature float64
	// ScaleFactor is the system-bath coupling strength in rad s^-1.
	ScaleFactor float64
	// CutoffFreq is the bath cutoff frequency in rad s^-1.
	CutoffFreq      float64
	SpectralDensity SpectralDensity
	// OhmicExponent is ignored by the Debye spectral density.
	OhmicExponent float64
}

// NewThermalising returns thermalising parameters with default values.
func NewThermalising(kind DynamicsModel) Thermalising {
	return Thermalising{
		Kind:            kind,
		Temperature:     DefaultTemperature,
		ScaleFactor:     DefaultScaleFactor,
		CutoffFreq:      DefaultCutoffFreq,
		SpectralDensity: DefaultSpectralDensity,
		OhmicExponent:   DefaultOhmicExponent,
	}
}

func (d Thermalising) Model() DynamicsModel { return d.Kind }

func (d Thermalising) validate() error {
	if !d.Kind.Thermalising() {
		return unsupported(d.Kind)
	}
	if !positive(d.Temperature) {
		return configErrorf("temperature", "%g K is not positive", d.Temperature)
	}
	if !positive(d.ScaleFactor) {
		return configErrorf("scale_factor", "%g is not positive", d.ScaleFactor)
	}
	if !positive(d.CutoffFreq) {
		return configErrorf("cutoff_freq", "%g is not positive", d.CutoffFreq)
	}
	switch d.SpectralDensity {
	case Debye:
	case Ohmic:
		if !(d.OhmicExponent >= 1) || math.IsInf(d.OhmicExponent, 0) {
			return configErrorf("ohmic_exponent", "%g is less than 1", d.OhmicExponent)
		}
	default:
		return configErrorf("spectral_density", "%s is not supported", d.SpectralDensity)
	}
	return nil
}

// Bath returns the harmonic bath described by d.
func (d Thermalising) Bath() Bath {
	return Bath{
		SpectralDensity: d.SpectralDensity,
		CutoffFreq:      d.CutoffFreq,
		Reorg:           d.ScaleFactor,
		Exponent:        d.OhmicExponent,
		Temperature:     d.Temperature,
	}
}

// Config describes a quantum system and how to evolve it.
// A Config is immutable, the With methods return modified copies.
type Config struct {
	sites       int
	interaction InteractionModel
	dynamics    Dynamics
	timeStep    float64
	steps       int
	initSitePop []int
	atomicUnits bool
}

// An Option sets an optional Config field.
type Option func(*Config)

// WithTimeStep sets the time step in s.
func WithTimeStep(dt float64) Option { return func(c *Config) { c.timeStep = dt } }

func WithSteps(n int) Option { return func(c *Config) { c.steps = n } }

// WithInitSitePop sets the 1-indexed sites initially excited with equal weight.
func WithInitSitePop(pop ...int) Option {
	return func(c *Config) { c.initSitePop = slices.Clone(pop) }
}

// WithAtomicUnits sets ħ = 1.
func WithAtomicUnits(on bool) Option { return func(c *Config) { c.atomicUnits = on } }

// NewConfig validates and returns a Config.
func NewConfig(sites int, interaction InteractionModel, dynamics Dynamics, opts ...Option) (Config, error) {
	c := Config{
		sites:       sites,
		interaction: interaction,
		dynamics:    dynamics,
		timeStep:    DefaultTimeStep,
		steps:       DefaultSteps,
		initSitePop: []int{1},
	}
	for _, o := range opts {
		o(&c)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.sites < 1 {
		return configErrorf("sites", "%d is not positive", c.sites)
	}
	if !slices.Contains(InteractionModels, c.interaction) {
		return unsupported(c.interaction)
	}
	if c.interaction == FMO && c.sites > FMOSites {
		return configErrorf("sites", "FMO has at most %d sites, got %d", FMOSites, c.sites)
	}
	if c.dynamics == nil {
		return configErrorf("dynamics", "not set")
	}
	if err := c.dynamics.validate(); err != nil {
		return err
	}
	if !positive(c.timeStep) {
		return configErrorf("time_step", "%g s is not positive", c.timeStep)
	}
	if c.steps < 1 {
		return configErrorf("steps", "%d is not positive", c.steps)
	}
	if len(c.initSitePop) == 0 {
		return configErrorf("init_site_pop", "empty")
	}
	for _, s := range c.initSitePop {
		if s < 1 || s > c.sites {
			return configErrorf("init_site_pop", "site %d is outside 1..%d", s, c.sites)
		}
	}
	return nil
}

func (c Config) with(f func(*Config)) (Config, error) {
	c.initSitePop = slices.Clone(c.initSitePop)
	f(&c)
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) WithSites(n int) (Config, error) {
	return c.with(func(c *Config) { c.sites = n })
}

func (c Config) WithInteraction(m InteractionModel) (Config, error) {
	return c.with(func(c *Config) { c.interaction = m })
}

func (c Config) WithDynamics(d Dynamics) (Config, error) {
	return c.with(func(c *Config) { c.dynamics = d })
}

func (c Config) WithTimeStep(dt float64) (Config, error) {
	return c.with(WithTimeStep(dt))
}

func (c Config) WithSteps(n int) (Config, error) {
	return c.with(WithSteps(n))
}

func (c Config) WithInitSitePop(pop ...int) (Config, error) {
	return c.with(WithInitSitePop(pop...))
}

func (c Config) WithAtomicUnits(on bool) (Config, error) {
	return c.with(WithAtomicUnits(on))
}

// WithDecayRate sets the dephasing rate, failing unless the dynamics model dephases.
func (c Config) WithDecayRate(rate float64) (Config, error) {
	d, ok := c.dynamics.(Dephasing)
	if !ok {
		return Config{}, c.notApplicable("decay_rate")
	}
	d.DecayRate = rate
	return c.WithDynamics(d)
}

// WithTemperature sets the bath temperature, failing unless the dynamics model thermalises.
func (c Config) WithTemperature(t float64) (Config, error) {
	return c.withThermal("temperature", func(d *Thermalising) { d.Temperature = t })
}

func (c Config) WithScaleFactor(s float64) (Config, error) {
	return c.withThermal("scale_factor", func(d *Thermalising) { d.ScaleFactor = s })
}

func (c Config) WithCutoffFreq(w float64) (Config, error) {
	return c.withThermal("cutoff_freq", func(d *Thermalising) { d.CutoffFreq = w })
}

func (c Config) WithSpectralDensity(s SpectralDensity) (Config, error) {
	return c.withThermal("spectral_density", func(d *Thermalising) { d.SpectralDensity = s })
}

func (c Config) WithOhmicExponent(s float64) (Config, error) {
	return c.withThermal("ohmic_exponent", func(d *Thermalising) { d.OhmicExponent = s })
}

func (c Config) withThermal(field string, f func(*Thermalising)) (Config, error) {
	d, ok := c.dynamics.(Thermalising)
	if !ok {
		return Config{}, c.notApplicable(field)
	}
	f(&d)
	return c.WithDynamics(d)
}

func (c Config) notApplicable(field string) error {
	return configErrorf(field, "not applicable to dynamics model %s", c.DynamicsModel())
}

func (c Config) Sites() int                    { return c.sites }
func (c Config) Interaction() InteractionModel { return c.interaction }
func (c Config) Dynamics() Dynamics            { return c.dynamics }
func (c Config) TimeStep() float64             { return c.timeStep }
func (c Config) Steps() int                    { return c.steps }
func (c Config) AtomicUnits() bool             { return c.atomicUnits }

// InitSitePop returns a copy of the initially excited sites.
func (c Config) InitSitePop() []int { return slices.Clone(c.initSitePop) }

// DynamicsModel returns the dynamics model, or zero if none is set.
func (c Config) DynamicsModel() DynamicsModel {
	if c.dynamics == nil {
		return 0
	}
	return c.dynamics.Model()
}

// Hbar returns the value of ħ in the configured units, where energies are ħ times the Hamiltonian frequencies.
func (c Config) Hbar() float64 {
	if c.atomicUnits {
		return 1
	}
	return Hbar
}

// DecayRate returns the dephasing rate if the dynamics model dephases.
func (c Config) DecayRate() (float64, bool) {
	d, ok := c.dynamics.(Dephasing)
	return d.DecayRate, ok
}

// Temperature returns the bath temperature if the dynamics model thermalises.
func (c Config) Temperature() (float64, bool) {
	d, ok := c.dynamics.(Thermalising)
	return d.Temperature, ok
}

func (c Config) ScaleFactor() (float64, bool) {
	d, ok := c.dynamics.(Thermalising)
	return d.ScaleFactor, ok
}

func (c Config) CutoffFreq() (float64, bool) {
	d, ok := c.dynamics.(Thermalising)
	return d.CutoffFreq, ok
}

func (c Config) SpectralDensity() (SpectralDensity, bool) {
	d, ok := c.dynamics.(Thermalising)
	return d.SpectralDensity, ok
}

// OhmicExponent is only reported for the Ohmic spectral density.
func (c Config) OhmicExponent() (float64, bool) {
	d, ok := c.dynamics.(Thermalising)
	if !ok || d.SpectralDensity != Ohmic {
		return 0, false
	}
	return d.OhmicExponent, true
}

// Bath returns the harmonic bath if the dynamics model thermalises.
func (c Config) Bath() (Bath, bool) {
	d, ok := c.dynamics.(Thermalising)
	if !ok {
		return Bath{}, false
	}
	return d.Bath(), true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
