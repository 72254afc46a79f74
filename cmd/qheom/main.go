// Command qheom simulates the open quantum dynamics of excitonic site networks.
package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/config"
	"github.com/fumin/qheom/logger"
	"github.com/fumin/qheom/store"
)

type options struct {
	configPath string
	preset     string
	storePath  string
	outDir     string
	logLevel   string
	pretty     bool

	sites       int
	interaction string
	dynamics    string
	steps       int
	timeStep    float64
	temperature float64
	spectral    string

	elements   string
	coherences string
	measures   string
	asymptote  bool
	noSave     bool
}

// app is the state shared by the subcommands once the flags are parsed.
type app struct {
	file *config.File
	log  zerolog.Logger
	out  io.Writer

	noSave bool
}

func main() {
	if err := mainWithErr(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func mainWithErr(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opt := &options{}
	root := &cobra.Command{
		Use:           "qheom",
		Short:         "open quantum system dynamics of excitonic site networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&opt.configPath, "config", "c", "", "YAML run file")
	pf.StringVar(&opt.preset, "preset", "", "use the systems of a preset, see the presets command")
	pf.StringVar(&opt.storePath, "store", "", "SQLite run store (default from the run file)")
	pf.StringVar(&opt.outDir, "out", "", "directory for CSV exports (default from the run file)")
	pf.StringVar(&opt.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&opt.pretty, "pretty", true, "human readable logs")

	pf.IntVar(&opt.sites, "sites", 0, "number of sites of a single system given by flags")
	pf.StringVar(&opt.interaction, "interaction", "nearest neighbour linear", "interaction model of a single system")
	pf.StringVar(&opt.dynamics, "dynamics", "local dephasing lindblad", "dynamics model of a single system")
	pf.IntVar(&opt.steps, "steps", 0, "number of timesteps of every system")
	pf.Float64Var(&opt.timeStep, "dt", 0, "time step of every system in seconds")
	pf.Float64Var(&opt.temperature, "temperature", 0, "bath temperature of every thermalising system in K")
	pf.StringVar(&opt.spectral, "spectral-density", "", "spectral density of every thermalising system")

	pf.StringVar(&opt.elements, "elements", "", `density matrix elements: "all", "diagonals", "off-diagonals" or a list like "11,21"`)
	pf.StringVar(&opt.coherences, "coherences", "", `parts of off-diagonal elements: "real", "imag" or both`)
	pf.StringVar(&opt.measures, "trace-measure", "", `"squared", "distance" or both`)
	pf.BoolVar(&opt.asymptote, "asymptote", false, "draw the 1/N line of the maximally mixed state")

	run := &cobra.Command{
		Use:   "run",
		Short: "evolve systems, plot their dynamics and save them",
		Args:  cobra.NoArgs,
		RunE:  withApp(opt, runSystems),
	}
	run.Flags().BoolVar(&opt.noSave, "no-save", false, "do not write to the store or export CSV")

	sweep := &cobra.Command{
		Use:   "sweep [temperature...]",
		Short: "evolve the first system at each temperature and tabulate its relaxation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(opt, sweepTemperatures),
	}

	spectral := &cobra.Command{
		Use:   "spectral",
		Short: "plot the spectral densities of thermalising systems",
		Args:  cobra.NoArgs,
		RunE:  withApp(opt, plotSpectral),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  withApp(opt, listRuns),
	}

	show := &cobra.Command{
		Use:   "show [run_id...]",
		Short: "plot stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(opt, showRuns),
	}

	presets := &cobra.Command{
		Use:   "presets",
		Short: "list preset systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(config.Presets))
			for name := range config.Presets {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				var descs []string
				for _, s := range config.Presets[name] {
					descs = append(descs, fmt.Sprintf("%d sites %s, %s", s.Sites, s.Interaction, s.Dynamics))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", headingStyle.Render(name), strings.Join(descs, "; "))
			}
			return nil
		},
	}

	root.AddCommand(run, sweep, spectral, list, show, presets)
	return root
}

func withApp(opt *options, f func(*cobra.Command, *app, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, opt)
		if err != nil {
			return errors.Wrap(err, "")
		}
		return f(cmd, a, args)
	}
}

func newApp(cmd *cobra.Command, opt *options) (*app, error) {
	file, err := loadFile(cmd, opt)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	log, err := logger.New(cmd.ErrOrStderr(), logger.Config{Level: file.Log.Level, Pretty: file.Log.Pretty})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &app{file: file, log: log, out: cmd.OutOrStdout(), noSave: opt.noSave}, nil
}

// loadFile reads the run file or preset and applies the flags that were set on top of it.
func loadFile(cmd *cobra.Command, opt *options) (*config.File, error) {
	file := config.Default()
	if opt.configPath != "" {
		var err error
		if file, err = config.Load(opt.configPath); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	if opt.preset != "" {
		systems, ok := config.Presets[opt.preset]
		if !ok {
			return nil, errors.Errorf("unknown preset %q", opt.preset)
		}
		file.Systems = slices.Clone(systems)
	}
	if opt.sites > 0 {
		file.Systems = []config.System{{Sites: opt.sites, Interaction: opt.interaction, Dynamics: opt.dynamics}}
	}

	changed := cmd.Flags().Changed
	for i := range file.Systems {
		s := &file.Systems[i]
		if changed("steps") {
			s.Steps = &opt.steps
		}
		if changed("dt") {
			s.TimeStep = &opt.timeStep
		}
		model, err := qheom.ParseDynamicsModel(s.Dynamics)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		thermal := model.Thermalising()
		if changed("temperature") && thermal {
			s.Temperature = &opt.temperature
		}
		if changed("spectral-density") && thermal {
			s.SpectralDensity = opt.spectral
		}
	}

	if changed("store") {
		file.Store = opt.storePath
	}
	if changed("out") {
		file.OutDir = opt.outDir
	}
	if changed("log-level") {
		file.Log.Level = opt.logLevel
	}
	if changed("pretty") {
		file.Log.Pretty = opt.pretty
	}
	if changed("elements") {
		file.Plot.Elements = opt.elements
	}
	if changed("coherences") {
		file.Plot.Coherences = opt.coherences
	}
	if changed("trace-measure") {
		file.Plot.TraceMeasures = opt.measures
	}
	if changed("asymptote") {
		file.Plot.Asymptote = opt.asymptote
	}
	return file, nil
}

func openStore(a *app) (*store.DB, error) {
	db, err := store.Open(a.file.Store, a.log)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return db, nil
}
