package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/analysis"
	"github.com/fumin/qheom/plot"
	"github.com/fumin/qheom/store"
)

func runSystems(cmd *cobra.Command, a *app, args []string) error {
	configs, err := a.file.Configs()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(configs) == 0 {
		return errors.Errorf("no systems, use --config, --preset or --sites")
	}

	engine := qheom.NewEngine(a.log)
	states := make([]*qheom.State, 0, len(configs))
	for i, cfg := range configs {
		state, err := engine.Compute(cfg)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("system %d", i))
		}
		states = append(states, state)
	}

	dargs, err := a.file.Plot.DynamicsArgs(configs[0].Sites())
	if err != nil {
		return errors.Wrap(err, "")
	}
	fig, err := plot.Dynamics(states, dargs, a.file.Plot.Options())
	if err != nil {
		return errors.Wrap(err, "")
	}
	name := analysis.Filename("dynamics", configs, dargs.Elements)
	fmt.Fprintln(a.out, headingStyle.Render(name))
	fmt.Fprintln(a.out, fig)
	fmt.Fprintln(a.out, summaryTable(states))

	if a.noSave {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	db, err := openStore(a)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()
	for _, state := range states {
		id, err := db.Save(ctx, state)
		if err != nil {
			return errors.Wrap(err, "")
		}
		fmt.Fprintf(a.out, "%s %d\n", labelStyle.Render("saved run"), id)
	}

	path, err := store.Export(a.file.OutDir, name, states, a.file.Plot)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("exported"), path)
	return nil
}

func sweepTemperatures(cmd *cobra.Command, a *app, args []string) error {
	configs, err := a.file.Configs()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(configs) == 0 {
		return errors.Errorf("no systems, use --config, --preset or --sites")
	}
	base := configs[0]

	engine := qheom.NewEngine(a.log)
	rows := [][]string{{"T / K", "final purity", "∫ trace distance / fs", "relaxation rate / ps^-1"}}
	for _, arg := range args {
		temperature, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return errors.Wrap(err, "")
		}
		cfg, err := base.WithTemperature(temperature)
		if err != nil {
			return errors.Wrap(err, "")
		}
		state, err := engine.Compute(cfg)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%g K", temperature))
		}

		integral, err := analysis.IntegrateTraceDistance(state)
		if err != nil {
			return errors.Wrap(err, "")
		}
		distances, err := analysis.TraceDistanceSeries(state)
		if err != nil {
			return errors.Wrap(err, "")
		}
		rate := "-"
		if r, err := analysis.FitDecayRate(state.Trajectory.Times(), distances, 1e-8); err == nil {
			rate = strconv.FormatFloat(r*1e-12, 'g', 4, 64)
		} else {
			a.log.Warn().Err(err).Float64("temperature", temperature).Msg("no relaxation rate")
		}
		final := state.Trajectory[len(state.Trajectory)-1]
		rows = append(rows, []string{
			strconv.FormatFloat(temperature, 'g', -1, 64),
			strconv.FormatFloat(final.Purity, 'f', 4, 64),
			strconv.FormatFloat(integral*1e15, 'g', 4, 64),
			rate,
		})
	}
	fmt.Fprintln(a.out, headingStyle.Render(analysis.Filename("sweep", []qheom.Config{base}, nil)))
	fmt.Fprintln(a.out, table(rows))
	return nil
}

func plotSpectral(cmd *cobra.Command, a *app, args []string) error {
	configs, err := a.file.Configs()
	if err != nil {
		return errors.Wrap(err, "")
	}
	fig, err := plot.SpectralDensity(configs, a.file.Plot.Options())
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Fprintln(a.out, headingStyle.Render(analysis.Filename("spectral_density", configs, nil)))
	fmt.Fprintln(a.out, fig)
	return nil
}

func listRuns(cmd *cobra.Command, a *app, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	db, err := openStore(a)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()
	summaries, err := db.List(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}

	rows := [][]string{{"id", "created", "sites", "interaction", "dynamics", "steps"}}
	for _, s := range summaries {
		steps := "-"
		if s.System.Steps != nil {
			steps = strconv.Itoa(*s.System.Steps)
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Created.Local().Format(time.DateTime),
			strconv.Itoa(s.System.Sites),
			s.System.Interaction,
			s.System.Dynamics,
			steps,
		})
	}
	fmt.Fprintln(a.out, table(rows))
	return nil
}

func showRuns(cmd *cobra.Command, a *app, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	db, err := openStore(a)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()

	states := make([]*qheom.State, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return errors.Wrap(err, "")
		}
		run, err := db.Load(ctx, id)
		if err != nil {
			return errors.Wrap(err, "")
		}
		state, err := run.State()
		if err != nil {
			return errors.Wrap(err, "")
		}
		states = append(states, state)
	}

	dargs, err := a.file.Plot.DynamicsArgs(states[0].Config.Sites())
	if err != nil {
		return errors.Wrap(err, "")
	}
	fig, err := plot.Dynamics(states, dargs, a.file.Plot.Options())
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Fprintln(a.out, fig)
	fmt.Fprintln(a.out, summaryTable(states))
	return nil
}

func summaryTable(states []*qheom.State) string {
	rows := [][]string{{"system", "dynamics", "final purity", "final ρ11"}}
	for i, state := range states {
		final := state.Trajectory[len(state.Trajectory)-1]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			state.Config.DynamicsModel().String(),
			strconv.FormatFloat(final.Purity, 'f', 4, 64),
			strconv.FormatFloat(real(final.Rho.At(0, 0)), 'f', 4, 64),
		})
	}
	return table(rows)
}
