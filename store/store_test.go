package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/config"
	"github.com/fumin/qheom/mat"
	"github.com/fumin/qheom/plot"
)

func computed(t *testing.T, dynamics qheom.Dynamics) *qheom.State {
	t.Helper()
	cfg, err := qheom.NewConfig(3, qheom.FMO, dynamics, qheom.WithTimeStep(1e-14), qheom.WithSteps(20))
	require.NoError(t, err)
	state, err := qheom.Compute(cfg)
	require.NoError(t, err)
	return state
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	dephasing := computed(t, qheom.NewDephasing(qheom.LocalDephasing))
	thermal := computed(t, qheom.NewThermalising(qheom.GlobalThermalising))
	id0, err := db.Save(ctx, dephasing)
	require.NoError(t, err)
	id1, err := db.Save(ctx, thermal)
	require.NoError(t, err)
	require.NotEqual(t, id0, id1)

	run, err := db.Load(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, thermal.Config, run.Config)
	require.Len(t, run.Trajectory, len(thermal.Trajectory))
	for k, step := range thermal.Trajectory {
		got := run.Trajectory[k]
		require.Equal(t, step.Time, got.Time)
		require.Equal(t, step.Purity, got.Purity)
		require.Equal(t, step.Rho.ToSlice2(), got.Rho.ToSlice2(), "step %d", k)
	}

	state, err := run.State()
	require.NoError(t, err)
	require.NotNil(t, state.Equilibrium)
	assert.Equal(t, thermal.Equilibrium.ToSlice2(), state.Equilibrium.ToSlice2())

	summaries, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, id0, summaries[0].ID)
	assert.Equal(t, "local dephasing lindblad", summaries[0].System.Dynamics)
	assert.Equal(t, config.FromConfig(thermal.Config), summaries[1].System)

	require.NoError(t, db.Delete(ctx, id0))
	_, err = db.Load(ctx, id0)
	require.True(t, errors.Is(err, ErrNotFound), "%+v", err)
	require.True(t, errors.Is(db.Delete(ctx, id0), ErrNotFound))
	summaries, err = db.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	id, err := db.Save(ctx, computed(t, qheom.NewDephasing(qheom.LocalDephasing)))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()
	run, err := db.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, run.Trajectory, 20)
}

func TestExport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	states := []*qheom.State{
		computed(t, qheom.NewThermalising(qheom.LocalThermalising)),
		computed(t, qheom.NewThermalising(qheom.GlobalThermalising)),
	}
	p := config.Plot{Elements: "11,21", Coherences: "real", TraceMeasures: "distance"}

	path, err := Export(dir, "dynamics", states, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dynamics_version_0.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 21)
	expected := []string{"t", "1:ρ11", "1:Re(ρ21)", "1:½tr|ρ-ρeq|", "2:ρ11", "2:Re(ρ21)", "2:½tr|ρ-ρeq|"}
	assert.Equal(t, expected, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "1", records[1][1])

	prov, err := config.Load(filepath.Join(dir, "dynamics_version_0.yaml"))
	require.NoError(t, err)
	configs, err := prov.Configs()
	require.NoError(t, err)
	assert.Equal(t, []qheom.Config{states[0].Config, states[1].Config}, configs)
	recorded := p
	recorded.Height, recorded.Width = plot.DefaultOptions.Height, plot.DefaultOptions.Width
	assert.Equal(t, recorded, prov.Plot)

	final, err := mat.ReadCOO(filepath.Join(dir, "dynamics_version_0_rho_2"))
	require.NoError(t, err)
	last := states[1].Trajectory[len(states[1].Trajectory)-1].Rho
	assert.Equal(t, last.At(0, 1), final.At(0, 1))

	path, err = Export(dir, "dynamics", states[:1], p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dynamics_version_1.csv"), path)
	k, err := NextVersion(dir, "dynamics")
	require.NoError(t, err)
	assert.Equal(t, 2, k)
}

func TestExportRecordsPlotSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	states := []*qheom.State{computed(t, qheom.NewDephasing(qheom.LocalDephasing))}
	p := config.Plot{Elements: "11", Height: 8}

	_, err := Export(dir, "dynamics", states, p)
	require.NoError(t, err)
	prov, err := config.Load(filepath.Join(dir, "dynamics_version_0.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, prov.Plot.Height)
	assert.Equal(t, plot.DefaultOptions.Width, prov.Plot.Width)
	assert.Equal(t, p.Options(), prov.Plot.Options())
}

func TestExportRejects(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dephasing := computed(t, qheom.NewDephasing(qheom.LocalDephasing))
	_, err := Export(dir, "dynamics", []*qheom.State{dephasing}, config.Plot{TraceMeasures: "distance"})
	require.Error(t, err)
	_, err = Export(dir, "dynamics", nil, config.Plot{})
	require.Error(t, err)
}
