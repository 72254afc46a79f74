package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/analysis"
	"github.com/fumin/qheom/config"
)

// State rebuilds the parts of a qheom.State that analysis needs.
func (r *Run) State() (*qheom.State, error) {
	state := &qheom.State{Config: r.Config, Trajectory: r.Trajectory}
	if len(r.Trajectory) > 0 {
		state.Initial = r.Trajectory[0].Rho
	}
	if r.Config.DynamicsModel().Thermalising() {
		var err error
		if state.Equilibrium, err = qheom.ThermalEquilibriumState(r.Config); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return state, nil
}

// NextVersion returns the smallest k such that no export named <base>_version_<k> exists in dir.
func NextVersion(dir, base string) (int, error) {
	for k := 0; ; k++ {
		_, err := os.Stat(filepath.Join(dir, versioned(base, k)+".csv"))
		if errors.Is(err, os.ErrNotExist) {
			return k, nil
		}
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
	}
}

// Export writes the series selected by p of every state to a new CSV version of base in dir.
// Beside it go a YAML file with the systems and figure arguments, and one directory per state holding its final density matrix.
// It returns the path of the CSV file.
func Export(dir, base string, states []*qheom.State, p config.Plot) (string, error) {
	if len(states) == 0 {
		return "", errors.Errorf("no systems to export")
	}
	configs := make([]qheom.Config, 0, len(states))
	for _, state := range states {
		configs = append(configs, state.Config)
	}
	if err := analysis.CheckComparable(configs); err != nil {
		return "", errors.Wrap(err, "")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "")
	}
	k, err := NextVersion(dir, base)
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	name := versioned(base, k)

	header := []string{"t"}
	columns := make([][]float64, 0)
	for r, state := range states {
		args, err := p.DynamicsArgs(state.Config.Sites())
		if err != nil {
			return "", errors.Wrap(err, "")
		}
		series, err := analysis.Dynamics(state, args.Elements, args.Coherences, args.Measures)
		if err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("system %d", r))
		}
		for _, s := range series {
			header = append(header, fmt.Sprintf("%d:%s", r+1, s.Name))
			columns = append(columns, s.Values)
		}
	}

	csvPath := filepath.Join(dir, name+".csv")
	if err := writeCSV(csvPath, header, states[0].Trajectory.Times(), columns); err != nil {
		return "", errors.Wrap(err, "")
	}

	prov := config.Default()
	prov.Plot = p
	opt := p.Options()
	prov.Plot.Height, prov.Plot.Width = opt.Height, opt.Width
	for _, c := range configs {
		prov.Systems = append(prov.Systems, config.FromConfig(c))
	}
	if err := config.Save(filepath.Join(dir, name+".yaml"), prov); err != nil {
		return "", errors.Wrap(err, "")
	}

	for r, state := range states {
		if len(state.Trajectory) == 0 {
			continue
		}
		rhoDir := filepath.Join(dir, fmt.Sprintf("%s_rho_%d", name, r+1))
		if err := os.MkdirAll(rhoDir, os.ModePerm); err != nil {
			return "", errors.Wrap(err, "")
		}
		final := state.Trajectory[len(state.Trajectory)-1].Rho
		if err := final.COO().WriteCOO(rhoDir); err != nil {
			return "", errors.Wrap(err, "")
		}
	}
	return csvPath, nil
}

func writeCSV(path string, header []string, times []float64, columns [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	if err1 := w.Write(header); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	row := make([]string, len(header))
	for i, t := range times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, c := range columns {
			row[j+1] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func versioned(base string, k int) string {
	return fmt.Sprintf("%s_version_%d", base, k)
}
