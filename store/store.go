// Package store persists computed trajectories in SQLite and exports them as CSV.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/fumin/qheom"
	"github.com/fumin/qheom/config"
	"github.com/fumin/qheom/mat"
)

const (
	tableRuns  = "runs"
	tableSteps = "steps"
	tableRho   = "rho"
)

// ErrNotFound is returned for runs that are not in the store.
var ErrNotFound = errors.New("not found")

// Run is a stored trajectory together with the system that produced it.
type Run struct {
	ID         int64
	Created    time.Time
	Config     qheom.Config
	Trajectory qheom.Trajectory
}

// Summary describes a run without loading its trajectory.
type Summary struct {
	ID      int64
	Created time.Time
	System  config.System
}

// DB is a SQLite run store.
type DB struct {
	Path string

	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the store at path.
func Open(path string, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, path)
	}
	return &DB{Path: path, db: db, log: log.With().Str("component", "store").Logger()}, nil
}

func (s *DB) Close() error {
	return errors.Wrap(s.db.Close(), "")
}

// Save stores the trajectory of state and returns the id of the new run.
func (s *DB) Save(ctx context.Context, state *qheom.State) (int64, error) {
	b, err := yaml.Marshal(config.FromConfig(state.Config))
	if err != nil {
		return 0, errors.Wrap(err, "")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	id, err := saveRun(ctx, tx, string(b), state.Trajectory)
	if err != nil {
		if err1 := tx.Rollback(); err1 != nil {
			s.log.Error().Err(err1).Msg("rollback")
		}
		return 0, errors.Wrap(err, "")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "")
	}

	s.log.Info().Int64("run", id).Int("steps", len(state.Trajectory)).Int("sites", state.Config.Sites()).Msg("saved")
	return id, nil
}

func saveRun(ctx context.Context, tx *sql.Tx, system string, trajectory qheom.Trajectory) (int64, error) {
	sqlStr := fmt.Sprintf(`INSERT INTO %s (created, system) VALUES (?, ?)`, tableRuns)
	res, err := tx.ExecContext(ctx, sqlStr, time.Now().UTC().Format(time.RFC3339Nano), system)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}

	stepStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (run, k, t, purity) VALUES (?, ?, ?, ?)`, tableSteps))
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	defer stepStmt.Close()
	rhoStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (run, k, i, j, re, im) VALUES (?, ?, ?, ?, ?, ?)`, tableRho))
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	defer rhoStmt.Close()

	for k, step := range trajectory {
		if _, err := stepStmt.ExecContext(ctx, id, k, step.Time, step.Purity); err != nil {
			return 0, errors.Wrap(err, fmt.Sprintf("%d", k))
		}
		n := step.Rho.Rows()
		for i := range n {
			for j := range n {
				v := step.Rho.At(i, j)
				if v == 0 {
					continue
				}
				if _, err := rhoStmt.ExecContext(ctx, id, k, i, j, real(v), imag(v)); err != nil {
					return 0, errors.Wrap(err, fmt.Sprintf("%d %d %d", k, i, j))
				}
			}
		}
	}
	return id, nil
}

// Load reads a run and its trajectory.
func (s *DB) Load(ctx context.Context, id int64) (*Run, error) {
	sum, err := s.summary(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cfg, err := sum.System.Build()
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("run %d", id))
	}
	run := &Run{ID: id, Created: sum.Created, Config: cfg}

	if run.Trajectory, err = s.steps(ctx, id); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := s.fillRho(ctx, id, run.Trajectory, cfg.Sites()); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return run, nil
}

func (s *DB) steps(ctx context.Context, id int64) (qheom.Trajectory, error) {
	sqlStr := fmt.Sprintf(`SELECT t, purity FROM %s WHERE run=? ORDER BY k`, tableSteps)
	rows, err := s.db.QueryContext(ctx, sqlStr, id)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	trajectory := make(qheom.Trajectory, 0)
	for rows.Next() {
		var step qheom.Step
		if err := rows.Scan(&step.Time, &step.Purity); err != nil {
			return nil, errors.Wrap(err, "")
		}
		trajectory = append(trajectory, step)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return trajectory, nil
}

func (s *DB) fillRho(ctx context.Context, id int64, trajectory qheom.Trajectory, sites int) error {
	for k := range trajectory {
		trajectory[k].Rho = mat.NewDense(sites, sites, nil)
	}

	sqlStr := fmt.Sprintf(`SELECT k, i, j, re, im FROM %s WHERE run=? ORDER BY k, i, j`, tableRho)
	rows, err := s.db.QueryContext(ctx, sqlStr, id)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer rows.Close()
	for rows.Next() {
		var k, i, j int
		var re, im float64
		if err := rows.Scan(&k, &i, &j, &re, &im); err != nil {
			return errors.Wrap(err, "")
		}
		if k >= len(trajectory) || i >= sites || j >= sites {
			return errors.Errorf("element (%d, %d) of step %d outside a %d step trajectory of %d sites", i, j, k, len(trajectory), sites)
		}
		trajectory[k].Rho.Set(i, j, complex(re, im))
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s *DB) summary(ctx context.Context, id int64) (Summary, error) {
	sqlStr := fmt.Sprintf(`SELECT created, system FROM %s WHERE id=?`, tableRuns)
	var created, system string
	if err := s.db.QueryRowContext(ctx, sqlStr, id).Scan(&created, &system); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, errors.Wrap(ErrNotFound, fmt.Sprintf("run %d", id))
		}
		return Summary{}, errors.Wrap(err, "")
	}
	return parseSummary(id, created, system)
}

// List returns every stored run, oldest first.
func (s *DB) List(ctx context.Context) ([]Summary, error) {
	sqlStr := fmt.Sprintf(`SELECT id, created, system FROM %s ORDER BY id`, tableRuns)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var id int64
		var created, system string
		if err := rows.Scan(&id, &created, &system); err != nil {
			return nil, errors.Wrap(err, "")
		}
		sum, err := parseSummary(id, created, system)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return summaries, nil
}

// Delete removes a run and its trajectory.
func (s *DB) Delete(ctx context.Context, id int64) error {
	sqlStr := fmt.Sprintf(`DELETE FROM %s WHERE id=?`, tableRuns)
	res, err := s.db.ExecContext(ctx, sqlStr, id)
	if err != nil {
		return errors.Wrap(err, "")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, fmt.Sprintf("run %d", id))
	}
	s.log.Info().Int64("run", id).Msg("deleted")
	return nil
}

func parseSummary(id int64, created, system string) (Summary, error) {
	sum := Summary{ID: id}
	var err error
	if sum.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Summary{}, errors.Wrap(err, "")
	}
	if err := yaml.Unmarshal([]byte(system), &sum.System); err != nil {
		return Summary{}, errors.Wrap(err, fmt.Sprintf("run %d", id))
	}
	return sum, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, created TEXT, system TEXT) STRICT`, tableRuns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run INTEGER REFERENCES %s(id) ON DELETE CASCADE, k INTEGER, t REAL, purity REAL, PRIMARY KEY (run, k)) STRICT`, tableSteps, tableRuns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run INTEGER REFERENCES %s(id) ON DELETE CASCADE, k INTEGER, i INTEGER, j INTEGER, re REAL, im REAL, PRIMARY KEY (run, k, i, j)) STRICT`, tableRho, tableRuns),
	}
	for _, sqlStr := range stmts {
		if _, err := db.ExecContext(ctx, sqlStr); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}
