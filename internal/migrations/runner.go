package migrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Store is the bookkeeping side of the runner: it remembers which versions
// have been applied and executes scripts.
type Store interface {
	// EnsureTable creates the bookkeeping table if it does not exist.
	EnsureTable(ctx context.Context) error
	// AppliedVersions lists recorded versions.  It must not create
	// anything, so that Status stays free of side effects.
	AppliedVersions(ctx context.Context) ([]string, error)
	// Apply runs m.Up and records m.Version.
	Apply(ctx context.Context, m Migration) error
	// Revert runs m.Down and forgets m.Version.
	Revert(ctx context.Context, m Migration) error
}

// Result is the outcome of Run.  Applied holds versions applied by this
// call, Skipped those that were already recorded.
type Result struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

// Status describes the database without changing it.
type Status struct {
	IsUpToDate bool     `json:"isUpToDate"`
	Applied    []string `json:"applied"`
	Pending    []string `json:"pending"`
}

// MigrationError identifies the version that failed.
type MigrationError struct {
	Version string
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

var (
	ErrNothingToRevert = errors.New("no applied migration to revert")
	ErrIrreversible    = errors.New("migration has no down script")
)

// Runner applies migrations strictly in declaration order.
type Runner struct {
	store      Store
	migrations []Migration
	log        zerolog.Logger
}

// New validates the declaration order and returns a runner.  Versions must
// be unique, equally padded and strictly increasing.
func New(store Store, migrations []Migration, log zerolog.Logger) (*Runner, error) {
	for i, m := range migrations {
		if m.Version == "" || m.Up == "" {
			return nil, fmt.Errorf("migration %d: version and up script are required", i)
		}
		if i == 0 {
			continue
		}
		prev := migrations[i-1].Version
		if len(m.Version) != len(prev) {
			return nil, fmt.Errorf("migration %s: version padding differs from %s", m.Version, prev)
		}
		if m.Version <= prev {
			return nil, fmt.Errorf("migration %s declared after %s", m.Version, prev)
		}
	}
	return &Runner{store: store, migrations: migrations, log: log}, nil
}

// Migrations returns the declared migrations.
func (r *Runner) Migrations() []Migration { return r.migrations }

// Run applies every pending migration in order.  The first failure stops
// the run: later migrations are not attempted, earlier ones stay recorded
// and the returned error is a *MigrationError.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{Applied: []string{}, Skipped: []string{}}
	if err := r.store.EnsureTable(ctx); err != nil {
		return res, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied, err := r.appliedSet(ctx)
	if err != nil {
		return res, err
	}
	for _, m := range r.migrations {
		if applied[m.Version] {
			res.Skipped = append(res.Skipped, m.Version)
			continue
		}
		r.log.Info().Str("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := r.store.Apply(ctx, m); err != nil {
			r.log.Error().Err(err).Str("version", m.Version).Msg("migration failed")
			return res, &MigrationError{Version: m.Version, Name: m.Name, Err: err}
		}
		res.Applied = append(res.Applied, m.Version)
	}
	return res, nil
}

// Status reports applied and pending versions without side effects.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	versions, err := r.store.AppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("read applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	st := Status{Applied: []string{}, Pending: []string{}}
	for _, m := range r.migrations {
		if applied[m.Version] {
			st.Applied = append(st.Applied, m.Version)
		} else {
			st.Pending = append(st.Pending, m.Version)
		}
	}
	st.IsUpToDate = len(st.Pending) == 0
	return st, nil
}

// RevertLast reverts the most recent applied migration and returns its
// version.
func (r *Runner) RevertLast(ctx context.Context) (string, error) {
	applied, err := r.appliedSet(ctx)
	if err != nil {
		return "", err
	}
	for i := len(r.migrations) - 1; i >= 0; i-- {
		m := r.migrations[i]
		if !applied[m.Version] {
			continue
		}
		if m.Down == "" {
			return "", &MigrationError{Version: m.Version, Name: m.Name, Err: ErrIrreversible}
		}
		r.log.Info().Str("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := r.store.Revert(ctx, m); err != nil {
			return "", &MigrationError{Version: m.Version, Name: m.Name, Err: err}
		}
		return m.Version, nil
	}
	return "", ErrNothingToRevert
}

func (r *Runner) appliedSet(ctx context.Context) (map[string]bool, error) {
	versions, err := r.store.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	set := make(map[string]bool, len(versions))
	for _, v := range versions {
		set[v] = true
	}
	return set, nil
}
