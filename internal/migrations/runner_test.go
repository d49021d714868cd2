package migrations

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records every call so tests can assert on ordering.
type memStore struct {
	tableCreated bool
	applied      map[string]bool
	calls        []string
	failOn       string
}

func newMemStore(applied ...string) *memStore {
	s := &memStore{applied: map[string]bool{}}
	for _, v := range applied {
		s.applied[v] = true
	}
	return s
}

func (s *memStore) EnsureTable(context.Context) error {
	s.tableCreated = true
	return nil
}

func (s *memStore) AppliedVersions(context.Context) ([]string, error) {
	out := []string{}
	for v := range s.applied {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) Apply(_ context.Context, m Migration) error {
	s.calls = append(s.calls, "up:"+m.Version)
	if m.Version == s.failOn {
		return errors.New("syntax error at or near \"CREAT\"")
	}
	s.applied[m.Version] = true
	return nil
}

func (s *memStore) Revert(_ context.Context, m Migration) error {
	s.calls = append(s.calls, "down:"+m.Version)
	delete(s.applied, m.Version)
	return nil
}

func fiveMigrations() []Migration {
	out := make([]Migration, 0, 5)
	for _, v := range []string{"0001", "0002", "0003", "0004", "0005"} {
		out = append(out, Migration{Version: v, Name: "step_" + v, Up: "SELECT " + v, Down: "SELECT -" + v})
	}
	return out
}

func newRunner(t *testing.T, s Store, ms []Migration) *Runner {
	t.Helper()
	r, err := New(s, ms, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestRun_AppliesAllOnEmptyDatabase(t *testing.T) {
	s := newMemStore()
	r := newRunner(t, s, fiveMigrations())

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, s.tableCreated)
	assert.Equal(t, []string{"0001", "0002", "0003", "0004", "0005"}, res.Applied)
	assert.Empty(t, res.Skipped)

	st, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.IsUpToDate)
	assert.Empty(t, st.Pending)
}

func TestRun_SecondRunIsNoop(t *testing.T) {
	s := newMemStore()
	r := newRunner(t, s, fiveMigrations())

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	s.calls = nil

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Len(t, res.Skipped, 5)
	assert.Empty(t, s.calls)
}

func TestRun_AppliesOnlyPendingInOrder(t *testing.T) {
	s := newMemStore("0001", "0002", "0003")
	r := newRunner(t, s, fiveMigrations())

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0004", "0005"}, res.Applied)
	assert.Equal(t, []string{"0001", "0002", "0003"}, res.Skipped)
	assert.Equal(t, []string{"up:0004", "up:0005"}, s.calls)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	s := newMemStore("0001")
	s.failOn = "0003"
	r := newRunner(t, s, fiveMigrations())

	res, err := r.Run(context.Background())
	require.Error(t, err)

	var merr *MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "0003", merr.Version)
	assert.Contains(t, err.Error(), "0003")

	assert.Equal(t, []string{"0002"}, res.Applied)
	assert.Equal(t, []string{"up:0002", "up:0003"}, s.calls, "0004 and 0005 must not be attempted")

	st, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.IsUpToDate)
	assert.Equal(t, []string{"0001", "0002"}, st.Applied)
	assert.Equal(t, []string{"0003", "0004", "0005"}, st.Pending)
}

func TestStatus_HasNoSideEffects(t *testing.T) {
	s := newMemStore("0001")
	r := newRunner(t, s, fiveMigrations())

	st, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, s.tableCreated)
	assert.Empty(t, s.calls)
	assert.Equal(t, []string{"0001"}, st.Applied)
	assert.Equal(t, []string{"0002", "0003", "0004", "0005"}, st.Pending)
}

func TestNew_RejectsBadDeclarationOrder(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
	}{
		{"out of order", []string{"0001", "0003", "0002"}},
		{"duplicate", []string{"0001", "0001"}},
		{"inconsistent padding", []string{"0001", "02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := make([]Migration, len(tt.versions))
			for i, v := range tt.versions {
				ms[i] = Migration{Version: v, Name: "m", Up: "SELECT 1"}
			}
			_, err := New(newMemStore(), ms, zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestRevertLast(t *testing.T) {
	s := newMemStore("0001", "0002")
	r := newRunner(t, s, fiveMigrations())

	v, err := r.RevertLast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0002", v)
	assert.Equal(t, []string{"down:0002"}, s.calls)

	ms := fiveMigrations()
	ms[0].Down = ""
	r = newRunner(t, s, ms)
	_, err = r.RevertLast(context.Background())
	assert.ErrorIs(t, err, ErrIrreversible)

	_, err = newRunner(t, newMemStore(), ms).RevertLast(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRevert)
}
