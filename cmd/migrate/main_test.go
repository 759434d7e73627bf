package main

import (
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	version uint
	upErr   error
	calls   []string
	steps   []int
	forced  int
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.upErr
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	f.version = 0
	return nil
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = append(f.steps, n)
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	if f.version == 0 {
		return 0, false, migrate.ErrNilVersion
	}
	return f.version, false, nil
}

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return nil
}

func TestRunUpIgnoresNoChange(t *testing.T) {
	m := &fakeMigrator{version: 1, upErr: migrate.ErrNoChange}
	require.NoError(t, run(m, []string{"up"}, zerolog.Nop()))
	assert.Equal(t, []string{"up"}, m.calls)
}

func TestRunDownRollsBackOneStepByDefault(t *testing.T) {
	m := &fakeMigrator{version: 1}
	require.NoError(t, run(m, []string{"down"}, zerolog.Nop()))
	assert.Equal(t, []int{-1}, m.steps)

	m = &fakeMigrator{version: 1}
	require.NoError(t, run(m, []string{"down", "all"}, zerolog.Nop()))
	assert.Equal(t, []string{"down"}, m.calls)
}

func TestRunNumericArguments(t *testing.T) {
	m := &fakeMigrator{version: 1}
	require.NoError(t, run(m, []string{"force", "3"}, zerolog.Nop()))
	assert.Equal(t, 3, m.forced)

	require.NoError(t, run(m, []string{"steps", "2"}, zerolog.Nop()))
	assert.Equal(t, []int{2}, m.steps)

	assert.ErrorIs(t, run(m, []string{"force"}, zerolog.Nop()), errUsage)
	assert.ErrorIs(t, run(m, []string{"steps", "two"}, zerolog.Nop()), errUsage)
	assert.ErrorIs(t, run(m, []string{"drop"}, zerolog.Nop()), errUsage)
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/portal?sslmode=disable", pgx5URL("postgres://u:p@db:5432/portal?sslmode=disable"))
	assert.Equal(t, "pgx5://db/portal", pgx5URL("postgresql://db/portal"))
	assert.Equal(t, "pgx5://db/portal", pgx5URL("pgx5://db/portal"))
}
