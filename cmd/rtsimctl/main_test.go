package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
)

type cliEnv struct {
	base string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	return cliEnv{base: t.TempDir()}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{
		"--log-level", "error",
		"--store", "memory",
		"--runs-dir", filepath.Join(e.base, "runs"),
		"--exports-dir", filepath.Join(e.base, "exports"),
	}, args...)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestRunThenInspect(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "run", "--run-id", "cli-run", "--seed", "3", "--population", "200", "--ticks", "5")
	if !strings.Contains(out, "run_id=cli-run") || !strings.Contains(out, "ticks=5") {
		t.Fatalf("unexpected run output: %s", out)
	}

	out = env.mustRun(t, "runs", "--format", "csv")
	if !strings.Contains(out, "cli-run") {
		t.Fatalf("expected cli-run in runs listing: %s", out)
	}

	out = env.mustRun(t, "series", "--latest", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header and 5 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(strings.ToLower(lines[0]), "day,susceptible,infected") {
		t.Fatalf("unexpected series header: %s", lines[0])
	}

	out = env.mustRun(t, "transmissions", "--run-id", "cli-run", "--format", "csv", "--limit", "1")
	lines = strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "external") {
		t.Fatalf("expected one seeded external infection row:\n%s", out)
	}

	out = env.mustRun(t, "export", "--latest")
	want := filepath.Join(env.base, "exports", "cli-run")
	if !strings.Contains(out, "to="+want) {
		t.Fatalf("unexpected export output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(want, "summary.json")); err != nil {
		t.Fatalf("expected exported summary: %v", err)
	}
}

func TestProgressPrintsEveryTick(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "run", "--population", "100", "--ticks", "3", "--progress")
	if got := strings.Count(out, " day="); got != 3 {
		t.Fatalf("expected 3 progress lines, got %d:\n%s", got, out)
	}
}

func TestReplicatesAndExperiments(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "replicates", "--run-id", "sweep", "--replicates", "2", "--parallel", "2",
		"--population", "150", "--ticks", "3", "--notes", "smoke", "--format", "markdown")
	if !strings.Contains(out, "experiment_id=sweep runs=2") || !strings.Contains(out, "peak_infected") {
		t.Fatalf("unexpected replicates output: %s", out)
	}

	out = env.mustRun(t, "experiments", "--format", "csv")
	if !strings.Contains(out, "sweep") || !strings.Contains(out, "smoke") {
		t.Fatalf("expected experiment listing: %s", out)
	}
	out = env.mustRun(t, "runs", "--format", "csv")
	if !strings.Contains(out, "sweep-r00") || !strings.Contains(out, "sweep-r01") {
		t.Fatalf("expected replicate runs in listing: %s", out)
	}
}

func TestDefaultsValidateRoundTrip(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "defaults")
	path := filepath.Join(env.base, "defaults.yaml")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write defaults: %v", err)
	}
	out = env.mustRun(t, "validate", "--config", path)
	if !strings.HasPrefix(out, "ok: population=10,000") {
		t.Fatalf("unexpected validate output: %s", out)
	}
}

func TestValidateRejectsInvalidParameters(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.base, "bad.yaml")
	if err := os.WriteFile(path, []byte("population_size: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := env.run(t, "validate", "--config", path)
	if !errors.Is(err, params.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	env := newCLIEnv(t)
	cases := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"bogus"}},
		{name: "series without ref", args: []string{"series"}},
		{name: "series with both refs", args: []string{"series", "--run-id", "x", "--latest"}},
		{name: "export with no runs", args: []string{"export", "--latest"}},
		{name: "bad format", args: []string{"runs", "--format", "xml"}},
		{name: "bad log level", args: []string{"--log-level", "loud", "defaults"}},
		{name: "negative tick length", args: []string{"run", "--tick-days", "-1", "--population", "10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.run(t, tc.args...); err == nil {
				t.Fatalf("expected error for %v", tc.args)
			}
		})
	}
}
