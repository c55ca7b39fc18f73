// rtsimctl runs rapid-testing epidemic simulations and inspects their
// artifacts.
//
// Usage:
//
//	rtsimctl run [--config=<file>] [--seed=<n>] [--population=<n>] [--ticks=<n>]
//	rtsimctl replicates --replicates=<n> [--parallel=<n>] [run flags]
//	rtsimctl runs [--limit=<n>] [--format=table|markdown|csv]
//	rtsimctl series (--run-id=<id> | --latest) [--format=...]
//	rtsimctl transmissions (--run-id=<id> | --latest) [--limit=<n>]
//	rtsimctl experiments
//	rtsimctl export (--run-id=<id> | --latest) [--out=<dir>]
//	rtsimctl validate --config=<file>
//	rtsimctl defaults
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/logging"
	"github.com/daveselinger/covid-rapid-test-simulation2/pkg/rtsim"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	logLevel   string
	logFormat  string
	store      string
	dbPath     string
	runsDir    string
	exportsDir string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "rtsimctl",
		Short: "Stochastic agent-based simulation of rapid testing policies",
		Long: "rtsimctl simulates an epidemic in a population of individual actors\n" +
			"under rapid testing, PCR testing, isolation and vaccination policies.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(flags.logLevel)
			if err != nil {
				return err
			}
			logging.Init(level, flags.logFormat, cmd.ErrOrStderr())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&flags.store, "store", "", "store backend: memory or sqlite (default depends on build tags)")
	pf.StringVar(&flags.dbPath, "db-path", "rtsim.db", "sqlite database path")
	pf.StringVar(&flags.runsDir, "runs-dir", "runs", "directory for run artifacts")
	pf.StringVar(&flags.exportsDir, "exports-dir", "exports", "default export directory")

	root.AddCommand(
		newRunCmd(flags),
		newReplicatesCmd(flags),
		newRunsCmd(flags),
		newSeriesCmd(flags),
		newTransmissionsCmd(flags),
		newExperimentsCmd(flags),
		newExportCmd(flags),
		newValidateCmd(),
		newDefaultsCmd(),
	)
	return root
}

func newClient(flags *rootFlags) (*rtsim.Client, error) {
	return rtsim.New(rtsim.Options{
		StoreKind:  flags.store,
		DBPath:     flags.dbPath,
		RunsDir:    flags.runsDir,
		ExportsDir: flags.exportsDir,
	})
}
