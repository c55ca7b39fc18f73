package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/format"
	"github.com/daveselinger/covid-rapid-test-simulation2/pkg/rtsim"
)

type refFlags struct {
	runID  string
	latest bool
}

func (f *refFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.runID, "run-id", "", "run id")
	fs.BoolVar(&f.latest, "latest", false, "use the most recent run from the run index")
}

func (f *refFlags) ref() (rtsim.RunRef, error) {
	if f.runID != "" && f.latest {
		return rtsim.RunRef{}, errors.New("use either --run-id or --latest, not both")
	}
	if f.runID == "" && !f.latest {
		return rtsim.RunRef{}, errors.New("--run-id or --latest is required")
	}
	return rtsim.RunRef{RunID: f.runID, Latest: f.latest}, nil
}

func newRunsCmd(root *rootFlags) *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			mode, err := format.ParseMode(output)
			if err != nil {
				return err
			}
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(cmd.Context(), rtsim.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}
			tb := format.NewTable(mode)
			tb.Header("RUN ID", "CREATED", "SEED", "POP", "TICKS", "PEAK", "PEAK DAY", "DECEASED")
			for _, r := range runs {
				tb.Row(r.RunID, r.CreatedAtUTC, r.Seed, r.PopulationSize, r.Ticks, r.PeakInfected, format.Days(r.PeakDay), r.FinalDeceased)
			}
			fmt.Fprintln(out, tb.String())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&limit, "limit", 20, "max runs to list")
	f.StringVar(&output, "format", "table", "output format: table, markdown, csv")
	return cmd
}

func newSeriesCmd(root *rootFlags) *cobra.Command {
	ref := &refFlags{}
	var output string
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print the per-tick statistics of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runRef, err := ref.ref()
			if err != nil {
				return err
			}
			mode, err := format.ParseMode(output)
			if err != nil {
				return err
			}
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			series, err := client.Series(cmd.Context(), runRef)
			if err != nil {
				return err
			}
			tb := format.NewTable(mode)
			tb.Header("DAY", "SUSCEPTIBLE", "INFECTED", "EXPOSED", "INFECTIOUS", "RECOVERED", "DECEASED",
				"ISOLATED", "VACCINATED", "TESTS", "TESTS PCR", "DAYS LOST")
			for _, s := range series {
				tb.Row(format.Days(s.Day), s.Susceptible, s.Infected, s.Exposed, s.Infectious, s.Recovered, s.Deceased,
					s.Isolated, s.Vaccinated, s.TestsConducted, s.TestsConductedPcr, format.Days(s.DaysLost))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tb.String())
			return nil
		},
	}
	ref.register(cmd.Flags())
	cmd.Flags().StringVar(&output, "format", "table", "output format: table, markdown, csv")
	return cmd
}

func newTransmissionsCmd(root *rootFlags) *cobra.Command {
	ref := &refFlags{}
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "transmissions",
		Short: "Print the infection records of a run in time order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runRef, err := ref.ref()
			if err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("limit must be >= 0")
			}
			mode, err := format.ParseMode(output)
			if err != nil {
				return err
			}
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.Transmissions(cmd.Context(), runRef)
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			tb := format.NewTable(mode)
			tb.Header("TIME", "EXPOSER", "EXPOSED", "VARIANT")
			for _, r := range records {
				tb.Row(format.Days(r.Time), format.Exposer(r.ExposerID), r.ExposedID, r.Variant)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tb.String())
			return nil
		},
	}
	ref.register(cmd.Flags())
	f := cmd.Flags()
	f.IntVar(&limit, "limit", 0, "max records to print (0 prints all)")
	f.StringVar(&output, "format", "table", "output format: table, markdown, csv")
	return cmd
}

func newExperimentsCmd(root *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List replicate experiments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := format.ParseMode(output)
			if err != nil {
				return err
			}
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			exps, err := client.Experiments(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(exps) == 0 {
				fmt.Fprintln(out, "no experiments found")
				return nil
			}
			tb := format.NewTable(mode)
			tb.Header("ID", "STARTED", "BASE SEED", "RUNS", "PEAK MEAN", "DECEASED MEAN", "NOTES")
			for _, e := range exps {
				tb.Row(e.ID, e.StartedAtUTC, e.BaseSeed, e.Aggregate.Runs,
					format.Days(e.Aggregate.PeakInfected.Mean), format.Days(e.Aggregate.Deceased.Mean), format.Truncate(e.Notes, 40))
			}
			fmt.Fprintln(out, tb.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "format", "table", "output format: table, markdown, csv")
	return cmd
}

func newExportCmd(root *rootFlags) *cobra.Command {
	ref := &refFlags{}
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a run's artifacts into an export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runRef, err := ref.ref()
			if err != nil {
				return err
			}
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), rtsim.ExportRequest{RunRef: runRef, OutDir: outDir})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	ref.register(cmd.Flags())
	cmd.Flags().StringVar(&outDir, "out", "", "export output directory (defaults to --exports-dir)")
	return cmd
}
