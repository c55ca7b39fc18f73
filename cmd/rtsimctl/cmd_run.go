package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/format"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/stats"
	"github.com/daveselinger/covid-rapid-test-simulation2/pkg/rtsim"
)

type runFlags struct {
	config     string
	runID      string
	seed       int64
	population int
	ticks      int
	tickDays   float64
	workers    int
	progress   bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "YAML or JSON parameter file layered over the defaults")
	fs.StringVar(&f.runID, "run-id", "", "run id (generated when empty)")
	fs.Int64Var(&f.seed, "seed", 0, "random seed override")
	fs.IntVar(&f.population, "population", 0, "population size override")
	fs.IntVar(&f.ticks, "ticks", 100, "number of ticks")
	fs.Float64Var(&f.tickDays, "tick-days", 1, "simulated days per tick")
	fs.IntVar(&f.workers, "workers", 1, "goroutines used for disease progression")
	fs.BoolVar(&f.progress, "progress", false, "print statistics after every tick")
}

func (f *runFlags) request(cmd *cobra.Command) rtsim.RunRequest {
	req := rtsim.RunRequest{
		RunID:      f.runID,
		ConfigPath: f.config,
		Seed:       f.seed,
		Population: f.population,
		Ticks:      f.ticks,
		TickDays:   f.tickDays,
		Workers:    f.workers,
	}
	if f.progress {
		out := cmd.OutOrStdout()
		req.OnTick = func(runID string, s model.RunStatistics) {
			fmt.Fprintf(out, "run_id=%s day=%s susceptible=%d infected=%d recovered=%d deceased=%d isolated=%d\n",
				runID, format.Days(s.Day), s.Susceptible, s.Infected, s.Recovered, s.Deceased, s.Isolated)
		}
	}
	return req
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and write its artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(root)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Run(cmd.Context(), flags.request(cmd))
			if err != nil {
				return err
			}
			s := summary.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s ticks=%d peak_infected=%d peak_day=%s attack_rate=%s deceased=%d artifacts=%s\n",
				summary.RunID, s.Ticks, s.PeakInfected, format.Days(s.PeakDay), format.Percent(s.AttackRate), s.Final.Deceased, summary.ArtifactsDir)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newReplicatesCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	var (
		replicates int
		parallel   int
		notes      string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "replicates",
		Short: "Run seed replicates of one configuration and aggregate them",
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

			summary, err := client.Replicates(cmd.Context(), rtsim.ReplicatesRequest{
				RunRequest: flags.request(cmd),
				Replicates: replicates,
				Parallel:   parallel,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "experiment_id=%s runs=%d\n", summary.ExperimentID, summary.Aggregate.Runs)
			fmt.Fprintln(out, aggregateTable(mode, summary.Aggregate))
			return nil
		},
	}
	flags.register(cmd.Flags())
	f := cmd.Flags()
	f.IntVar(&replicates, "replicates", 10, "number of replicate runs")
	f.IntVar(&parallel, "parallel", 1, "replicates run concurrently")
	f.StringVar(&notes, "notes", "", "free-form notes stored with the experiment")
	f.StringVar(&output, "format", "table", "output format: table, markdown, csv")
	return cmd
}

func aggregateTable(mode format.Mode, agg stats.Aggregate) string {
	tb := format.NewTable(mode)
	tb.Header("METRIC", "MEAN", "STD", "MIN", "MAX")
	for _, row := range []struct {
		name string
		d    stats.Distribution
	}{
		{"peak_infected", agg.PeakInfected},
		{"peak_day", agg.PeakDay},
		{"deceased", agg.Deceased},
		{"attack_rate", agg.AttackRate},
		{"tests_conducted", agg.TestsConducted},
		{"days_lost", agg.DaysLost},
	} {
		tb.Row(row.name, format.Days(row.d.Mean), format.Days(row.d.Std), format.Days(row.d.Min), format.Days(row.d.Max))
	}
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	return tb.String()
}
