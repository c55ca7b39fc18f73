package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/format"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
)

func newValidateCmd() *cobra.Command {
	var config string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a parameter file without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := params.Load(config)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: population=%s variants=%v\n", format.Count(p.PopulationSize), p.VariantNames())
			return nil
		},
	}
	cmd.Flags().StringVar(&config, "config", "", "YAML or JSON parameter file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default parameters as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := params.Marshal(params.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
