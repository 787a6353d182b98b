package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/safermobility/testconsole/tester"
	"github.com/spf13/cobra"
)

func (a *app) newTestersCmd() *cobra.Command {
	var (
		kind    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "testers",
		Short: "Register the testers listed in the configuration and show them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter tester.Kind
			if kind != "" {
				k, err := tester.ParseKind(kind)
				if err != nil {
					return err
				}
				filter = k
			}

			reg := prometheus.NewRegistry()
			added := 0
			registry, err := tester.NewRegistry(
				tester.WithGroupLogger(a.logger, "tester"),
				tester.WithRegisterer(reg),
				tester.WithHooks(tester.Hooks{
					OnAdd: func(context.Context, tester.Instance) { added++ },
				}),
			)
			if err != nil {
				return err
			}

			for _, entry := range a.cfg.Testers {
				if _, err := registry.Add(cmd.Context(), tester.Kind(entry.Kind), entry.Name, entry.Endpoint); err != nil {
					return fmt.Errorf("tester %q: %w", entry.Name, err)
				}
			}

			shown := registry.List(filter)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tENDPOINT\tID")
			for _, inst := range shown {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.Kind, inst.Name, inst.Endpoint, inst.ID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tester(s) registered, %d shown\n", added, len(shown))

			if !metrics {
				return nil
			}
			families, err := reg.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show testers of this kind (sip, rtp, media)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "also print the registry metrics in Prometheus text format")

	return cmd
}
