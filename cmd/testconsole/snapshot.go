package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/safermobility/testconsole/snapshot"
	"github.com/safermobility/testconsole/util"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

func (a *app) newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored INVITE previews",
	}
	cmd.AddCommand(
		a.newSnapshotSaveCmd(),
		a.newSnapshotListCmd(),
		a.newSnapshotShowCmd(),
		a.newSnapshotRmCmd(),
	)
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(fn func(snapshot.Store) error) error {
	store, closeStore, err := snapshot.Open(a.cfg.SnapshotConfig(), a.logger.WithGroup("snapshot"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			a.logger.Warn("closing snapshot store", util.SlogError(err))
		}
	}()
	return fn(store)
}

func (a *app) newSnapshotSaveCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "save NAME [file|-]",
		Short: "Generate the preview of a payload or raw INVITE and store it under NAME",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			inv, err := a.loadInvite(data)
			if err != nil {
				return err
			}
			return a.withStore(func(store snapshot.Store) error {
				saved, err := store.Save(cmd.Context(), snapshot.Snapshot{
					Name:  args[0],
					Group: group,
					Text:  a.proc.Generate(inv),
				})
				if err != nil {
					return err
				}
				a.logger.Info("snapshot saved", slog.String("name", saved.Name), slog.String("id", saved.ID))
				fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group the snapshot belongs to")

	return cmd
}

func (a *app) newSnapshotListCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(store snapshot.Store) error {
				list, err := store.List(cmd.Context(), group)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tGROUP\tUPDATED\tID")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Group, s.UpdatedAt.Format(time.RFC3339), s.ID)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "only list snapshots in this group")

	return cmd
}

func (a *app) newSnapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store snapshot.Store) error {
				s, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), s.Text)
				return nil
			})
		},
	}
}

func (a *app) newSnapshotRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a stored preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store snapshot.Store) error {
				return store.Delete(cmd.Context(), args[0])
			})
		},
	}
}
