package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"transmittal/internal/service/form"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generated transmittals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.storage.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transmittals generated yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tDATE\tRECIPIENT\tPROJECT\tITEMS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.TransmittalNumber, e.Date, e.RecipientCompany, e.ProjectName, e.ItemCount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var settings, key bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the local generation history",
		Long: `Forget the local generation history. With --settings the saved sender
settings are removed too, with --key the stored API key. Number counters are
never reset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := []string{form.HistoryKey}
			if settings {
				keys = append(keys, form.SettingsKey)
			}
			if key {
				keys = append(keys, form.APIKeyKey)
			}
			if err := a.storage.Forget(cmd.Context(), keys...); err != nil {
				return err
			}
			a.logger.Info("local data cleared", "entries", keys)
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&settings, "settings", false, "also remove the saved sender settings")
	cmd.Flags().BoolVar(&key, "key", false, "also remove the stored API key")
	return cmd
}
