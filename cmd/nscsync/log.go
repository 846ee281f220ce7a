package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ierg/nscsync/internal/cli"
)

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sync ledger entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			limit, _ := cmd.Flags().GetInt("limit")
			events, err := store.RecentEvents(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to read sync ledger: %w", err)
			}

			if len(events) == 0 {
				fmt.Println(cli.StyleSubtle("No sync events recorded yet"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "WHEN\tSTATUS\tRULE\tREMOTE\tLOCAL")
			_, _ = fmt.Fprintln(w, "────\t──────\t────\t──────\t─────")

			for _, e := range events {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Status,
					e.Rule,
					e.RemoteName,
					e.LocalName)
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")
	return cmd
}
