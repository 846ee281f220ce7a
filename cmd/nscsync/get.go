package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ierg/nscsync/internal/cli"
	"github.com/ierg/nscsync/internal/engine"
)

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve and classify new files from the clearinghouse",
		Long: `Retrieve files from the remote receive directory that are newer than the
stored watermark, classify each against the rename rules, land it locally
under its rendered name (or quarantine it), and trigger the import command
for eligible report files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, set, err := loadConfig()
			if err != nil {
				return err
			}

			eng, cleanup, err := buildEngine(ctx, cfg, set)
			if err != nil {
				return err
			}
			defer cleanup()

			all, _ := cmd.Flags().GetBool("all")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noImport, _ := cmd.Flags().GetBool("no-import")
			purge, _ := cmd.Flags().GetBool("purge-remote")
			workers, _ := cmd.Flags().GetInt("workers")

			opts := engine.GetOptions{
				All:         all,
				DryRun:      dryRun,
				NoImport:    noImport,
				PurgeRemote: purge,
				Workers:     workers,
			}
			if !dryRun {
				opts.ProgressWriter = os.Stderr
			}

			summary, err := eng.Get(ctx, opts)
			if err != nil {
				return err
			}

			printGetSummary(summary, dryRun)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Ignore the watermark and consider every remote file")
	cmd.Flags().Bool("dry-run", false, "Classify and report without transferring anything")
	cmd.Flags().Bool("no-import", false, "Skip the database import command")
	cmd.Flags().Bool("purge-remote", false, "Remove each file from the remote directory after retrieval")
	cmd.Flags().IntP("workers", "w", 4, "Number of concurrent transfers")
	return cmd
}

func printGetSummary(s *engine.GetSummary, dryRun bool) {
	if dryRun {
		fmt.Println(cli.FormatTitle("Dry run"))
	}

	line := fmt.Sprintf("%d listed, %d skipped, %d fetched, %d renamed, %d quarantined, %d imported",
		s.Listed, s.Skipped, s.Fetched, s.Renamed, s.Quarantined, s.Imported)
	if s.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%s, %d failed", line, s.Failed)))
		return
	}
	fmt.Println(cli.FormatSuccess(line))
}
