package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ierg/nscsync/internal/cli"
	"github.com/ierg/nscsync/internal/engine"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Upload pending submission files to the clearinghouse",
		Long: `Upload every file waiting in the local send directory to the remote send
directory, then move each local copy into the archive with a timestamp
suffix.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, set, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Local.SendPath == "" {
				return fmt.Errorf("nsc.local.send_path is required")
			}

			eng, cleanup, err := buildEngine(ctx, cfg, set)
			if err != nil {
				return err
			}
			defer cleanup()

			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts := engine.SendOptions{DryRun: dryRun}
			if !dryRun {
				opts.ProgressWriter = os.Stderr
			}

			summary, err := eng.Send(ctx, opts)
			if err != nil {
				return err
			}

			line := fmt.Sprintf("%d uploaded, %d archived", summary.Uploaded, summary.Archived)
			if summary.Failed > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%s, %d failed", line, summary.Failed)))
				return nil
			}
			fmt.Println(cli.FormatSuccess(line))
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Report what would be uploaded without transferring anything")
	return cmd
}
