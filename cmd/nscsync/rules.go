package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ierg/nscsync/internal/cli"
	"github.com/ierg/nscsync/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Inspect and test the rename rules",
		Long: `Inspect the configured rename rules and test how a given remote filename
would be classified, renamed, and dispatched, without touching the endpoint.`,
	}

	// Subcommands
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rename rules in precedence order",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, set, err := loadConfig()
			if err != nil {
				return err
			}

			defs := set.Rules()
			if len(defs) == 0 {
				fmt.Println(cli.FormatWarning("No rename rules configured"))
				return nil
			}

			// Display rules in a table, first match wins top to bottom.
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tNAME\tMODE\tIMPORT\tPATTERN\tREPLACE")
			_, _ = fmt.Fprintln(w, "─\t────\t────\t──────\t───────\t───────")

			for i, def := range defs {
				importFlag := ""
				if def.Import {
					importFlag = cli.SuccessIcon
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					i+1, def.Name, def.Mode, importFlag, def.Pattern, def.Replace)
			}

			return w.Flush()
		},
	}
}

func rulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <filename>",
		Short: "Show how a remote filename would be handled",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, set, err := loadConfig()
			if err != nil {
				return err
			}

			name := args[0]

			fields, err := rules.ParseFilename(name)
			if err != nil {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("Not a convention filename, would be quarantined: %v", err)))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			values := fields.PlaceholderValues()
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(w, "{%s}\t%s\n", k, values[k])
			}
			_ = w.Flush()

			match, err := set.Classify(fields.SubmittedName)
			if err != nil {
				if errors.Is(err, rules.ErrNoMatch) {
					fmt.Println(cli.FormatWarning("No rule matches, file would be quarantined"))
					return nil
				}
				return err
			}

			rendered, err := rules.Render(match, fields)
			if err != nil {
				fmt.Println(cli.FormatError(fmt.Sprintf("Rule %s matched but rendering failed: %v", match.Rule.Name, err)))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Rule %s matches", match.Rule.Name)))
			fmt.Printf("  local name: %s\n", rendered)

			if rules.ShouldImport(match.Rule, fields, cfg.Import.Type) {
				fmt.Println(cli.StyleSubtle("  would trigger the import command"))
			}
			return nil
		},
	}
}
