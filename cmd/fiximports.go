package cmd

import (
	"github.com/agentic-research/roleroute/api"
	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/logging"
	"github.com/agentic-research/roleroute/internal/sequencer"
	"github.com/spf13/cobra"
)

var (
	importSymbol string
	importModule string
)

var fixImportsCmd = &cobra.Command{
	Use:   "fix-imports FILE...",
	Short: "Drop an unused named import from the given pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan()
		if err != nil {
			return err
		}
		root := resolveRoot(plan)
		fsys, err := rfs.Open(root)
		if err != nil {
			return err
		}

		log := logging.New(cmd.OutOrStdout(), verbose)
		defer func() { _ = log.Sync() }()

		_, err = sequencer.FixImports(fsys, root, api.ImportFixup{
			Symbol: importSymbol,
			Module: importModule,
			Files:  args,
		}, log)
		return err
	},
}

func init() {
	fixImportsCmd.Flags().StringVar(&importSymbol, "symbol", "redirect", "Imported name to drop")
	fixImportsCmd.Flags().StringVar(&importModule, "module", "next/navigation", "Module the name is imported from")
	rootCmd.AddCommand(fixImportsCmd)
}
