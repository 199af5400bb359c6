package cmd

import (
	"fmt"

	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/logging"
	"github.com/agentic-research/roleroute/internal/sequencer"
	"github.com/spf13/cobra"
)

var (
	staged    bool
	dryRun    bool
	aliasMode string
	validate  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replicate modules, rewrite their links and clean up superseded roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan()
		if err != nil {
			return err
		}
		if aliasMode != "" {
			plan.AliasMode = aliasMode
		}
		root := resolveRoot(plan)

		fsys, err := rfs.Open(root)
		if err != nil {
			return err
		}

		log := logging.New(cmd.OutOrStdout(), verbose)
		defer func() { _ = log.Sync() }()

		seq, err := sequencer.New(fsys, plan, log, sequencer.Options{
			Root:     root,
			Staged:   staged,
			DryRun:   dryRun,
			Validate: validate,
		})
		if err != nil {
			return err
		}

		rep, err := seq.Run()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if dryRun {
			for _, a := range rep.PlannedActions {
				fmt.Fprintln(out, a)
			}
			return nil
		}
		fmt.Fprintf(out, "Deep copy complete: %d copied, %d skipped, %d files relinked.\n",
			len(rep.Copied), len(rep.Skipped), len(rep.Rewritten))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&staged, "staged", false, "Copy into a staging directory and rename over each target")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the jobs without touching the tree")
	runCmd.Flags().StringVar(&aliasMode, "alias-mode", "", "Alias detection: markers, structural or both")
	runCmd.Flags().BoolVar(&validate, "validate", false, "Warn when a link rewrite breaks a page's syntax")
	rootCmd.AddCommand(runCmd)
}
