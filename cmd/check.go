package cmd

import (
	"fmt"

	rfs "github.com/agentic-research/roleroute/internal/fs"
	"github.com/agentic-research/roleroute/internal/verify"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify a replicated tree: closed namespaces, no aliases, no shared roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan()
		if err != nil {
			return err
		}
		fsys, err := rfs.Open(resolveRoot(plan))
		if err != nil {
			return err
		}

		vs, err := verify.Check(fsys, plan)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, v := range vs {
			fmt.Fprintln(out, v)
		}
		if len(vs) > 0 {
			return fmt.Errorf("%d violation(s)", len(vs))
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
