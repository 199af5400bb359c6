package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/roleroute/api"
	"github.com/agentic-research/roleroute/internal/rules"
	"github.com/spf13/cobra"
)

var (
	planPath string
	rootDir  string
	verbose  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&planPath, "plan", "p", "", "Path to an HCL plan file (default: built-in plan)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Application route directory (default: plan root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

var rootCmd = &cobra.Command{
	Use:           "roleroute",
	Short:         "Replicate shared route modules into role namespaces",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadPlan returns the plan named by --plan, or the built-in table.
func loadPlan() (*api.Plan, error) {
	if planPath == "" {
		return rules.Default(), nil
	}
	p, err := rules.LoadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return p, nil
}

// resolveRoot picks --root over the plan's own root.
func resolveRoot(p *api.Plan) string {
	if rootDir != "" {
		return rootDir
	}
	if p.Root != "" {
		return p.Root
	}
	return rules.DefaultRoot
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
