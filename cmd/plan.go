package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/agentic-research/roleroute/internal/rules"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"
)

var planQuery string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the effective plan as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan()
		if err != nil {
			return err
		}
		if err := rules.Validate(plan); err != nil {
			return fmt.Errorf("invalid plan: %w", err)
		}

		var out any = plan
		if planQuery != "" {
			x, err := jp.ParseString(planQuery)
			if err != nil {
				return fmt.Errorf("invalid jsonpath '%s': %w", planQuery, err)
			}
			// jp walks generic JSON values
			raw, err := json.Marshal(plan)
			if err != nil {
				return err
			}
			var doc any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
			out = x.Get(doc)
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planQuery, "query", "q", "", "JSONPath selecting part of the plan")
	rootCmd.AddCommand(planCmd)
}
