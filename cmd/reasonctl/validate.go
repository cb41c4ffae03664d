package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate SESSION_ID",
	Short: "Run the validation pipeline against a session, optionally repairing issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		repair, _ := cmd.Flags().GetBool("repair")
		sessionID := args[0]

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := context.Background()
		if _, err := m.Load(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to load session: %v", err)
		}

		report, err := m.ValidateHealth(ctx, sessionID, repair)
		if err != nil {
			return fmt.Errorf("validation failed: %v", err)
		}

		fmt.Printf("Health score: %d/100\n", report.HealthScore)
		if len(report.Issues) == 0 {
			fmt.Println("No issues found")
			return nil
		}
		fmt.Printf("Issues (%d):\n", len(report.Issues))
		for _, issue := range report.Issues {
			loc := ""
			if issue.Location != "" {
				loc = " @ " + issue.Location
			}
			fmt.Printf("  [%s] %s: %s%s\n", issue.Severity, issue.Code, issue.Category, loc)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("repair", false, "Apply auto-repair for repairable issues")
}
