package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Run the startup restoration ladder over every persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		report, err := m.RestoreAll(context.Background())
		if err != nil {
			return fmt.Errorf("restoration failed: %v", err)
		}

		for _, stage := range report.Stages {
			fmt.Printf("Stage %s: %d sessions\n", stage.Stage, len(stage.SessionIDs))
			for _, r := range stage.Results {
				status := "ok"
				if !r.OK {
					status = "failed"
				}
				fmt.Printf("  %-30s %-8s health=%d repaired=%v recovered=%v\n", r.SessionID, status, r.HealthScore, r.Repaired, r.Recovered)
			}
		}
		fmt.Printf("\nSucceeded: %d  Failed: %d\n", report.SuccessfulRestorations, report.FailedRestorations)
		if report.Aborted {
			fmt.Println("Restoration aborted: failure ratio exceeded threshold")
		}
		return nil
	},
}
