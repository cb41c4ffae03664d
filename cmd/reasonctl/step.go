package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step SESSION_ID",
	Short: "Execute the next pending step in a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		all, _ := cmd.Flags().GetBool("all")
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

		if all {
			result := m.ExecuteAllSteps(ctx, sessionID)
			if result.Err != nil {
				return fmt.Errorf("step execution failed: %v", result.Err)
			}
			fmt.Printf("Progress: %d/%d\n", result.UpdatedState.CurrentStep, result.UpdatedState.TotalSteps)
			return nil
		}

		result := m.ExecuteNextStep(ctx, sessionID)
		if result.Err != nil {
			return fmt.Errorf("step execution failed: %v", result.Err)
		}
		if result.UpdatedState == nil {
			fmt.Println("No pending steps remain")
			return nil
		}
		fmt.Printf("Progress: %d/%d\n", result.UpdatedState.CurrentStep, result.UpdatedState.TotalSteps)
		return nil
	},
}

func init() {
	stepCmd.Flags().Bool("all", false, "Execute every remaining step instead of just the next one")
}
