package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover SESSION_ID",
	Short: "Run the recovery strategy ladder against a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		sessionID := args[0]

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := m.Recover(context.Background(), sessionID)
		if err != nil {
			return fmt.Errorf("recovery failed: %v", err)
		}

		fmt.Printf("Recovered using strategy: %s\n", result.StrategyName)
		fmt.Printf("Recovery type: %s\n", result.RecoveryType)
		if result.State != nil {
			fmt.Printf("Progress: %d/%d\n", result.State.CurrentStep, result.State.TotalSteps)
		}
		return nil
	},
}
