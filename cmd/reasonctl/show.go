package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show SESSION_ID",
	Short: "Show a session's full reasoning chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		sessionID := args[0]

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		state, err := m.Load(context.Background(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %v", err)
		}

		fmt.Printf("Session: %s\n", state.ID)
		fmt.Printf("Problem: %s\n", state.Problem.Description)
		fmt.Printf("Goal: %s\n", state.Problem.GoalState)
		fmt.Printf("Strategy: %s (%s)\n", state.Strategy.Name, state.Strategy.Type)
		fmt.Printf("Progress: %d/%d\n", state.CurrentStep, state.TotalSteps)
		fmt.Printf("Checkpoints: %d\n\n", len(state.Checkpoints))

		fmt.Println("Steps:")
		for _, s := range state.Steps {
			marker := " "
			if s.Index == state.CurrentStep {
				marker = ">"
			}
			deps := ""
			if len(s.Dependencies) > 0 {
				deps = fmt.Sprintf(" deps=%v", s.Dependencies)
			}
			fmt.Printf("%s [%d] %-10s %-8s confidence=%.2f%s\n", marker, s.Index, s.ID, s.Status, s.Confidence, deps)
			if s.Description != "" {
				fmt.Printf("      %s\n", s.Description)
			}
			for _, e := range s.Errors {
				fmt.Printf("      error: %s\n", e)
			}
		}
		return nil
	},
}
