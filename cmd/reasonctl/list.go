package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List known sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		metas, err := m.ListSessions(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %v", err)
		}
		if len(metas) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		fmt.Printf("%-30s %-10s %-10s %-25s %s\n", "ID", "STATUS", "PROGRESS", "LAST ACTIVITY", "PROBLEM")
		fmt.Println(strings.Repeat("-", 110))
		for _, meta := range metas {
			progress := fmt.Sprintf("%d/%d", meta.CurrentStep, meta.TotalSteps)
			lastActivity := time.UnixMilli(meta.LastActivity).Format(time.RFC3339)
			summary := meta.ProblemSummary
			if len(summary) > 40 {
				summary = summary[:37] + "..."
			}
			fmt.Printf("%-30s %-10s %-10s %-25s %s\n", meta.ID, meta.Status, progress, lastActivity, summary)
		}
		return nil
	},
}
