package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reasonchain/core/pkg/types"
)

// stepManifest is the YAML shape of each entry under steps in a --file
// manifest, mirroring
// types.Step's JSON fields without the runtime-only ones.
type stepManifest struct {
	ID           string   `yaml:"id"`
	Description  string   `yaml:"description"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Confidence   float64  `yaml:"confidence"`
}

type createManifest struct {
	Problem struct {
		Description string   `yaml:"description"`
		GoalState   string   `yaml:"goalState"`
		Complexity  string   `yaml:"complexity"`
		Constraints []string `yaml:"constraints,omitempty"`
		Domain      string   `yaml:"domain,omitempty"`
	} `yaml:"problem"`
	Strategy struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"strategy"`
	Steps []stepManifest `yaml:"steps"`
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new reasoning session from a step manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		manifestPath, _ := cmd.Flags().GetString("file")
		if manifestPath == "" {
			return fmt.Errorf("--file is required")
		}

		man, err := loadCreateManifest(manifestPath)
		if err != nil {
			return err
		}

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		problem := types.Problem{
			Description: man.Problem.Description,
			GoalState:   man.Problem.GoalState,
			Complexity:  types.Complexity(man.Problem.Complexity),
			Constraints: man.Problem.Constraints,
			Domain:      man.Problem.Domain,
		}
		strategy := types.Strategy{
			Name: types.StrategyName(man.Strategy.Name),
			Type: types.StrategyType(man.Strategy.Type),
		}
		steps := make([]*types.Step, len(man.Steps))
		for i, sm := range man.Steps {
			steps[i] = &types.Step{
				ID:           sm.ID,
				Index:        i,
				Description:  sm.Description,
				Dependencies: sm.Dependencies,
				Confidence:   sm.Confidence,
				Status:       types.StepPending,
			}
		}

		state, err := m.CreateState(context.Background(), problem, steps, strategy, nil)
		if err != nil {
			return fmt.Errorf("failed to create session: %v", err)
		}

		fmt.Printf("Session %s created\n", state.ID)
		fmt.Printf("  Steps: %d\n", state.TotalSteps)
		fmt.Printf("  Strategy: %s (%s)\n", state.Strategy.Name, state.Strategy.Type)
		return nil
	},
}

func loadCreateManifest(path string) (*createManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %v", err)
	}
	var man createManifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %v", err)
	}
	if len(man.Steps) == 0 {
		return nil, fmt.Errorf("manifest defines no steps")
	}
	return &man, nil
}

func init() {
	createCmd.Flags().String("file", "", "Path to a YAML step manifest (required)")
	createCmd.MarkFlagRequired("file")
}
