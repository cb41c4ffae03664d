package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reasonchain/core/pkg/manager"
	"github.com/reasonchain/core/pkg/types"
)

// resourceManifest is a generic apiVersion/kind/metadata/spec envelope,
// the same shape cmd/warren/apply.go parses before dispatching on Kind.
type resourceManifest struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec createManifest `yaml:"spec"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a reasoning-session resource manifest",
	Long: `Apply reads a YAML resource with apiVersion/kind/metadata/spec and
dispatches on Kind.

Examples:
  reasonctl apply -f session.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		filename, _ := cmd.Flags().GetString("file")

		data, err := readFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %v", err)
		}

		var resource resourceManifest
		if err := yaml.Unmarshal(data, &resource); err != nil {
			return fmt.Errorf("failed to parse YAML: %v", err)
		}

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		switch resource.Kind {
		case "ReasoningSession":
			return applyReasoningSession(m, &resource)
		default:
			return fmt.Errorf("unsupported resource kind: %s", resource.Kind)
		}
	},
}

func applyReasoningSession(m *manager.ChainManager, resource *resourceManifest) error {
	spec := resource.Spec
	if len(spec.Steps) == 0 {
		return fmt.Errorf("spec defines no steps")
	}

	problem := types.Problem{
		Description: spec.Problem.Description,
		GoalState:   spec.Problem.GoalState,
		Complexity:  types.Complexity(spec.Problem.Complexity),
		Constraints: spec.Problem.Constraints,
		Domain:      spec.Problem.Domain,
	}
	strategy := types.Strategy{
		Name: types.StrategyName(spec.Strategy.Name),
		Type: types.StrategyType(spec.Strategy.Type),
	}
	steps := make([]*types.Step, len(spec.Steps))
	for i, sm := range spec.Steps {
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

	fmt.Printf("Session %s created from resource %q\n", state.ID, resource.Metadata.Name)
	return nil
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML resource file to apply (required)")
	applyCmd.MarkFlagRequired("file")
}
