package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shenikar/resqnet/internal/triage"
)

func NewScoreCmd() *cobra.Command {
	var (
		damageTypes []string
		noDamage    bool
		confidence  float64
		kbPath      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score damage tags with the triage knowledge base",
		Long: `Compute priority and response suggestions for a set of damage tags
without uploading an image. Nothing is stored.

Examples:
  # Score a flooded area
  resqctl score -t flooded_roads

  # Several hazards, custom knowledge base, JSON output
  resqctl score -t structure_fire,road_block --kb kb.yaml -o json

  # Nothing detected on the photo
  resqctl score --no-damage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			if confidence < 0 || confidence > 1 {
				return fmt.Errorf("confidence must be within [0, 1], got %v", confidence)
			}

			kb := triage.DefaultKnowledgeBase()
			if kbPath != "" {
				loaded, err := triage.LoadKnowledgeBase(kbPath)
				if err != nil {
					return fmt.Errorf("failed to load knowledge base: %w", err)
				}
				kb = loaded
			}

			e := triage.NewEngine(kb).Evaluate(triage.DamageAssessment{
				DamageDetected: !noDamage,
				DamageTypes:    triage.NormalizeTags(damageTypes),
				Confidence:     confidence,
			})
			return writeEvaluation(cmd.OutOrStdout(), e, output)
		},
	}

	cmd.Flags().StringSliceVarP(&damageTypes, "types", "t", nil, "Damage tags (e.g. structure_fire,flooded_roads)")
	cmd.Flags().BoolVar(&noDamage, "no-damage", false, "Treat the assessment as having no damage detected")
	cmd.Flags().Float64Var(&confidence, "confidence", 1, "Analyzer confidence in [0, 1]")
	cmd.Flags().StringVar(&kbPath, "kb", "", "Path to a YAML knowledge base (built-in tables by default)")
	cmd.Flags().StringVarP(&output, "output", "o", formatHuman, "Output format (human, json, yaml)")

	return cmd
}
