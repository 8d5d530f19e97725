package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
)

var matchCmd = &cobra.Command{
	Use:   "match <name>",
	Short: "Match a name against the canonical registry",
	Long: `Match runs one candidate name through the matching engine without
writing anything: exact, then alias, then fuzzy. A no-match prints the
nearest suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().String("kind", "organization", "candidate kind (organization|person)")
	matchCmd.Flags().String("date", "", "effective date for alias validity (YYYY-MM-DD)")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	kindFlag, _ := cmd.Flags().GetString("kind")
	candidate := match.CandidateRecord{
		Kind: registry.ParseEntityKind(kindFlag),
		Name: args[0],
	}
	if dateFlag, _ := cmd.Flags().GetString("date"); dateFlag != "" {
		d, err := registry.ParseDate(dateFlag)
		if err != nil {
			return err
		}
		candidate.EffectiveDate = d
	}

	res, err := match.Match(candidate, a.reg, match.WithThreshold(cfg.MatchThreshold))
	if err != nil {
		return err
	}
	if cfg.Output == "json" || cfg.Output == "yaml" {
		return emit(res)
	}

	if !res.Matched() {
		fmt.Println("no match")
		for _, s := range res.Suggestions {
			fmt.Printf("  suggestion: %s (%s, score %.3f)\n", s.Name, s.ID, s.Score)
		}
		return nil
	}
	fmt.Printf("matched %s via %s (confidence %.3f)\n", res.MatchedID, res.Method, res.Confidence)
	return nil
}
