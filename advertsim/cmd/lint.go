package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/config"
)

var errLint = errors.New("lint failed")

var lintCmd = &cobra.Command{
	Use:   "lint [catalog or scenario file]",
	Short: "Check a catalog for broken references.",
	Long: "`lint [catalog file]` checks that every weighted random entry of " +
		"the catalog resolves to a voiceline. With --scenario, the argument " +
		"is a scenario and the references of its groups are checked too.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isScenario, _ := cmd.Flags().GetBool("scenario")

		var problems []error
		if isScenario {
			problems = lintScenario(args[0])
		} else {
			problems = lintCatalog(args[0])
		}

		return report(cmd.OutOrStdout(), args[0], problems)
	},
}

func init() {
	lintCmd.Flags().Bool("scenario", false,
		"Treat the argument as a scenario file.")

	rootCmd.AddCommand(lintCmd)
}

func lintCatalog(path string) []error {
	store, err := catalog.LoadFile(path)
	if err != nil {
		return []error{err}
	}

	return unwrapJoined(store.Validate())
}

func lintScenario(path string) []error {
	scenario, err := config.LoadFile(path)
	if err != nil {
		return unwrapJoined(err)
	}

	store, err := catalog.LoadFile(scenario.Catalog)
	if err != nil {
		return []error{err}
	}

	problems := unwrapJoined(store.Validate())
	known := store.WeightedRandomIDs()

	for _, g := range scenario.Emitters {
		if !slices.Contains(known, g.Voicelines) {
			problems = append(problems, fmt.Errorf(
				"emitter group %s: %w: %s",
				g.Name, catalog.ErrUnknownReference, g.Voicelines))
		}
	}

	for _, g := range scenario.NPCs {
		if !slices.Contains(known, g.Voicelines) {
			problems = append(problems, fmt.Errorf(
				"npc group %s: %w: %s",
				g.Name, catalog.ErrUnknownReference, g.Voicelines))
		}
	}

	return problems
}

func unwrapJoined(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}

	return []error{err}
}

func report(w io.Writer, path string, problems []error) error {
	if len(problems) == 0 {
		fmt.Fprintf(w, "%s: ok\n", path)
		return nil
	}

	for _, p := range problems {
		fmt.Fprintf(w, "%s: %v\n", path, p)
	}

	return fmt.Errorf("%w: %d problem(s)", errLint, len(problems))
}
