package quizcli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/domain/match"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/domain/results"
	"github.com/okian/pcbvalues/internal/submit"
)

type resultsOptions struct {
	query      string
	population string
	server     bool
}

func (a *app) resultsCommand() *cobra.Command {
	var opts resultsOptions
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show a result and the closest matches",
		Long: `Show every axis of a result with its tier, warn when it was already
submitted, and list the closest people of the gallery.

The gallery comes from a JSON dump (--population) or from the score store
(--server). Without either, matches are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runResults(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.query, "query", "", "Result query printed by take")
	cmd.Flags().StringVar(&opts.population, "population", "", "Gallery JSON file")
	cmd.Flags().BoolVar(&opts.server, "server", false, "Read the gallery from the score store")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runResults(cmd *cobra.Command, opts resultsOptions) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	params, err := a.verifiedParams(opts.query, ds.AxisCount())
	if err != nil {
		return err
	}

	for i, v := range ds.Values {
		a.printf("%s\n", renderAxis(v, params.Score[i]))
	}

	store, err := a.session()
	if err != nil {
		return err
	}
	guard := submit.NewGuard(nil, store, nil, submit.WithClock(a.now))
	if msg, dup := guard.DuplicateWarning(params.Score); dup {
		a.printf("\n%s\n", warningStyle.Render(msg))
	}

	var population []model.Score
	switch {
	case opts.population != "":
		population, err = readPopulation(opts.population)
	case opts.server:
		population, err = a.fetchPopulation(cmd.Context())
	default:
		return nil
	}
	if err != nil {
		return err
	}

	ranked, err := match.Rank(params.Score, population, a.cfg.Weights())
	if err != nil {
		return err
	}
	a.printMatches(ranked)
	return nil
}

// verifiedParams parses a result query and rejects hand-edited scores.
func (a *app) verifiedParams(query string, axes int) (results.Params, error) {
	params, err := results.Parse(query, axes)
	if err != nil {
		return results.Params{}, err
	}
	if err := params.Verify(); err != nil {
		return results.Params{}, fmt.Errorf("result cannot be trusted: %w", err)
	}
	return params, nil
}

// printMatches shows the closest match and the next ones up to the
// configured limit.
func (a *app) printMatches(ranked []model.Match) {
	if len(ranked) == 0 {
		a.printf("\n%s\n", mutedStyle.Render("Nobody in the gallery yet."))
		return
	}
	limit := a.cfg.MatchLimit
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}

	best := ranked[0]
	a.printf("\n%s %s %s\n", titleStyle.Render("Closest match:"), best.Name, mutedStyle.Render(similarity(best.Bias)))
	if limit > 1 {
		a.printf("%s\n", titleStyle.Render("Next closest:"))
		for _, m := range ranked[1:limit] {
			popular := ""
			if m.Popular() {
				popular = " ★"
			}
			a.printf("  %s%s %s\n", m.Name, popular, mutedStyle.Render(similarity(m.Bias)))
		}
	}
}

// similarity renders a bias as a match percentage. Weights above one can
// push the bias past 1, which shows as 0%.
func similarity(bias float64) string {
	return fmt.Sprintf("(%.1f%% match)", min(max(1-bias, 0), 1)*100)
}
