package quizcli

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/domain/quiz"
	"github.com/okian/pcbvalues/internal/domain/results"
	"github.com/okian/pcbvalues/pkg/logger"
)

var likertLabels = [quiz.Buttons]string{
	"Strongly agree", "Agree", "Neutral", "Disagree", "Strongly disagree",
}

type takeOptions struct {
	short   bool
	shuffle bool
	seed    int64
}

func (a *app) takeCommand() *cobra.Command {
	var opts takeOptions
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Answer the questionnaire",
		Long: `Answer the questionnaire one statement at a time.

Keys: 1-5 from "strongly agree" to "strongly disagree", y/n for yes/no
statements, b to go back. Going back from the first statement leaves the quiz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTake(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.short, "short", false, "Take the short edition")
	cmd.Flags().BoolVar(&opts.shuffle, "shuffle", false, "Shuffle the statements")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Shuffle seed (0 picks one from the clock)")
	return cmd
}

func (a *app) runTake(cmd *cobra.Command, opts takeOptions) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	edition := model.EditionFull
	if opts.short {
		edition = model.EditionShort
	}

	questions := quiz.FilterEdition(ds.Questions, edition)
	if opts.shuffle {
		seed := opts.seed
		if seed == 0 {
			seed = a.now().UnixNano()
		}
		questions = quiz.Shuffle(questions, rand.New(rand.NewSource(seed))) //nolint:gosec // ordering only
	}

	engine, err := quiz.New(questions, edition, quiz.WithAxisCount(ds.AxisCount()))
	if err != nil {
		return err
	}

	state := engine.Start()
	for !engine.Completed(state) {
		next, leave, err := a.ask(engine, state)
		if err != nil {
			return err
		}
		if leave {
			a.printf("%s\n", mutedStyle.Render("Quiz abandoned."))
			return nil
		}
		state = next
	}

	vector, err := engine.Finalize(state)
	if err != nil {
		return err
	}
	params, err := results.Build(vector, engine.Edition())
	if err != nil {
		return err
	}

	store, err := a.session()
	if err != nil {
		return err
	}
	if _, err := store.Stamp(params.Digest, a.now()); err != nil {
		a.log.Warn(cmd.Context(), "failed to record answer time", logger.String("session", store.Path()), logger.Error(err))
	}

	a.printf("\n%s\n", successStyle.Render("Quiz complete."))
	for i, v := range ds.Values {
		a.printf("%s\n", renderAxis(v, vector[i]))
	}
	a.printf("\nquery: %s\n", params.Query())
	return nil
}

// ask shows the current statement and applies one valid key. leave is true
// when the user backs out of the first statement.
func (a *app) ask(engine *quiz.Engine, state quiz.State) (quiz.State, bool, error) {
	text, err := engine.CurrentText(state)
	if err != nil {
		return state, false, err
	}
	yesNo, err := engine.CurrentIsYesNo(state)
	if err != nil {
		return state, false, err
	}
	pos, err := engine.DisplayIndex(state)
	if err != nil {
		return state, false, err
	}

	a.printf("\n%s\n%s\n", mutedStyle.Render(fmt.Sprintf("Question %d of %d", pos, engine.Total())), titleStyle.Render(text))
	if yesNo {
		a.printf("  y) Yes   n) No   b) Back\n")
	} else {
		for i, label := range likertLabels {
			a.printf("  %d) %s\n", i+1, label)
		}
		a.printf("  b) Back\n")
	}

	for {
		a.printf("> ")
		line, err := a.readLine()
		if err != nil {
			return state, false, err
		}
		key := strings.ToLower(line)
		if key == "b" {
			prev, ok := engine.Back(state)
			return prev, !ok, nil
		}
		weight, ok := parseKey(key, yesNo)
		if !ok {
			a.printf("%s\n", warningStyle.Render("Unknown answer "+strconv.Quote(line)))
			continue
		}
		next, _, err := engine.Answer(state, weight)
		if errors.Is(err, quiz.ErrInvalidAnswer) {
			a.printf("%s\n", warningStyle.Render(err.Error()))
			continue
		}
		return next, false, err
	}
}

// parseKey maps a key to an answer weight. Yes/no statements also accept the
// outer Likert keys 1 and 5.
func parseKey(key string, yesNo bool) (float64, bool) {
	if yesNo {
		switch key {
		case "y", "yes", "1":
			return quiz.StronglyAgree, true
		case "n", "no", "5":
			return quiz.StronglyDisagree, true
		}
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	w, err := quiz.WeightForButton(n - 1)
	return w, err == nil
}
