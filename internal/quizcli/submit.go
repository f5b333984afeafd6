package quizcli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/submit"
)

type submitOptions struct {
	query string
	name  string
}

func (a *app) submitCommand() *cobra.Command {
	var opts submitOptions
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a result to the score store",
		Long: `Submit a result to the score store.

You are asked to confirm the name. When the name is taken the store shows the
stored score and asks whether to override it. If the store cannot be reached
the payload can be exported to a file and imported later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSubmit(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.query, "query", "", "Result query printed by take")
	cmd.Flags().StringVar(&opts.name, "name", "", "Name to submit under")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runSubmit(cmd *cobra.Command, opts submitOptions) error {
	ds, err := a.dataset()
	if err != nil {
		return err
	}
	params, err := a.verifiedParams(opts.query, ds.AxisCount())
	if err != nil {
		return err
	}
	store, err := a.session()
	if err != nil {
		return err
	}

	client := submit.NewClient(a.cfg.APIEndpoint, submit.WithTimeout(a.cfg.SubmitTimeout))
	guard := submit.NewGuard(client, store, &terminalPrompter{a: a, takes: store.Takes()},
		submit.WithVersion(a.cfg.Version),
		submit.WithExportDir(a.cfg.ExportDir),
		submit.WithClock(a.now),
	)

	if msg, dup := guard.DuplicateWarning(params.Score); dup {
		a.printf("%s\n", warningStyle.Render(msg))
	}

	res, err := guard.Submit(cmd.Context(), opts.name, params)
	switch res.Outcome {
	case submit.OutcomeSent:
		a.printf("%s\n", successStyle.Render("Score submitted as "+res.Payload.Name+"."))
		return nil
	case submit.OutcomeCancelled:
		if errors.Is(err, submit.ErrNameRequired) {
			return err
		}
		a.printf("%s\n", mutedStyle.Render("Submission cancelled."))
		return nil
	case submit.OutcomeDropped:
		a.printf("%s\n", mutedStyle.Render("A submission is already in progress."))
		return nil
	}

	a.printf("%s\n", errorStyle.Render(failureMessage(err)))
	if a.confirm("Export the payload to a file to import it later?") {
		path, exportErr := guard.Export(res.Payload)
		if exportErr != nil {
			return errors.Join(err, exportErr)
		}
		a.printf("Saved %s\n", path)
	}
	return err
}

// failureMessage is the short user-facing text for a failed submission.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, submit.ErrNetworkTimeout):
		return "The score store did not answer in time."
	case errors.Is(err, submit.ErrDuplicateName):
		return "That name is already taken."
	default:
		return "The score could not be submitted: " + err.Error()
	}
}

func formatStats(stats []float64) string {
	parts := make([]string, len(stats))
	for i, v := range stats {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, ", ")
}
