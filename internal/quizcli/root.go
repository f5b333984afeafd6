// Package quizcli implements the terminal client: taking the quiz, showing
// results, submitting them and importing manual exports.
package quizcli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/config"
	"github.com/okian/pcbvalues/internal/dataset"
	"github.com/okian/pcbvalues/internal/session"
	"github.com/okian/pcbvalues/pkg/logger"
)

// errEndOfInput is returned by readLine when stdin is exhausted.
var errEndOfInput = errors.New("end of input")

// app carries what every command needs. Nothing is global so the command
// tree can be driven from tests.
type app struct {
	cfg     *config.Config
	in      *bufio.Reader
	out     io.Writer
	now     func() time.Time
	log     logger.Logger
	dataDir string
}

// NewRootCommand builds the quiz command tree reading answers from in and
// writing to out.
func NewRootCommand(cfg *config.Config, in io.Reader, out io.Writer) *cobra.Command {
	a := &app{
		cfg: cfg,
		in:  bufio.NewReader(in),
		out: out,
		now: time.Now,
		log: logger.Named("quiz"),
	}

	root := &cobra.Command{
		Use:   "quiz",
		Short: "Take the PCBValues quiz in the terminal",
		Long: `quiz runs the PCBValues questionnaire, shows where you land on every
axis, finds the closest people in the gallery and submits your result.

A typical session:

  quiz take --short
  quiz results --query "score=...&digest=...&edition=s" --server
  quiz submit --query "score=...&digest=...&edition=s" --name alice`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfg.APIEndpoint, "endpoint", cfg.APIEndpoint, "Score store submission URL")
	root.PersistentFlags().StringVar(&a.cfg.SessionFile, "session", cfg.SessionFile, "Local session file")
	root.PersistentFlags().StringVar(&a.dataDir, "data", cfg.DatasetDir, "Directory with raw questions and values (embedded set if empty)")

	root.AddCommand(
		a.takeCommand(),
		a.resultsCommand(),
		a.submitCommand(),
		a.importCommand(),
		a.buildCommand(),
	)
	return root
}

// dataset returns the dataset selected by --data.
func (a *app) dataset() (*dataset.Dataset, error) {
	if a.dataDir == "" {
		return dataset.Default()
	}
	return dataset.LoadDir(a.dataDir)
}

func (a *app) session() (*session.Store, error) {
	return session.Open(a.cfg.SessionFile)
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// readLine returns the next trimmed input line.
func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errEndOfInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func (a *app) confirm(question string) bool {
	a.printf("%s [y/N] ", question)
	line, err := a.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}
