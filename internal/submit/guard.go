// Package submit persists a finished result to the remote score store. The
// Guard builds the payload, asks for consent, serializes sends and keeps
// failed payloads available for manual export.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/domain/results"
	"github.com/okian/pcbvalues/pkg/logger"
)

// State is the network submission state.
type State int32

const (
	Idle State = iota
	Sending
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome describes how a Submit call ended.
type Outcome int

const (
	OutcomeSent      Outcome = iota // accepted by the store
	OutcomeCancelled                // the user declined a prompt
	OutcomeDropped                  // another submission was in flight
	OutcomeFailed                   // network failure; payload kept for export
)

// Result is returned by Submit.
type Result struct {
	Outcome  Outcome
	Payload  model.Submission
	Override bool
}

// Prompter asks the user for input. Every method returns false when the
// user declines or cancels.
type Prompter interface {
	AskName(ctx context.Context) (string, bool)
	ConfirmName(ctx context.Context, name string) bool
	ConfirmResubmit(ctx context.Context) bool
	ConfirmOverride(ctx context.Context, conflict *ConflictError) bool
}

// Session is the local state the guard reads and updates.
type Session interface {
	AnswerTime(digest string) *string
	Takes() int
	SetPending(p model.Submission) error
	ClearPending() error
	RecordSuccess(p model.Submission) error
	LastSubmission() *model.Submission
}

// Guard serializes submissions. The state value doubles as the in-flight
// lock: only one caller can move it to Sending.
type Guard struct {
	state    atomic.Int32
	sender   Sender
	session  Session
	prompter Prompter

	version   string
	exportDir string
	log       logger.Logger
	now       func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithVersion sets the schema version sent with every payload.
func WithVersion(v string) Option {
	return func(g *Guard) { g.version = v }
}

// WithExportDir sets the directory manual exports are written to.
func WithExportDir(dir string) Option {
	return func(g *Guard) {
		if dir != "" {
			g.exportDir = dir
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock overrides the time source used by duplicate warnings.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGuard creates an idle Guard.
func NewGuard(sender Sender, session Session, prompter Prompter, opts ...Option) *Guard {
	g := &Guard{
		sender:    sender,
		session:   session,
		prompter:  prompter,
		version:   "1.0.0",
		exportDir: ".",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Get().Named("guard")
	}
	return g
}

// State returns the current submission state.
func (g *Guard) State() State { return State(g.state.Load()) }

// BuildPayload assembles the submission for name and params.
func (g *Guard) BuildPayload(name string, params results.Params) (model.Submission, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return model.Submission{}, ErrNameRequired
	}
	return model.Submission{
		Name:    name,
		Vals:    append([]float64(nil), params.Score...),
		Time:    g.session.AnswerTime(params.Digest),
		Edition: params.Edition,
		Digest:  params.Digest,
		Takes:   g.session.Takes(),
		Version: g.version,
	}, nil
}

// Submit asks for consent, sends the payload and records the outcome. A call
// made while another is Sending is dropped without prompting. Declining a
// prompt aborts before the lock is taken.
func (g *Guard) Submit(ctx context.Context, name string, params results.Params) (Result, error) {
	if g.State() == Sending {
		return Result{Outcome: OutcomeDropped}, nil
	}

	name = model.NormalizeName(name)
	for name == "" {
		entered, ok := g.prompter.AskName(ctx)
		if !ok {
			return Result{Outcome: OutcomeCancelled}, ErrNameRequired
		}
		name = model.NormalizeName(entered)
	}

	if g.session.Takes() > 0 {
		if !g.prompter.ConfirmResubmit(ctx) {
			return Result{Outcome: OutcomeCancelled}, nil
		}
	} else if !g.prompter.ConfirmName(ctx, name) {
		return Result{Outcome: OutcomeCancelled}, nil
	}

	payload, err := g.BuildPayload(name, params)
	if err != nil {
		return Result{Outcome: OutcomeCancelled}, err
	}

	if !g.acquire() {
		return Result{Outcome: OutcomeDropped}, nil
	}
	g.log.Debug(ctx, "state changed", logger.String("state", Sending.String()), logger.String("name", payload.Name))

	if err := g.session.SetPending(payload); err != nil {
		g.log.Warn(ctx, "failed to persist pending payload", logger.Error(err))
	}

	res := Result{Payload: payload}
	err = g.sender.Send(ctx, payload, false)

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		if !g.prompter.ConfirmOverride(ctx, conflict) {
			if err := g.session.ClearPending(); err != nil {
				g.log.Warn(ctx, "failed to clear pending payload", logger.Error(err))
			}
			g.state.Store(int32(Idle))
			res.Outcome = OutcomeCancelled
			return res, nil
		}
		res.Override = true
		err = g.sender.Send(ctx, payload, true)
	}

	if err != nil {
		g.state.Store(int32(Failed))
		g.log.Error(ctx, "submission failed",
			logger.String("name", payload.Name),
			logger.Bool("override", res.Override),
			logger.Error(err),
		)
		res.Outcome = OutcomeFailed
		return res, err
	}

	if err := g.session.RecordSuccess(payload); err != nil {
		g.log.Warn(ctx, "failed to record successful submission", logger.Error(err))
	}
	g.state.Store(int32(Success))
	g.log.Info(ctx, "submission accepted",
		logger.String("name", payload.Name),
		logger.Bool("override", res.Override),
		logger.Int("takes", payload.Takes+1),
	)
	res.Outcome = OutcomeSent
	return res, nil
}

// acquire moves any settled state to Sending.
func (g *Guard) acquire() bool {
	for {
		cur := g.state.Load()
		if State(cur) == Sending {
			return false
		}
		if g.state.CompareAndSwap(cur, int32(Sending)) {
			return true
		}
	}
}

// Export writes p as JSON to a fresh file in the export directory and returns
// its path. The bytes are exactly what the client sends.
func (g *Guard) Export(p model.Submission) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := os.MkdirAll(g.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(g.exportDir, "scores-"+uuid.NewString()+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// IsDuplicate reports whether vals equals the values of last exactly.
func IsDuplicate(last *model.Submission, vals []float64) bool {
	return last != nil && len(vals) > 0 && slices.Equal(last.Vals, vals)
}

// DuplicateWarning returns an advisory message when vals matches the last
// accepted submission. It never blocks a submission.
func (g *Guard) DuplicateWarning(vals []float64) (string, bool) {
	last := g.session.LastSubmission()
	if !IsDuplicate(last, vals) {
		return "", false
	}
	msg := "You already submitted this score before"
	if last.Time != nil {
		if t, err := time.Parse(time.RFC3339, *last.Time); err == nil {
			msg += " (taken " + humanize.RelTime(t, g.now(), "ago", "from now") + ")"
		}
	}
	return msg, true
}
