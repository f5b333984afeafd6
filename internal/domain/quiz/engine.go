// Package quiz implements the quiz state machine. The in-progress session is
// a plain State value; every transition returns a new State and never mutates
// its argument, so a caller can re-render from any snapshot safely.
package quiz

import (
	"fmt"
	"math"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// State is the cursor and answer accumulator of one quiz session.
// Index == total means the quiz is completed.
type State struct {
	Index   int       `json:"index"`
	Answers []float64 `json:"answers"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithAxisCount requires every question effect to carry exactly n weights.
func WithAxisCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.axes = n
		}
	}
}

// Engine holds the immutable question list of one quiz edition. The list is
// expected to be filtered and optionally shuffled by the caller.
type Engine struct {
	questions []model.Question
	edition   model.Edition
	axes      int
}

// New validates the question list and returns an engine for it.
func New(questions []model.Question, edition model.Edition, opts ...Option) (*Engine, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	e := &Engine{
		questions: append([]model.Question(nil), questions...),
		edition:   edition,
		axes:      len(questions[0].Effect),
	}
	for _, opt := range opts {
		opt(e)
	}
	for i, q := range e.questions {
		if len(q.Effect) != e.axes {
			return nil, fmt.Errorf("%w: question %d has %d effects, want %d", ErrEffectArity, i, len(q.Effect), e.axes)
		}
	}
	return e, nil
}

// Start returns the initial state: first question, all answers neutral.
func (e *Engine) Start() State {
	return State{Index: 0, Answers: make([]float64, len(e.questions))}
}

// Total is the number of questions.
func (e *Engine) Total() int { return len(e.questions) }

// Axes is the number of evaluation axes.
func (e *Engine) Axes() int { return e.axes }

// Edition is carried through to the result untouched.
func (e *Engine) Edition() model.Edition { return e.edition }

// Completed reports whether s has advanced past the last question.
func (e *Engine) Completed(s State) bool { return s.Index >= len(e.questions) }

// Answer records weight for the current question and advances. The boolean
// reports whether another question remains; when it is false the caller
// must call Finalize.
func (e *Engine) Answer(s State, weight float64) (State, bool, error) {
	q, err := e.current(s)
	if err != nil {
		return s, false, err
	}
	if err := checkWeight(q, weight); err != nil {
		return s, false, err
	}
	next := State{Index: s.Index + 1, Answers: append([]float64(nil), s.Answers...)}
	next.Answers[s.Index] = weight
	return next, next.Index < len(e.questions), nil
}

// Back steps to the previous question. At the first question it returns the
// state unchanged and false, telling the caller to leave the quiz.
func (e *Engine) Back(s State) (State, bool) {
	if s.Index <= 0 {
		return s, false
	}
	return State{Index: s.Index - 1, Answers: append([]float64(nil), s.Answers...)}, true
}

// CurrentText returns the text of the current question.
func (e *Engine) CurrentText(s State) (string, error) {
	q, err := e.current(s)
	if err != nil {
		return "", err
	}
	return q.Text, nil
}

// CurrentIsYesNo reports whether the current question is yes/no.
func (e *Engine) CurrentIsYesNo(s State) (bool, error) {
	q, err := e.current(s)
	if err != nil {
		return false, err
	}
	return q.IsYesNo(), nil
}

// DisplayIndex returns the 1-based position of the current question.
func (e *Engine) DisplayIndex(s State) (int, error) {
	if _, err := e.current(s); err != nil {
		return 0, err
	}
	return s.Index + 1, nil
}

// Finalize reduces the answers of a completed session into one percentage
// per axis. It fails with ErrInvalidScore when the effect data cannot yield
// a bounded score, e.g. an axis no question affects.
func (e *Engine) Finalize(s State) ([]float64, error) {
	if !e.Completed(s) || len(s.Answers) != len(e.questions) {
		return nil, fmt.Errorf("%w: quiz not completed (%d/%d)", ErrOutOfRange, s.Index, len(e.questions))
	}

	raw := make([]float64, e.axes)
	maxPossible := make([]float64, e.axes)
	for i, q := range e.questions {
		for a, effect := range q.Effect {
			raw[a] += s.Answers[i] * effect
			maxPossible[a] += math.Abs(effect)
		}
	}

	scores := make([]float64, e.axes)
	for a := range scores {
		v := math.Abs(100 * (maxPossible[a] + raw[a]) / (2 * maxPossible[a]))
		if math.IsNaN(v) || v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: axis %d computed %v", ErrInvalidScore, a, v)
		}
		scores[a] = v
	}
	return scores, nil
}

func (e *Engine) current(s State) (model.Question, error) {
	if s.Index < 0 || s.Index >= len(e.questions) || len(s.Answers) != len(e.questions) {
		return model.Question{}, fmt.Errorf("%w: index %d of %d", ErrOutOfRange, s.Index, len(e.questions))
	}
	return e.questions[s.Index], nil
}
