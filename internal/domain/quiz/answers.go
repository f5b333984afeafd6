package quiz

import (
	"fmt"
	"math/rand"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// Answer weights, from the first response button to the last.
const (
	StronglyAgree    = 1.0
	Agree            = 0.5
	Neutral          = 0.0
	Disagree         = -0.5
	StronglyDisagree = -1.0
)

// Buttons is the number of Likert response buttons.
const Buttons = 5

// WeightForButton maps a 0-based button index to its answer weight (2-i)/2.
func WeightForButton(i int) (float64, error) {
	if i < 0 || i >= Buttons {
		return 0, fmt.Errorf("%w: button %d", ErrInvalidAnswer, i)
	}
	return float64(2-i) / 2, nil
}

func checkWeight(q model.Question, w float64) error {
	switch w {
	case StronglyAgree, StronglyDisagree:
		return nil
	case Agree, Neutral, Disagree:
		if q.IsYesNo() {
			return fmt.Errorf("%w: yes/no question takes 1 or -1, got %v", ErrInvalidAnswer, w)
		}
		return nil
	}
	return fmt.Errorf("%w: weight %v", ErrInvalidAnswer, w)
}

// FilterEdition returns the questions that belong to edition. The full
// edition keeps every question.
func FilterEdition(questions []model.Question, edition model.Edition) []model.Question {
	if edition != model.EditionShort {
		return append([]model.Question(nil), questions...)
	}
	out := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsShort() {
			out = append(out, q)
		}
	}
	return out
}

// Shuffle returns a Fisher-Yates shuffled copy of questions.
func Shuffle(questions []model.Question, rng *rand.Rand) []model.Question {
	out := append([]model.Question(nil), questions...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
