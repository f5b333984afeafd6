// Package model contains domain models passed between layers.
package model

// Question flag bits.
const (
	FlagShort = 1 << 0 // belongs to the short edition
	FlagYesNo = 1 << 1 // answered with yes/no instead of a Likert scale
)

// Question is a single quiz prompt. Effect holds one signed weight per axis,
// in axis order. Questions are immutable once loaded.
type Question struct {
	Text   string    `json:"text"`
	Flags  int       `json:"flags"`
	Effect []float64 `json:"effect"`
}

// IsShort reports whether the question belongs to the short edition.
func (q Question) IsShort() bool { return q.Flags&FlagShort != 0 }

// IsYesNo reports whether the question is a yes/no question.
func (q Question) IsYesNo() bool { return q.Flags&FlagYesNo != 0 }

// Edition selects the short or full question set.
type Edition string

const (
	EditionShort Edition = "s"
	EditionFull  Edition = "f"
)

// ParseEdition maps a URL edition tag to an Edition. Unknown or empty tags
// fall back to the full edition.
func ParseEdition(tag string) Edition {
	if Edition(tag) == EditionShort {
		return EditionShort
	}
	return EditionFull
}

// String returns the human readable edition name.
func (e Edition) String() string {
	if e == EditionShort {
		return "Short"
	}
	return "Full"
}
