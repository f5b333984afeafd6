package model

import "math"

// White label bits: which side of an axis renders light text on dark.
const (
	WhiteRight = 1 << 0
	WhiteLeft  = 1 << 1
)

// Value describes one evaluation axis.
type Value struct {
	Name       string   `json:"name"`
	Key        string   `json:"key"`
	Left       string   `json:"left"`
	Right      string   `json:"right"`
	IconLeft   string   `json:"icon_left"`
	IconRight  string   `json:"icon_right"`
	ColorLeft  string   `json:"color_left"`
	ColorRight string   `json:"color_right"`
	White      int      `json:"white"`
	Tiers      []string `json:"tiers"`
}

// FindTier returns the tier name for score. Tiers are ordered from the
// highest score to the lowest; out-of-range indexes fall back to the last tier.
func (v Value) FindTier(score float64) string {
	if len(v.Tiers) == 0 {
		return ""
	}
	idx := int(math.Floor((100 - score) / 100 * float64(len(v.Tiers))))
	if idx < 0 || idx >= len(v.Tiers) {
		return v.Tiers[len(v.Tiers)-1]
	}
	return v.Tiers[idx]
}

// WhiteLeftLabel reports whether the left label needs light-on-dark text.
func (v Value) WhiteLeftLabel() bool { return v.White&WhiteLeft != 0 }

// WhiteRightLabel reports whether the right label needs light-on-dark text.
func (v Value) WhiteRightLabel() bool { return v.White&WhiteRight != 0 }
