package loadgen

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/domain/results"
)

// profile draws one axis value.
type profile func(r *rand.Rand) float64

// Respondent profiles, weighted by how often they appear in the slice.
var profiles = []profile{
	centrist, centrist, centrist,
	leaning, leaning,
	extreme,
	wide,
}

func centrist(r *rand.Rand) float64 { return 40 + r.Float64()*20 }

func leaning(r *rand.Rand) float64 {
	if r.IntN(2) == 0 {
		return 10 + r.Float64()*30
	}
	return 60 + r.Float64()*30
}

func extreme(r *rand.Rand) float64 {
	if r.IntN(2) == 0 {
		return r.Float64() * 10
	}
	return 90 + r.Float64()*10
}

func wide(r *rand.Rand) float64 { return r.Float64() * 100 }

// Generate returns count signed submissions with unique names. Every
// respondent keeps one profile across all axes.
func Generate(r *rand.Rand, count, axes int) ([]model.Submission, error) {
	out := make([]model.Submission, count)
	for i := range out {
		draw := profiles[r.IntN(len(profiles))]
		vals := make([]float64, axes)
		for j := range vals {
			vals[j] = math.Round(draw(r)*10) / 10
		}

		edition := model.EditionFull
		if r.IntN(3) == 0 {
			edition = model.EditionShort
		}
		params, err := results.Build(vals, edition)
		if err != nil {
			return nil, err
		}
		out[i] = model.Submission{
			Name:    "load-" + uuid.NewString()[:13],
			Vals:    params.Score,
			Edition: params.Edition,
			Digest:  params.Digest,
			Version: "loadgen",
		}
	}
	return out, nil
}
