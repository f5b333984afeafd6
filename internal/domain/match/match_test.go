package match_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/pcbvalues/internal/domain/match"
	"github.com/okian/pcbvalues/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// weighted matches the production weighting used for the gallery.
var weighted = []float64{1, 1, 1, 0.5, 0.5, 0, 1}

func population() []model.Score {
	return []model.Score{
		{Name: "user1", Stats: []float64{46.4, 100, 70.8, 10.4, 0, 12.5, 75}},
		{Name: "user2", Stats: []float64{48.2, 91.1, 33.3, 66.7, 66.7, 70, 32.5}},
		{Name: "user3", Stats: []float64{30.4, 62.5, 35.4, 37.5, 25, 70, 0}},
		{Name: "user4", Stats: []float64{41.1, 23.2, 27.1, 37.5, 39.6, 42.5, 42.5}},
		{Name: "user5", Stats: []float64{26.8, 92.9, 68.8, 68.8, 62.5, 70, 57.5}},
		{Name: "user6", Stats: []float64{62.5, 69.6, 54.2, 75, 77.1, 77.5, 45}},
		{Name: "user7", Stats: []float64{60.7, 75, 72.9, 66.7, 75, 67.5, 67.5}},
		{Name: "user8", Stats: []float64{53.6, 67.9, 77.1, 66.7, 54.2, 50, 52.5}},
		{Name: "user9", Stats: []float64{50, 66.1, 66.7, 52.1, 41.7, 40, 70}},
		{Name: "user10", Stats: []float64{33.9, 69.6, 45.8, 33.3, 58.3, 62.5, 97.5}},
		{Name: "user11", Stats: []float64{28.6, 80.4, 33.3, 35.4, 31.3, 72.5, 75}},
		{Name: "user12", Stats: []float64{57.1, 73.2, 95.8, 56.3, 70.8, 45, 47.5}},
		{Name: "user13", Stats: []float64{44.6, 76.8, 27.1, 58.3, 58.3, 62.5, 75}},
		{Name: "user14", Stats: []float64{62.5, 80.4, 45.8, 27.1, 41.7, 35, 70}},
		{Name: "user15", Stats: []float64{41.1, 76.8, 70.8, 60.4, 79.2, 82.5, 50}},
		{Name: "user16", Stats: []float64{71.4, 53.6, 35.4, 62.5, 66.7, 65, 22.5}},
		{Name: "user17", Flags: 245, Stats: []float64{60.7, 69.6, 91.7, 77.1, 72.9, 65, 40}},
	}
}

func shouldBeNonDecreasing(ms []model.Match) {
	for i := 1; i < len(ms); i++ {
		So(ms[i].Bias, ShouldBeGreaterThanOrEqualTo, ms[i-1].Bias)
	}
}

func TestRankReferencePopulation(t *testing.T) {
	Convey("Given the reference population of 17 users", t, func() {
		pop := population()

		Convey("When ranking against user14 with production weights", func() {
			ms, err := match.Rank(pop[13].Stats, pop, weighted)
			So(err, ShouldBeNil)

			Convey("Then user14 is first with zero bias and user3 last", func() {
				So(len(ms), ShouldEqual, 17)
				So(ms[0].Name, ShouldEqual, "user14")
				So(ms[0].Bias, ShouldEqual, 0)
				So(ms[1].Name, ShouldEqual, "user9")
				So(ms[1].Bias, ShouldAlmostEqual, 0.019076, 1e-6)
				So(ms[16].Name, ShouldEqual, "user3")
				So(ms[16].Bias, ShouldAlmostEqual, 0.12911485, 1e-6)
				shouldBeNonDecreasing(ms)
			})
		})

		Convey("When ranking an all-50 target with production weights", func() {
			target := []float64{50, 50, 50, 50, 50, 50, 50}
			ms, err := match.Rank(target, pop, weighted)
			So(err, ShouldBeNil)

			So(ms[0].Name, ShouldEqual, "user6")
			So(ms[0].Bias, ShouldAlmostEqual, 0.01845805, 1e-6)
			So(ms[1].Name, ShouldEqual, "user9")
			So(ms[16].Name, ShouldEqual, "user1")
			So(ms[16].Bias, ShouldAlmostEqual, 0.0917528, 1e-6)
			shouldBeNonDecreasing(ms)
		})

		Convey("When ranking an all-50 target with unit weights", func() {
			target := []float64{50, 50, 50, 50, 50, 50, 50}
			ms, err := match.Rank(target, pop, nil)
			So(err, ShouldBeNil)

			So(ms[0].Name, ShouldEqual, "user9")
			So(ms[0].Bias, ShouldAlmostEqual, 0.01587714, 1e-6)
			So(ms[1].Name, ShouldEqual, "user8")
			So(ms[16].Name, ShouldEqual, "user1")
			So(ms[16].Bias, ShouldAlmostEqual, 0.12921443, 1e-6)
		})

		Convey("When ranking, the input population is not reordered", func() {
			_, err := match.Rank(pop[0].Stats, pop, weighted)
			So(err, ShouldBeNil)
			So(pop[0].Name, ShouldEqual, "user1")
			So(pop[16].Flags, ShouldEqual, 245)
		})
	})
}

func TestRankTies(t *testing.T) {
	Convey("Given identical candidates", t, func() {
		stats := []float64{10, 20, 30}
		pop := []model.Score{
			{Name: "far", Stats: []float64{90, 90, 90}},
			{Name: "first", Stats: stats},
			{Name: "second", Stats: stats},
			{Name: "third", Stats: stats},
		}

		Convey("Then ties keep population order", func() {
			ms, err := match.Rank(stats, pop, nil)
			So(err, ShouldBeNil)
			So(ms[0].Name, ShouldEqual, "first")
			So(ms[1].Name, ShouldEqual, "second")
			So(ms[2].Name, ShouldEqual, "third")
			So(ms[3].Name, ShouldEqual, "far")
		})
	})

	Convey("Given an empty population", t, func() {
		ms, err := match.Rank([]float64{1, 2}, nil, nil)
		So(err, ShouldBeNil)
		So(ms, ShouldBeEmpty)
	})
}

func TestRankValidation(t *testing.T) {
	Convey("Given invalid inputs", t, func() {
		pop := population()
		target := pop[0].Stats

		Convey("When every weight is zero", func() {
			_, err := match.Rank(target, pop, make([]float64, 7))
			So(errors.Is(err, match.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When a weight is negative or NaN", func() {
			_, err := match.Rank(target, pop, []float64{1, 1, 1, 1, 1, 1, -1})
			So(errors.Is(err, match.ErrInvalidWeights), ShouldBeTrue)
			_, err = match.Rank(target, pop, []float64{1, 1, 1, 1, 1, 1, math.NaN()})
			So(errors.Is(err, match.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When the weight count differs from the axis count", func() {
			_, err := match.Rank(target, pop, []float64{1, 1})
			So(errors.Is(err, match.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When a candidate has the wrong number of stats", func() {
			bad := append(pop, model.Score{Name: "short", Stats: []float64{1}})
			_, err := match.Rank(target, bad, nil)
			So(errors.Is(err, match.ErrArity), ShouldBeTrue)
		})
	})
}

func TestBias(t *testing.T) {
	Convey("Given two vectors one axis apart", t, func() {
		// ((50/100)*1)^2 / 2
		So(match.Bias([]float64{0, 0}, []float64{50, 0}, []float64{1, 1}), ShouldAlmostEqual, 0.125, 1e-12)
		// zero-weight axes do not contribute
		So(match.Bias([]float64{0, 0}, []float64{0, 100}, []float64{1, 0}), ShouldEqual, 0)
	})
}
