package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/pcbvalues/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestValueFindTier(t *testing.T) {
	convey.Convey("Given a value with eleven tiers", t, func() {
		v := model.Value{
			Name: "Tolerance",
			Tiers: []string{
				"SJW", "Careful", "Inclusive", "Cautioned", "Attentive", "Moderate",
				"Unaffected", "Biased", "Selective", "Intolerant", "Reckless",
			},
		}

		convey.Convey("Then the extremes and the midpoint map to the expected tiers", func() {
			convey.So(v.FindTier(0), convey.ShouldEqual, "Reckless")
			convey.So(v.FindTier(50), convey.ShouldEqual, "Moderate")
			convey.So(v.FindTier(100), convey.ShouldEqual, "SJW")
		})

		convey.Convey("Then out-of-range scores fall back to the last tier", func() {
			convey.So(v.FindTier(-5), convey.ShouldEqual, "Reckless")
			convey.So(v.FindTier(150), convey.ShouldEqual, "Reckless")
		})
	})

	convey.Convey("Given a value without tiers", t, func() {
		convey.So(model.Value{}.FindTier(50), convey.ShouldEqual, "")
	})
}

func TestQuestionFlags(t *testing.T) {
	convey.Convey("Given questions with different flag bits", t, func() {
		short := model.Question{Flags: model.FlagShort}
		yesno := model.Question{Flags: model.FlagYesNo}
		both := model.Question{Flags: model.FlagShort | model.FlagYesNo}

		convey.So(short.IsShort(), convey.ShouldBeTrue)
		convey.So(short.IsYesNo(), convey.ShouldBeFalse)
		convey.So(yesno.IsShort(), convey.ShouldBeFalse)
		convey.So(yesno.IsYesNo(), convey.ShouldBeTrue)
		convey.So(both.IsShort() && both.IsYesNo(), convey.ShouldBeTrue)
	})
}

func TestParseEdition(t *testing.T) {
	convey.Convey("Given edition tags", t, func() {
		convey.So(model.ParseEdition("s"), convey.ShouldEqual, model.EditionShort)
		convey.So(model.ParseEdition("f"), convey.ShouldEqual, model.EditionFull)
		convey.So(model.ParseEdition(""), convey.ShouldEqual, model.EditionFull)
		convey.So(model.EditionShort.String(), convey.ShouldEqual, "Short")
	})
}

func TestParseFlags(t *testing.T) {
	convey.Convey("Given raw flag strings", t, func() {
		convey.Convey("When the value is a valid integer", func() {
			flags, err := model.ParseFlags("1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(flags, convey.ShouldEqual, model.FlagPopular)
		})

		convey.Convey("When the value is not an integer", func() {
			_, err := model.ParseFlags("1.5")
			convey.So(errors.Is(err, model.ErrInvalidFlags), convey.ShouldBeTrue)
		})

		convey.Convey("When the value is negative", func() {
			_, err := model.ParseFlags("-1")
			convey.So(errors.Is(err, model.ErrInvalidFlags), convey.ShouldBeTrue)
		})

		convey.Convey("When the value exceeds the 32-bit range", func() {
			_, err := model.ParseFlags("4294967296")
			convey.So(errors.Is(err, model.ErrInvalidFlags), convey.ShouldBeTrue)
		})
	})
}

func TestNormalizeName(t *testing.T) {
	convey.Convey("Given names with surrounding space and decomposed accents", t, func() {
		convey.So(model.NormalizeName("  alice \n"), convey.ShouldEqual, "alice")
		// "e" + combining acute accent composes to a single rune.
		convey.So(model.NormalizeName("Ame\u0301lie"), convey.ShouldEqual, "Am\u00e9lie")
		convey.So(model.NormalizeName("   "), convey.ShouldEqual, "")
	})
}

func TestScorePopular(t *testing.T) {
	convey.Convey("Given score records", t, func() {
		convey.So(model.Score{Flags: 245}.Popular(), convey.ShouldBeTrue)
		convey.So(model.Score{Flags: 2}.Popular(), convey.ShouldBeFalse)
	})
}
