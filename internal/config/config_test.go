package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pcbvalues/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.AxisCount, convey.ShouldEqual, 7)
			convey.So(cfg.SubmitTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.DatabaseDriver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.MatchLimit, convey.ShouldEqual, 5)
			convey.So(cfg.SessionFile, convey.ShouldEndWith, "session.json")
			convey.So(cfg.Weights(), convey.ShouldBeNil)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs violating constraints", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = "" },
			"zero axes":        func(c *config.Config) { c.AxisCount = 0 },
			"zero timeout":     func(c *config.Config) { c.SubmitTimeout = 0 },
			"unknown driver":   func(c *config.Config) { c.DatabaseDriver = "mysql" },
			"negative limit":   func(c *config.Config) { c.MatchLimit = -1 },
			"short weights":    func(c *config.Config) { c.MatchWeights = []float64{1, 1} },
			"negative weight":  func(c *config.Config) { c.MatchWeights = []float64{1, 1, 1, 1, 1, 1, -1} },
			"all zero weights": func(c *config.Config) { c.MatchWeights = make([]float64, 7) },
		}
		for name, mutate := range cases {
			cfg := config.New(ctx)
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldNotBeEmpty)
			_ = name
		}
	})

	convey.Convey("Given production weights", t, func() {
		cfg := config.New(context.Background())
		cfg.MatchWeights = []float64{1, 1, 1, 0.5, 0.5, 0, 1}

		convey.So(cfg.Validate(), convey.ShouldBeNil)
		w := cfg.Weights()
		w[0] = 9
		convey.So(cfg.MatchWeights[0], convey.ShouldEqual, 1)
	})
}
