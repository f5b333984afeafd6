package dataset_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/okian/pcbvalues/internal/dataset"
	"github.com/okian/pcbvalues/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const valuesYAML = `
- name: Economic
  key: econ
  desc: dropped on compile
  left: Equality
  right: Markets
  icon_left: a.svg
  icon_right: b.svg
  color_left: "#ff0000"
  color_right: "#00ff00"
  white_label: [true, false]
  tiers: [High, Mid, Low]
- name: Civil
  key: govt
  left: Liberty
  right: Authority
  icon_left: c.svg
  icon_right: d.svg
  color_left: "#0000ff"
  color_right: "#ffffff"
  white_label: [false, true]
  tiers: [Free, Ordered]
`

const questionsJSON = `[
  {"question": "Q1", "effect": {"govt": 5, "econ": -10}, "short": true},
  {"question": "Q2", "effect": {"econ": 3}, "yesno": true},
  {"question": "Q3", "effect": {}, "yesno": true, "short": true}
]`

func TestLoad(t *testing.T) {
	Convey("Given raw YAML values and JSON questions", t, func() {
		fsys := fstest.MapFS{
			"values.yaml":    {Data: []byte(valuesYAML)},
			"questions.json": {Data: []byte(questionsJSON)},
		}

		Convey("When the dataset is loaded", func() {
			ds, err := dataset.Load(fsys)
			So(err, ShouldBeNil)

			Convey("Then effects follow axis order and flags are packed", func() {
				So(ds.AxisCount(), ShouldEqual, 2)
				So(ds.Keys(), ShouldResemble, []string{"econ", "govt"})
				So(ds.Questions, ShouldHaveLength, 3)
				So(ds.Questions[0], ShouldResemble, model.Question{Text: "Q1", Flags: model.FlagShort, Effect: []float64{-10, 5}})
				So(ds.Questions[1].Flags, ShouldEqual, model.FlagYesNo)
				So(ds.Questions[1].Effect, ShouldResemble, []float64{3, 0})
				So(ds.Questions[2].Flags, ShouldEqual, model.FlagYesNo|model.FlagShort)
				So(ds.ShortCount(), ShouldEqual, 2)
			})

			Convey("Then white labels become a bit mask", func() {
				So(ds.Values[0].White, ShouldEqual, model.WhiteLeft)
				So(ds.Values[1].White, ShouldEqual, model.WhiteRight)
				So(ds.Values[0].Tiers, ShouldResemble, []string{"High", "Mid", "Low"})
			})
		})
	})

	Convey("Given an effect on an unknown axis", t, func() {
		fsys := fstest.MapFS{
			"values.yaml":    {Data: []byte(valuesYAML)},
			"questions.yaml": {Data: []byte("- question: Q\n  effect: {tech: 1}\n")},
		}
		_, err := dataset.Load(fsys)
		So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
	})

	Convey("Given documents violating the schema", t, func() {
		cases := map[string]string{
			"bad color":      "- {name: A, key: a, left: l, right: r, icon_left: i, icon_right: j, color_left: red, color_right: \"#000000\", white_label: [true, true], tiers: [x]}\n",
			"no tiers":       "- {name: A, key: a, left: l, right: r, icon_left: i, icon_right: j, color_left: \"#000000\", color_right: \"#000000\", white_label: [true, true], tiers: []}\n",
			"unknown field":  "- {name: A, key: a, left: l, right: r, icon_left: i, icon_right: j, color_left: \"#000000\", color_right: \"#000000\", white_label: [true, true], tiers: [x], extra: 1}\n",
			"missing labels": "- {name: A, key: a, icon_left: i, icon_right: j, color_left: \"#000000\", color_right: \"#000000\", white_label: [true, true], tiers: [x]}\n",
		}
		for name, doc := range cases {
			fsys := fstest.MapFS{
				"values.yaml":    {Data: []byte(doc)},
				"questions.yaml": {Data: []byte("- question: Q\n  effect: {a: 1}\n")},
			}
			_, err := dataset.Load(fsys)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
			_ = name
		}
	})

	Convey("Given a missing questions file", t, func() {
		fsys := fstest.MapFS{"values.yaml": {Data: []byte(valuesYAML)}}
		_, err := dataset.Load(fsys)
		So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
	})

	Convey("Given duplicate axis keys", t, func() {
		raw := &dataset.Raw{
			Values:    []dataset.RawValue{{Key: "a"}, {Key: "a"}},
			Questions: []dataset.RawQuestion{{Question: "Q"}},
		}
		_, err := dataset.Compile(raw)
		So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
	})
}

func TestDefault(t *testing.T) {
	Convey("Given the embedded dataset", t, func() {
		ds, err := dataset.Default()
		So(err, ShouldBeNil)

		Convey("Then it has seven axes and both editions", func() {
			So(ds.AxisCount(), ShouldEqual, 7)
			So(len(ds.Questions), ShouldBeGreaterThan, ds.ShortCount())
			So(ds.ShortCount(), ShouldBeGreaterThan, 0)
			for _, q := range ds.Questions {
				So(q.Effect, ShouldHaveLength, 7)
			}
		})

		Convey("Then every axis is reachable by some question", func() {
			for axis := range ds.Values {
				var total float64
				for _, q := range ds.Questions {
					if q.Effect[axis] < 0 {
						total -= q.Effect[axis]
					} else {
						total += q.Effect[axis]
					}
				}
				So(total, ShouldBeGreaterThan, 0)
			}
		})
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given a compiled dataset", t, func() {
		ds, err := dataset.Default()
		So(err, ShouldBeNil)
		dir := filepath.Join(t.TempDir(), "dist")

		Convey("When it is written as JSON", func() {
			So(ds.WriteJSON(dir), ShouldBeNil)

			Convey("Then both files round-trip to the same content", func() {
				b, err := os.ReadFile(filepath.Join(dir, "questions.json"))
				So(err, ShouldBeNil)
				var qs []model.Question
				So(json.Unmarshal(b, &qs), ShouldBeNil)
				So(qs, ShouldResemble, ds.Questions)

				b, err = os.ReadFile(filepath.Join(dir, "values.json"))
				So(err, ShouldBeNil)
				var vs []model.Value
				So(json.Unmarshal(b, &vs), ShouldBeNil)
				So(vs, ShouldResemble, ds.Values)
			})

			Convey("Then compiled output is rejected as raw input", func() {
				_, err := dataset.LoadDir(dir)
				So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
			})
		})
	})
}
