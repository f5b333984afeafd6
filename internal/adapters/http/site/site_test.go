package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pcbvalues/internal/dataset"
	"github.com/okian/pcbvalues/internal/domain/model"
)

type stubPopulation struct {
	users []model.Score
	err   error
}

func (s stubPopulation) List(context.Context) ([]model.Score, error) { return s.users, s.err }

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered site", t, func() {
		ds, err := dataset.Default()
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		pop := stubPopulation{users: []model.Score{{Name: "alice", Stats: []float64{1, 2, 3, 4, 5, 6, 7}}}}
		Register(context.Background(), mux, ds, pop)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		Convey("The landing page is served at /", func() {
			w := get("/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "/data/values.json")
		})

		Convey("Questions are the compiled dataset", func() {
			w := get("/data/questions.json")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got []model.Question
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got, ShouldHaveLength, len(ds.Questions))
			So(got[0].Effect, ShouldHaveLength, ds.AxisCount())
		})

		Convey("Values are the compiled axes", func() {
			w := get("/data/values.json")
			var got []model.Value
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got, ShouldHaveLength, ds.AxisCount())
			So(got[0].Key, ShouldEqual, ds.Values[0].Key)
		})

		Convey("Users are the current population", func() {
			w := get("/data/users.json")
			var got []model.Score
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "alice")
		})

		Convey("Unknown assets are not found", func() {
			So(get("/missing.css").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Writes to data files are not found", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/data/users.json", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSiteUsersFailure(t *testing.T) {
	Convey("Given a failing population", t, func() {
		ds, err := dataset.Default()
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		Register(context.Background(), mux, ds, stubPopulation{err: errors.New("db down")})

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data/users.json", nil))
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(w.Body.String(), ShouldContainSubstring, "site serve failed: db down")
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering should panic", func() {
			So(func() {
				Register(context.Background(), nil, &dataset.Dataset{}, stubPopulation{})
			}, ShouldPanic)
		})
	})
}
