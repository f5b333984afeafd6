package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/internal/submit"
	"github.com/okian/pcbvalues/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.InitWriter(io.Discard)
	os.Exit(m.Run())
}

func samplePayload() model.Submission {
	ts := "2024-03-01T12:00:00Z"
	return model.Submission{
		Name:    "alice",
		Vals:    []float64{50, 25.5, 75.7, 45.1, 0.1, 99.9, 0},
		Time:    &ts,
		Edition: model.EditionShort,
		Digest:  "abc+/=",
		Takes:   0,
		Version: "1.0.0",
	}
}

func replyJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClientSend(t *testing.T) {
	Convey("Given a store that accepts submissions", t, func() {
		var got model.Submission
		var override string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			override = r.URL.Query().Get("override")
			_ = json.NewDecoder(r.Body).Decode(&got)
			replyJSON(w, http.StatusOK, model.SubmitResponse{Success: true})
		}))
		defer srv.Close()
		client := submit.NewClient(srv.URL + "/api/scores")

		Convey("When a payload is sent", func() {
			err := client.Send(context.Background(), samplePayload(), false)

			Convey("Then the exact payload arrives without override", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, samplePayload())
				So(override, ShouldEqual, "")
			})
		})

		Convey("When a payload is sent with override", func() {
			err := client.Send(context.Background(), samplePayload(), true)
			So(err, ShouldBeNil)
			So(override, ShouldEqual, "true")
		})
	})

	Convey("Given a store that reports failure", t, func() {
		Convey("When the status is an error with a message", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				replyJSON(w, http.StatusInternalServerError, model.SubmitResponse{Error: "database locked"})
			}))
			defer srv.Close()

			err := submit.NewClient(srv.URL).Send(context.Background(), samplePayload(), false)
			So(errors.Is(err, submit.ErrNetworkFailure), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "database locked")
		})

		Convey("When the status is 200 but success is false", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				replyJSON(w, http.StatusOK, model.SubmitResponse{Success: false})
			}))
			defer srv.Close()

			err := submit.NewClient(srv.URL).Send(context.Background(), samplePayload(), false)
			So(errors.Is(err, submit.ErrNetworkFailure), ShouldBeTrue)
		})

		Convey("When the body is not JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>oops</html>"))
			}))
			defer srv.Close()

			err := submit.NewClient(srv.URL).Send(context.Background(), samplePayload(), false)
			So(errors.Is(err, submit.ErrNetworkFailure), ShouldBeTrue)
		})

		Convey("When the name already exists", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				replyJSON(w, http.StatusConflict, model.SubmitResponse{
					Action:   model.ActionConfirm,
					Error:    "User alice already exists",
					Existing: &model.Score{Name: "alice", Stats: []float64{1, 2, 3, 4, 5, 6, 7}},
				})
			}))
			defer srv.Close()

			err := submit.NewClient(srv.URL).Send(context.Background(), samplePayload(), false)
			So(errors.Is(err, submit.ErrDuplicateName), ShouldBeTrue)
			var conflict *submit.ConflictError
			So(errors.As(err, &conflict), ShouldBeTrue)
			So(conflict.Existing.Name, ShouldEqual, "alice")
		})
	})

	Convey("Given a store that does not answer in time", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		err := submit.NewClient(srv.URL, submit.WithTimeout(50*time.Millisecond)).
			Send(context.Background(), samplePayload(), false)
		So(errors.Is(err, submit.ErrNetworkTimeout), ShouldBeTrue)
	})

	Convey("Given an unreachable store", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		err := submit.NewClient(endpoint).Send(context.Background(), samplePayload(), false)
		So(errors.Is(err, submit.ErrNetworkFailure), ShouldBeTrue)
	})
}
