// Package site serves the landing page and the JSON data files it reads.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/pcbvalues/internal/dataset"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Population lists the gallery records published as users.json.
type Population interface {
	List(ctx context.Context) ([]model.Score, error)
}

// Register attaches the landing page and the data routes to mux.
//
//	GET /                      -> embedded static files
//	GET /data/questions.json   -> compiled questions
//	GET /data/values.json      -> compiled axes
//	GET /data/users.json       -> current gallery population
func Register(_ context.Context, mux *http.ServeMux, ds *dataset.Dataset, pop Population) {
	if mux == nil {
		panic("mux is nil")
	}
	if ds == nil || pop == nil {
		panic("site dependencies are nil")
	}

	mux.HandleFunc("/data/questions.json", jsonHandler(func(context.Context) (any, error) {
		return ds.Questions, nil
	}))
	mux.HandleFunc("/data/values.json", jsonHandler(func(context.Context) (any, error) {
		return ds.Values, nil
	}))
	mux.HandleFunc("/data/users.json", jsonHandler(func(ctx context.Context) (any, error) {
		users, err := pop.List(ctx)
		if users == nil {
			users = []model.Score{}
		}
		return users, err
	}))

	mux.Handle("/", http.FileServer(FS()))
}

func jsonHandler(load func(context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		v, err := load(r.Context())
		if err != nil {
			http.Error(w, fmt.Errorf("%w: %w", ErrServe, err).Error(), http.StatusInternalServerError)
			return
		}
		body, err := json.Marshal(v)
		if err != nil {
			http.Error(w, fmt.Errorf("%w: %w", ErrServe, err).Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(body)
	}
}
