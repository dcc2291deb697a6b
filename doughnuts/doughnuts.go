// Package doughnuts serves the file-backed doughnut resource.
package doughnuts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shipq/catalogapi/failure"
)

// Doughnut is the external shape of a doughnut. The stored id is exposed
// as doughnut_id.
type Doughnut struct {
	DoughnutID   int     `json:"doughnut_id"`
	DoughnutType string  `json:"doughnut_type"`
	Price        float64 `json:"price"`
	Calories     int     `json:"calories"`
	ContainsNuts bool    `json:"contains_nuts"`
}

// Service reads doughnuts from a Source on every call.
type Service struct {
	src    Source
	logger *slog.Logger
}

// New creates a Service over src.
func New(src Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{src: src, logger: logger}
}

// List returns every doughnut. An empty list is reported as NotFound and an
// entry without an id as an unexpected failure.
func (s *Service) List(ctx context.Context) ([]Doughnut, error) {
	entries, err := s.src.Load(ctx)
	if err != nil {
		return nil, failure.Unexpected(err)
	}
	if len(entries) == 0 {
		return nil, failure.NotFoundf("No doughnuts")
	}
	out := make([]Doughnut, 0, len(entries))
	for i, e := range entries {
		if e.ID == nil {
			return nil, failure.Unexpectedf("doughnut at index %d has no id", i)
		}
		out = append(out, rename(e))
	}
	return out, nil
}

// Get returns the first doughnut with the given id. Unlike the database
// endpoints, the not-found message names the id rather than the resource,
// and a document without a doughnut list is also reported as not found.
func (s *Service) Get(ctx context.Context, id int) (*Doughnut, error) {
	entries, err := s.src.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingList) {
			return nil, failure.NotFoundf("No such doughnut: %d", id)
		}
		return nil, failure.Unexpected(err)
	}
	for _, e := range entries {
		if e.ID != nil && *e.ID == id {
			d := rename(e)
			return &d, nil
		}
	}
	return nil, failure.NotFoundf("No such doughnut: %d", id)
}

// rename expects e.ID to be set.
func rename(e Entry) Doughnut {
	return Doughnut{
		DoughnutID:   *e.ID,
		DoughnutType: e.DoughnutType,
		Price:        e.Price,
		Calories:     e.Calories,
		ContainsNuts: e.ContainsNuts,
	}
}
