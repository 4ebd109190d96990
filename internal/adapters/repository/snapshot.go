package repository

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teacheval/internal/domain/model"
)

// Store publishes catalogs. Readers load the current catalog without locking;
// a reload builds a complete new catalog and swaps the pointer, so a reader
// always sees one consistent generation.
type Store struct {
	current atomic.Pointer[Catalog]
	now     func() time.Time
	nextID  func() string
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		nextID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build indexes questions and evaluations into a new catalog without publishing it.
func (s *Store) Build(questions []model.Question, evaluations []*model.Evaluation, sources ...string) *Catalog {
	src := make([]string, len(sources))
	copy(src, sources)
	return &Catalog{
		ID:          s.nextID(),
		LoadedAt:    s.now().UTC(),
		Sources:     src,
		Evaluations: NewEvaluationIndex(evaluations),
		Questions:   NewQuestionIndex(questions),
	}
}

// Swap publishes c and returns the catalog it replaced, if any.
func (s *Store) Swap(c *Catalog) *Catalog {
	return s.current.Swap(c)
}

// Publish builds and swaps in a new catalog.
func (s *Store) Publish(questions []model.Question, evaluations []*model.Evaluation, sources ...string) *Catalog {
	c := s.Build(questions, evaluations, sources...)
	s.Swap(c)
	return c
}

// Current returns the published catalog or ErrNotLoaded.
func (s *Store) Current() (*Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, ErrNotLoaded
	}
	return c, nil
}
