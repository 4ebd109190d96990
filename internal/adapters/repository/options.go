package repository

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock sets the time source stamped on published catalogs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator for catalog ids.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}
