package dailylog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"calorie-counter/internal/config"
	"calorie-counter/internal/models"
	"calorie-counter/internal/storage"
)

// Store owns the date -> entries mapping and mirrors it into a single KV
// slot after every mutation. The in-memory state always equals the last
// successfully written state: a failed write rolls the mutation back.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	key   string
	now   func() time.Time
	state models.LogStore
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage slot key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides the clock used to compute today's date key.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Load reads the persisted log. An absent or malformed value yields an empty
// store; only a failing backend read is returned as an error.
func Load(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    kv,
		key:   config.DefaultStorageKey,
		now:   time.Now,
		state: models.LogStore{},
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %q: %v", ErrStorage, s.key, err)
	}
	if !ok || len(data) == 0 {
		return s, nil
	}

	var loaded models.LogStore
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("Ignoring malformed log data under %q: %v", s.key, err)
		return s, nil
	}
	for date, entries := range loaded {
		if len(entries) > 0 {
			s.state[date] = entries
		}
	}

	return s, nil
}

// Today returns the date key entries are appended under right now.
func (s *Store) Today() string {
	return models.DateKey(s.now())
}

// Snapshot returns a copy of the whole log.
func (s *Store) Snapshot() models.LogStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Entries returns a copy of the entries logged on date.
func (s *Store) Entries(date string) []models.FoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.state[date]
	out := make([]models.FoodEntry, len(entries))
	copy(out, entries)
	return out
}

// Append logs one entry per food under today's date, in input order, and
// persists the store. An empty foods slice still rewrites the store.
func (s *Store) Append(ctx context.Context, foods []models.FoodRecord) (models.LogStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := models.DateKey(s.now())
	prev, had := s.state[today]

	if len(foods) > 0 {
		next := make([]models.FoodEntry, len(prev), len(prev)+len(foods))
		copy(next, prev)
		for _, f := range foods {
			next = append(next, f.Entry())
		}
		s.state[today] = next
	}

	if err := s.persist(ctx); err != nil {
		s.restore(today, prev, had)
		return nil, err
	}
	return s.state.Clone(), nil
}

// DeleteAt removes the entry at index for date, shifting later entries left.
// The date key is dropped once its last entry is removed.
func (s *Store) DeleteAt(ctx context.Context, date string, index int) (models.LogStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.state[date]
	if !ok || index < 0 || index >= len(prev) {
		return nil, fmt.Errorf("%w: date %q index %d", ErrOutOfRange, date, index)
	}

	next := make([]models.FoodEntry, 0, len(prev)-1)
	next = append(next, prev[:index]...)
	next = append(next, prev[index+1:]...)
	if len(next) == 0 {
		delete(s.state, date)
	} else {
		s.state[date] = next
	}

	if err := s.persist(ctx); err != nil {
		s.restore(date, prev, true)
		return nil, err
	}
	return s.state.Clone(), nil
}

// EditAt replaces the entry at index for date with entry. The entry is
// stored as given.
func (s *Store) EditAt(ctx context.Context, date string, index int, entry models.FoodEntry) (models.LogStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.state[date]
	if !ok || index < 0 || index >= len(prev) {
		return nil, fmt.Errorf("%w: date %q index %d", ErrOutOfRange, date, index)
	}

	next := make([]models.FoodEntry, len(prev))
	copy(next, prev)
	next[index] = entry
	s.state[date] = next

	if err := s.persist(ctx); err != nil {
		s.restore(date, prev, true)
		return nil, err
	}
	return s.state.Clone(), nil
}

func (s *Store) restore(date string, prev []models.FoodEntry, had bool) {
	if had {
		s.state[date] = prev
	} else {
		delete(s.state, date)
	}
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("%w: encoding log: %v", ErrStorage, err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: writing %q: %v", ErrStorage, s.key, err)
	}
	return nil
}

// TotalCalories sums the calories of entries.
func TotalCalories(entries []models.FoodEntry) float64 {
	return models.TotalCalories(entries)
}
