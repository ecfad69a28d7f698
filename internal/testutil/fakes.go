package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"calorie-counter/internal/models"
	"calorie-counter/internal/nutrition"
	"calorie-counter/internal/storage"
)

// ErrInjected is returned by FailingKV when a failure is armed.
var ErrInjected = errors.New("injected storage failure")

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// FailingKV wraps a MemoryStorage and fails reads or writes on demand.
type FailingKV struct {
	*storage.MemoryStorage

	mu       sync.Mutex
	FailGet  bool
	FailPut  bool
	PutCount int
}

func NewFailingKV() *FailingKV {
	return &FailingKV{MemoryStorage: storage.NewMemoryStorage()}
}

func (f *FailingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.FailGet
	f.mu.Unlock()
	if fail {
		return nil, false, ErrInjected
	}
	return f.MemoryStorage.Get(ctx, key)
}

func (f *FailingKV) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.PutCount++
	fail := f.FailPut
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.MemoryStorage.Put(ctx, key, value)
}

// SetFailPut arms or disarms write failures.
func (f *FailingKV) SetFailPut(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailPut = fail
}

// Puts returns the number of write attempts so far.
func (f *FailingKV) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PutCount
}

// FakeResolver answers lookups from a table and counts the calls that would
// have reached the network.
type FakeResolver struct {
	mu      sync.Mutex
	Results map[string][]models.FoodRecord
	Err     error
	calls   []string

	// Block, when non-nil, is waited on before answering.
	Block chan struct{}
}

var _ nutrition.Resolver = (*FakeResolver)(nil)

func NewFakeResolver() *FakeResolver {
	return &FakeResolver{Results: map[string][]models.FoodRecord{}}
}

// With registers the records returned for query.
func (r *FakeResolver) With(query string, records ...models.FoodRecord) *FakeResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results[query] = records
	return r
}

func (r *FakeResolver) Resolve(ctx context.Context, query string) ([]models.FoodRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nutrition.ErrEmptyQuery
	}

	r.mu.Lock()
	r.calls = append(r.calls, query)
	block := r.Block
	err := r.Err
	records, ok := r.Results[query]
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &nutrition.FetchError{Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.FoodRecord{}, nil
	}
	out := make([]models.FoodRecord, len(records))
	copy(out, records)
	return out, nil
}

// SetErr makes every following lookup fail with err.
func (r *FakeResolver) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// Calls returns the queries that reached the resolver's network path.
func (r *FakeResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Apple is the canonical lookup result used across tests.
func Apple() models.FoodRecord {
	return models.FoodRecord{FoodName: "apple", Calories: 95}
}
