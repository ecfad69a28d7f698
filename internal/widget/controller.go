package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"calorie-counter/internal/dailylog"
	"calorie-counter/internal/models"
	"calorie-counter/internal/nutrition"
)

// User-facing messages.
const (
	MsgEmptyQuery   = "Please enter a food item."
	MsgFetchFailed  = "Failed to fetch data"
	MsgGeneric      = "Something went wrong."
	MsgStorage      = "Could not save your log."
	MsgEntryMissing = "That entry no longer exists."
)

// State is a point-in-time view of the widget.
type State struct {
	Status  Status
	Query   string
	Error   string
	Results []models.FoodRecord
	Today   string
	Days    []models.DaySummary
}

// Controller drives the widget: one lookup at a time, results appended to
// the daily log, errors kept as a message until the next attempt.
type Controller struct {
	resolver nutrition.Resolver
	store    *dailylog.Store

	mu      sync.Mutex
	status  Status
	query   string
	errMsg  string
	results []models.FoodRecord
}

func NewController(resolver nutrition.Resolver, store *dailylog.Store) *Controller {
	return &Controller{
		resolver: resolver,
		store:    store,
		status:   StatusIdle,
	}
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Begin starts a lookup for query. It fails with ErrBusy while another lookup
// is outstanding. A blank query moves the widget to StatusError and returns
// nutrition.ErrEmptyQuery; the caller must not resolve it.
func (c *Controller) Begin(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusLoading {
		return ErrBusy
	}

	c.query = query
	c.errMsg = ""
	c.results = nil

	if strings.TrimSpace(query) == "" {
		if err := c.moveLocked(StatusError); err != nil {
			return err
		}
		c.errMsg = MsgEmptyQuery
		return nutrition.ErrEmptyQuery
	}

	return c.moveLocked(StatusLoading)
}

// Complete finishes the lookup started by Begin. On success the records are
// appended to today's log.
func (c *Controller) Complete(ctx context.Context, records []models.FoodRecord, resolveErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusLoading {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, c.status)
	}

	if resolveErr != nil {
		c.errMsg = userMessage(resolveErr)
		c.status = StatusError
		return resolveErr
	}

	if _, err := c.store.Append(ctx, records); err != nil {
		c.errMsg = userMessage(err)
		c.status = StatusError
		return err
	}

	c.results = records
	c.status = StatusSuccess
	return nil
}

// Submit runs a full lookup synchronously.
func (c *Controller) Submit(ctx context.Context, query string) error {
	if err := c.Begin(query); err != nil {
		return err
	}
	records, err := c.resolver.Resolve(ctx, query)
	return c.Complete(ctx, records, err)
}

// Lookup resolves query without touching the widget state or the log.
func (c *Controller) Lookup(ctx context.Context, query string) ([]models.FoodRecord, error) {
	return c.resolver.Resolve(ctx, query)
}

// Remove deletes a logged entry. Failures are reported through the error
// message unless a lookup is outstanding.
func (c *Controller) Remove(ctx context.Context, date string, index int) error {
	_, err := c.store.DeleteAt(ctx, date, index)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusLoading {
		c.status = StatusError
		c.errMsg = userMessage(err)
	}
	return err
}

// Dismiss returns a finished widget to idle, clearing the message.
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusIdle {
		return nil
	}
	if err := c.moveLocked(StatusIdle); err != nil {
		return err
	}
	c.errMsg = ""
	return nil
}

// State returns a snapshot of the widget and the log.
func (c *Controller) State() State {
	c.mu.Lock()
	st := State{
		Status:  c.status,
		Query:   c.query,
		Error:   c.errMsg,
		Results: append([]models.FoodRecord(nil), c.results...),
	}
	c.mu.Unlock()

	st.Today = c.store.Today()
	st.Days = c.store.Snapshot().Summaries()
	return st
}

func (c *Controller) moveLocked(to Status) error {
	if !CanTransition(c.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.status, to)
	}
	c.status = to
	return nil
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, nutrition.ErrEmptyQuery):
		return MsgEmptyQuery
	case errors.Is(err, nutrition.ErrFetch):
		return MsgFetchFailed
	case errors.Is(err, dailylog.ErrStorage):
		return MsgStorage
	case errors.Is(err, dailylog.ErrOutOfRange):
		return MsgEntryMissing
	case err.Error() == "":
		return MsgGeneric
	default:
		return err.Error()
	}
}
