package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/custsvc/validations"
)

// Lister runs the customer read queries against a Store and shapes the
// results into CustomerViews. It holds no mutable state and may be shared by
// concurrent requests.
type Lister struct {
	store Store
	now   func() time.Time
}

// NewLister returns a Lister reading from store and using the wall clock.
func NewLister(store Store) *Lister {
	return &Lister{store: store, now: time.Now}
}

// WithClock returns a copy of l that computes ages against now().
func (l *Lister) WithClock(now func() time.Time) *Lister {
	return &Lister{store: l.store, now: now}
}

// List returns the customers matching f. An empty result is an empty,
// non-nil slice. Store failures are returned wrapped and never retried.
func (l *Lister) List(ctx context.Context, f Filter) ([]CustomerView, error) {
	found, err := l.store.ListCustomers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	now := l.now()
	views := make([]CustomerView, 0, len(found))
	for _, c := range found {
		views = append(views, newView(c, now))
	}
	return views, nil
}

// Get returns one customer. Unknown ids give an error wrapping ErrNotFound.
func (l *Lister) Get(ctx context.Context, id uuid.UUID) (CustomerView, error) {
	c, err := l.store.GetCustomer(ctx, id)
	if err != nil {
		return CustomerView{}, fmt.Errorf("getting customer %s: %w", id, err)
	}
	return newView(c, l.now()), nil
}

// Cities returns every city known to the store.
func (l *Lister) Cities(ctx context.Context) ([]City, error) {
	cities, err := l.store.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}
	if cities == nil {
		cities = []City{}
	}
	return cities, nil
}

func newView(c Customer, now time.Time) CustomerView {
	return CustomerView{
		ID:        c.ID,
		FullName:  c.FullName,
		BirthDate: c.BirthDate,
		Genre:     c.Genre,
		IsActive:  c.IsActive,
		City:      c.City,
		Age:       validations.CalendarYearAge(c.BirthDate, now),
	}
}
