// Package memstore is an in-memory customers.Store. It backs unit tests and
// the memory mode of the server, where it can be seeded from a JSON fixture.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/custsvc/customers"
	"github.com/remiges-tech/custsvc/wscutils"
)

// ErrUnknownCity is returned when a customer references a city the store
// does not hold.
var ErrUnknownCity = errors.New("unknown city")

// Store keeps customers in insertion order, the same order the SQL store
// returns them in.
type Store struct {
	mu        sync.RWMutex
	cities    map[uuid.UUID]customers.City
	customers []customers.Customer
}

// New returns an empty Store.
func New() *Store {
	return &Store{cities: make(map[uuid.UUID]customers.City)}
}

// AddCity stores c, assigning an id when c has none, and returns it.
func (s *Store) AddCity(c customers.City) customers.City {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[c.ID] = c
	return c
}

// AddCustomer stores c after the given city, assigning an id when c has none.
// The returned customer has its City joined.
func (s *Store) AddCustomer(c customers.Customer) (customers.Customer, error) {
	if !c.Genre.Valid() {
		return customers.Customer{}, fmt.Errorf("memstore: invalid genre %q", c.Genre)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	city, ok := s.cities[c.CityID]
	if !ok {
		return customers.Customer{}, fmt.Errorf("memstore: city %s: %w", c.CityID, ErrUnknownCity)
	}
	c.City = customers.City{}
	s.customers = append(s.customers, c)
	c.City = city
	return c, nil
}

// ListCustomers implements customers.Store.
func (s *Store) ListCustomers(ctx context.Context, f customers.Filter) ([]customers.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern := strings.ToLower(f.NamePattern())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]customers.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if pattern != "" && !strings.Contains(strings.ToLower(c.FullName), pattern) {
			continue
		}
		c.City = s.cities[c.CityID]
		out = append(out, c)
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []customers.Customer{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// GetCustomer implements customers.Store.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (customers.Customer, error) {
	if err := ctx.Err(); err != nil {
		return customers.Customer{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			c.City = s.cities[c.CityID]
			return c, nil
		}
	}
	return customers.Customer{}, customers.ErrNotFound
}

// ListCities implements customers.Store. Cities are ordered by name.
func (s *Store) ListCities(ctx context.Context) ([]customers.City, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]customers.City, 0, len(s.cities))
	for _, c := range s.cities {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

const birthDateLayout = "2006-01-02"

type fixture struct {
	Cities    []customers.City  `json:"cities"`
	Customers []fixtureCustomer `json:"customers"`
}

type fixtureCustomer struct {
	ID        uuid.UUID               `json:"id"`
	FullName  string                  `json:"full_name"`
	BirthDate string                  `json:"birth_date"`
	Genre     customers.Genre         `json:"genre"`
	IsActive  wscutils.Optional[bool] `json:"is_active"`
	CityID    uuid.UUID               `json:"city_id"`
}

// Load builds a Store from a JSON fixture of the form
//
//	{"cities": [{"id", "name", "country"}],
//	 "customers": [{"full_name", "birth_date": "YYYY-MM-DD", "genre", "is_active", "city_id"}]}
//
// is_active defaults to true when absent or null, as in the database schema.
func Load(r io.Reader) (*Store, error) {
	var fx fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("memstore: decoding fixture: %w", err)
	}

	s := New()
	for _, c := range fx.Cities {
		s.AddCity(c)
	}
	for i, fc := range fx.Customers {
		birth, err := time.ParseInLocation(birthDateLayout, fc.BirthDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("memstore: customer %d: birth_date: %w", i, err)
		}
		active := true
		if v, ok := fc.IsActive.Get(); ok {
			active = v
		}
		if _, err := s.AddCustomer(customers.Customer{
			ID:        fc.ID,
			FullName:  fc.FullName,
			BirthDate: birth,
			Genre:     fc.Genre,
			IsActive:  active,
			CityID:    fc.CityID,
		}); err != nil {
			return nil, fmt.Errorf("memstore: customer %d: %w", i, err)
		}
	}
	return s, nil
}
