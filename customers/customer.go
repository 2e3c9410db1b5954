// Package customers answers read queries over registered customers and the
// cities they live in. Customers are registered elsewhere; this package only
// reads them, joins their city and adds fields derived at read time.
package customers

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Genre is stored and serialized as upper-case text.
type Genre string

const (
	GenreMale   Genre = "MALE"
	GenreFemale Genre = "FEMALE"
)

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	return g == GenreMale || g == GenreFemale
}

// City is referenced by customers, never owned by them.
type City struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country"`
}

// Customer is a stored customer record with its city already joined.
type Customer struct {
	ID        uuid.UUID
	FullName  string
	BirthDate time.Time
	Genre     Genre
	IsActive  bool
	CityID    uuid.UUID
	City      City
}

// CustomerView is the read model returned to clients. The JSON field names
// are part of the public contract.
type CustomerView struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	BirthDate time.Time `json:"birth_date"`
	Genre     Genre     `json:"genre"`
	IsActive  bool      `json:"is_active"`
	City      City      `json:"city"`
	Age       int       `json:"age"`
}

// Filter selects customers. The zero Filter selects everyone.
type Filter struct {
	// Name is matched as a case-insensitive substring of the full name.
	// Empty or blank means no name filter.
	Name string
	// Limit caps the number of results; 0 means no cap.
	Limit int
	// Offset skips that many results of the ordered listing.
	Offset int
}

// NamePattern returns the trimmed name filter, "" when there is none.
func (f Filter) NamePattern() string {
	return strings.TrimSpace(f.Name)
}

// ErrNotFound is returned by Store.GetCustomer for unknown ids.
var ErrNotFound = errors.New("customer not found")
