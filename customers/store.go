package customers

import (
	"context"

	"github.com/google/uuid"
)

// Store is the read access to persisted customers and cities.
//
// ListCustomers returns customers in insertion order with City populated,
// applying every field of the Filter. GetCustomer returns ErrNotFound (possibly
// wrapped) when no customer has the id. Implementations must be safe for
// concurrent use.
type Store interface {
	ListCustomers(ctx context.Context, f Filter) ([]Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	ListCities(ctx context.Context) ([]City, error)
}
