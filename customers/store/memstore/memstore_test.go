package memstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/custsvc/customers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Store, customers.City) {
	t.Helper()
	s := New()
	city := s.AddCity(customers.City{Name: "Porto Alegre", Country: "Brazil"})
	birth := time.Date(1995, time.October, 14, 0, 0, 0, 0, time.UTC)
	for _, c := range []customers.Customer{
		{FullName: "Mateus Pinto Garcia", Genre: customers.GenreMale},
		{FullName: "Ana Maria Garcia", Genre: customers.GenreFemale},
		{FullName: "Joana 50%_off Lima", Genre: customers.GenreFemale},
	} {
		c.BirthDate = birth
		c.CityID = city.ID
		c.IsActive = true
		_, err := s.AddCustomer(c)
		require.NoError(t, err)
	}
	return s, city
}

func names(cs []customers.Customer) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.FullName)
	}
	return out
}

func TestListCustomers(t *testing.T) {
	s, city := seed(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter customers.Filter
		want   []string
	}{
		{"no filter", customers.Filter{}, []string{"Mateus Pinto Garcia", "Ana Maria Garcia", "Joana 50%_off Lima"}},
		{"blank filter", customers.Filter{Name: "   "}, []string{"Mateus Pinto Garcia", "Ana Maria Garcia", "Joana 50%_off Lima"}},
		{"first name", customers.Filter{Name: "Mateus"}, []string{"Mateus Pinto Garcia"}},
		{"shared surname", customers.Filter{Name: "Garcia"}, []string{"Mateus Pinto Garcia", "Ana Maria Garcia"}},
		{"case insensitive", customers.Filter{Name: "gARCIA"}, []string{"Mateus Pinto Garcia", "Ana Maria Garcia"}},
		{"middle of word", customers.Filter{Name: "ari"}, []string{"Ana Maria Garcia"}},
		{"literal percent", customers.Filter{Name: "%"}, []string{"Joana 50%_off Lima"}},
		{"no match", customers.Filter{Name: "Nobody"}, []string{}},
		{"limit", customers.Filter{Limit: 2}, []string{"Mateus Pinto Garcia", "Ana Maria Garcia"}},
		{"offset", customers.Filter{Offset: 1, Limit: 1}, []string{"Ana Maria Garcia"}},
		{"offset past end", customers.Filter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListCustomers(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, names(got))
			for _, c := range got {
				assert.Equal(t, city, c.City)
			}
		})
	}
}

func TestAddCustomerUnknownCity(t *testing.T) {
	s := New()
	_, err := s.AddCustomer(customers.Customer{FullName: "X", Genre: customers.GenreMale, CityID: uuid.New()})
	assert.True(t, errors.Is(err, ErrUnknownCity))

	_, err = s.AddCustomer(customers.Customer{FullName: "X", Genre: "OTHER"})
	assert.Error(t, err)
}

func TestGetCustomer(t *testing.T) {
	s, city := seed(t)
	ctx := context.Background()

	all, err := s.ListCustomers(ctx, customers.Filter{})
	require.NoError(t, err)

	got, err := s.GetCustomer(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria Garcia", got.FullName)
	assert.Equal(t, city, got.City)

	_, err = s.GetCustomer(ctx, uuid.New())
	assert.ErrorIs(t, err, customers.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	s, _ := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListCustomers(ctx, customers.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListCitiesOrderedByName(t *testing.T) {
	s := New()
	s.AddCity(customers.City{Name: "Recife", Country: "Brazil"})
	s.AddCity(customers.City{Name: "Lisboa", Country: "Portugal"})

	got, err := s.ListCities(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lisboa", got[0].Name)
	assert.Equal(t, "Recife", got[1].Name)
}

func TestLoad(t *testing.T) {
	cityID := uuid.New()
	fixture := `{
		"cities": [{"id": "` + cityID.String() + `", "name": "Curitiba", "country": "Brazil"}],
		"customers": [
			{"full_name": "Mateus Pinto Garcia", "birth_date": "1995-10-14", "genre": "MALE", "city_id": "` + cityID.String() + `"},
			{"full_name": "Ana Maria Garcia", "birth_date": "1990-01-02", "genre": "FEMALE", "is_active": false, "city_id": "` + cityID.String() + `"}
		]
	}`

	s, err := Load(strings.NewReader(fixture))
	require.NoError(t, err)

	got, err := s.ListCustomers(context.Background(), customers.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsActive)
	assert.False(t, got[1].IsActive)
	assert.Equal(t, 1995, got[0].BirthDate.Year())
	assert.Equal(t, "Curitiba", got[0].City.Name)
}

func TestLoadRejectsBadFixture(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
	}{
		{"malformed json", `{"cities": [}`},
		{"unknown field", `{"people": []}`},
		{"bad birth date", `{"cities": [], "customers": [{"full_name": "X", "birth_date": "14-10-1995", "genre": "MALE"}]}`},
		{"unknown city", `{"cities": [], "customers": [{"full_name": "X", "birth_date": "1995-10-14", "genre": "MALE", "city_id": "` + uuid.NewString() + `"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.fixture))
			assert.Error(t, err)
		})
	}
}

func TestLoadFixtureFile(t *testing.T) {
	f, err := os.Open("testdata/customers.json")
	require.NoError(t, err)
	defer f.Close()

	s, err := Load(f)
	require.NoError(t, err)

	got, err := s.ListCustomers(context.Background(), customers.Filter{Name: "garcia"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mateus Pinto Garcia", "Ana Maria Garcia"}, names(got))
	assert.Equal(t, "Lisboa", got[1].City.Name)

	cities, err := s.ListCities(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}
