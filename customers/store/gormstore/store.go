// Package gormstore is the PostgreSQL customers.Store, built on gorm. The
// schema it reads is created by the pg migrations.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/custsvc/customers"
	"gorm.io/gorm"
)

type cityRecord struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name    string
	Country string
}

func (cityRecord) TableName() string { return "cities" }

type customerRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"->"`
	FullName  string
	BirthDate time.Time `gorm:"type:date"`
	Genre     string
	IsActive  bool
	CityID    uuid.UUID  `gorm:"type:uuid"`
	City      cityRecord `gorm:"foreignKey:CityID"`
}

func (customerRecord) TableName() string { return "customers" }

// Store reads customers through a shared *gorm.DB.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListCustomers implements customers.Store.
func (s *Store) ListCustomers(ctx context.Context, f customers.Filter) ([]customers.Customer, error) {
	q := s.db.WithContext(ctx).Preload("City").Order("seq ASC")
	if p := f.NamePattern(); p != "" {
		q = q.Where(`full_name ILIKE ? ESCAPE '\'`, "%"+EscapeLike(p)+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var recs []customerRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list customers: %w", err)
	}
	out := make([]customers.Customer, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toCustomer())
	}
	return out, nil
}

// GetCustomer implements customers.Store.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (customers.Customer, error) {
	var rec customerRecord
	err := s.db.WithContext(ctx).Preload("City").Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customers.Customer{}, customers.ErrNotFound
	}
	if err != nil {
		return customers.Customer{}, fmt.Errorf("gormstore: get customer: %w", err)
	}
	return rec.toCustomer(), nil
}

// ListCities implements customers.Store.
func (s *Store) ListCities(ctx context.Context) ([]customers.City, error) {
	var recs []cityRecord
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list cities: %w", err)
	}
	out := make([]customers.City, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toCity())
	}
	return out, nil
}

// EscapeLike escapes the LIKE metacharacters in s so it matches literally
// with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r cityRecord) toCity() customers.City {
	return customers.City{ID: r.ID, Name: r.Name, Country: r.Country}
}

func (r customerRecord) toCustomer() customers.Customer {
	return customers.Customer{
		ID:        r.ID,
		FullName:  r.FullName,
		BirthDate: r.BirthDate.UTC(),
		Genre:     customers.Genre(r.Genre),
		IsActive:  r.IsActive,
		CityID:    r.CityID,
		City:      r.City.toCity(),
	}
}
