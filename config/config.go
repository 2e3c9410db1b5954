// Package config loads the service configuration from a JSON file or from
// Rigel, then applies environment overrides and validates the result.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/remiges-tech/custsvc/pg"
	"github.com/remiges-tech/rigel"
	"github.com/remiges-tech/rigel/etcd"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Environment variables that override values from any source.
const (
	EnvDBDSN = "CUSTSVC_DB_DSN"
	EnvPort  = "CUSTSVC_PORT"
	EnvStore = "CUSTSVC_STORE"
)

type AppConfig struct {
	AppName     string       `json:"app_name" validate:"required"`
	Debug       bool         `json:"debug"`
	Store       string       `json:"store" validate:"required,oneof=memory postgres"`
	FixtureFile string       `json:"fixture_file"`
	Migrate     bool         `json:"migrate"`
	Server      ServerConfig `json:"server"`
	Database    pg.Config    `json:"database"`
}

type ServerConfig struct {
	Port                int `json:"port" validate:"required,min=1,max=65535"`
	RequestTimeoutMs    int `json:"request_timeout_ms" validate:"min=0"`
	ShutdownTimeoutSecs int `json:"shutdown_timeout_secs" validate:"min=0"`
}

// RequestTimeout is zero when requests have no deadline.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSecs) * time.Second
}

// Default returns the values used for anything a source leaves unset.
func Default() AppConfig {
	return AppConfig{
		AppName: "custsvc",
		Store:   StoreMemory,
		Server: ServerConfig{
			Port:                8080,
			RequestTimeoutMs:    5000,
			ShutdownTimeoutSecs: 10,
		},
		Database: pg.Config{
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
}

// Config is a source from which the application configuration can be loaded.
type Config interface {
	Check() error
	LoadConfig(c *AppConfig) error
}

// Load fills a copy of Default from cs, applies environment overrides and
// validates the result.
func Load(cs Config, lookupEnv func(string) (string, bool)) (AppConfig, error) {
	c := Default()
	if err := cs.Check(); err != nil {
		return c, err
	}
	if err := cs.LoadConfig(&c); err != nil {
		return c, fmt.Errorf("loading config: %w", err)
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if err := ApplyEnv(&c, lookupEnv); err != nil {
		return c, err
	}
	if err := Validate(c); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyEnv overrides c with the CUSTSVC_* variables that are set.
func ApplyEnv(c *AppConfig, lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvDBDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookupEnv(EnvStore); ok && v != "" {
		c.Store = v
	}
	if v, ok := lookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

var validate = validator.New()

var ErrNoDatabase = errors.New("postgres store needs database.dsn or database.host")

// Validate checks field constraints and that the postgres store has somewhere
// to connect to.
func Validate(c AppConfig) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store == StorePostgres && c.Database.DSN == "" && c.Database.Host == "" {
		return ErrNoDatabase
	}
	return nil
}

// File

type File struct {
	ConfigFilePath string
}

func (f *File) Check() error {
	if f.ConfigFilePath == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}
	return nil
}

// LoadConfig decodes the JSON file over c. Fields absent from the file keep
// their current values; unknown fields are rejected.
func (f *File) LoadConfig(c *AppConfig) error {
	file, err := os.Open(f.ConfigFilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	return decoder.Decode(c)
}

// Rigel

// KeyValueGetter is the part of the Rigel client the Rigel source reads
// through.
type KeyValueGetter interface {
	Get(ctx context.Context, key string) (string, error)
	GetInt(ctx context.Context, key string) (int, error)
}

// Rigel reads the configuration keys one by one from a Rigel schema.
// server.port and store are required; the database keys are read only when
// store is postgres, and database.dsn takes precedence over the discrete keys.
type Rigel struct {
	Client  KeyValueGetter
	Timeout time.Duration
}

// NewRigel connects to etcd at the comma separated endpoints and returns a
// source reading the given schema version and config name.
func NewRigel(etcdEndpoints, app, module string, version int, configName string) (*Rigel, error) {
	etcdStorage, err := etcd.NewEtcdStorage(strings.Split(etcdEndpoints, ","))
	if err != nil {
		return nil, fmt.Errorf("failed to create EtcdStorage: %w", err)
	}
	return &Rigel{
		Client:  rigel.New(etcdStorage, app, module, version, configName),
		Timeout: 5 * time.Second,
	}, nil
}

func (r *Rigel) Check() error {
	if r.Client == nil {
		return fmt.Errorf("rigel client cannot be nil")
	}
	return nil
}

func (r *Rigel) LoadConfig(c *AppConfig) error {
	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var err error
	if c.Server.Port, err = r.Client.GetInt(ctx, "server.port"); err != nil {
		return fmt.Errorf("server.port: %w", err)
	}
	if c.Store, err = r.Client.Get(ctx, "store"); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if v, err := r.Client.GetInt(ctx, "server.request_timeout_ms"); err == nil {
		c.Server.RequestTimeoutMs = v
	}
	if c.Store != StorePostgres {
		return nil
	}

	if dsn, err := r.Client.Get(ctx, "database.dsn"); err == nil && dsn != "" {
		c.Database.DSN = dsn
		return nil
	}
	if c.Database.Host, err = r.Client.Get(ctx, "database.host"); err != nil {
		return fmt.Errorf("database.host: %w", err)
	}
	if c.Database.Port, err = r.Client.GetInt(ctx, "database.port"); err != nil {
		return fmt.Errorf("database.port: %w", err)
	}
	if c.Database.User, err = r.Client.Get(ctx, "database.user"); err != nil {
		return fmt.Errorf("database.user: %w", err)
	}
	if c.Database.Password, err = r.Client.Get(ctx, "database.password"); err != nil {
		return fmt.Errorf("database.password: %w", err)
	}
	if c.Database.DBName, err = r.Client.Get(ctx, "database.dbname"); err != nil {
		return fmt.Errorf("database.dbname: %w", err)
	}
	return nil
}
