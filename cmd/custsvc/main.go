// Command custsvc serves the customer read API.
//
// Configuration comes from a JSON file (-configSource=file, the default) or
// from Rigel over etcd (-configSource=rigel); CUSTSVC_* environment variables
// override either.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/custsvc/config"
	"github.com/remiges-tech/custsvc/customers"
	"github.com/remiges-tech/custsvc/customers/store/gormstore"
	"github.com/remiges-tech/custsvc/customers/store/memstore"
	"github.com/remiges-tech/custsvc/customersvc"
	"github.com/remiges-tech/custsvc/logger"
	"github.com/remiges-tech/custsvc/metrics"
	"github.com/remiges-tech/custsvc/pg"
	"github.com/remiges-tech/custsvc/router"
	"github.com/remiges-tech/custsvc/service"
	"github.com/remiges-tech/logharbour/logharbour"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configSource := flag.String("configSource", "file", "The configuration system to use (file or rigel)")
	configFilePath := flag.String("configFile", "./config.json", "The path to the configuration file")
	etcdEndpoints := flag.String("etcd", "localhost:2379", "Comma separated etcd endpoints for rigel")
	rigelApp := flag.String("rigelApp", "custsvc", "Rigel application name")
	rigelModule := flag.String("rigelModule", "server", "Rigel module name")
	rigelVersion := flag.Int("rigelVersion", 1, "Rigel schema version")
	rigelConfig := flag.String("rigelConfig", "dev", "Rigel config name")
	migrateDB := flag.Bool("migrate", false, "Run database migrations before serving (postgres store)")
	flag.Parse()

	var source config.Config
	switch *configSource {
	case "file":
		source = &config.File{ConfigFilePath: *configFilePath}
	case "rigel":
		r, err := config.NewRigel(*etcdEndpoints, *rigelApp, *rigelModule, *rigelVersion, *rigelConfig)
		if err != nil {
			return err
		}
		source = r
	default:
		return fmt.Errorf("unknown configuration system: %s", *configSource)
	}

	appConfig, err := config.Load(source, os.LookupEnv)
	if err != nil {
		return err
	}
	appConfig.Migrate = appConfig.Migrate || *migrateDB

	l := logger.New(appConfig.AppName, appConfig.Debug, nil)
	if !appConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, pinger, closeStore, err := openStore(ctx, appConfig, l)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.NewPrometheusMetrics()
	metrics.RegisterServiceMetrics(m)

	r := router.New(router.Options{
		Logger:         router.NewLogHarbourAdapter(l),
		Metrics:        m,
		RequestTimeout: appConfig.Server.RequestTimeout(),
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	s := service.NewService(r).WithLogger(l).WithMetrics(m)
	if err := customersvc.Register(s, customers.NewLister(store), pinger); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", appConfig.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.WithModule("startup").Info().LogActivity("listening", map[string]any{
			"port":  appConfig.Server.Port,
			"store": appConfig.Store,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.WithModule("startup").Info().LogActivity("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the configured store, its health pinger (nil for the
// memory store) and a function releasing its resources.
func openStore(ctx context.Context, c config.AppConfig, l *logharbour.Logger) (customers.Store, customersvc.Pinger, func(), error) {
	lh := l.WithModule("startup").WithOp("openStore")

	if c.Store == config.StoreMemory {
		if c.FixtureFile == "" {
			lh.Warn().LogActivity("memory store started empty", nil)
			return memstore.New(), nil, func() {}, nil
		}
		f, err := os.Open(c.FixtureFile)
		if err != nil {
			return nil, nil, nil, err
		}
		defer f.Close()
		store, err := memstore.Load(f)
		if err != nil {
			return nil, nil, nil, err
		}
		lh.Info().LogActivity("memory store loaded", map[string]any{"fixture": c.FixtureFile})
		return store, nil, func() {}, nil
	}

	if c.Migrate {
		if err := pg.Migrate(ctx, c.Database); err != nil {
			return nil, nil, nil, err
		}
		lh.Info().LogActivity("database migrated", nil)
	}
	db, err := pg.Open(ctx, c.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := pg.Close(db); err != nil {
			lh.Error(err).LogActivity("closing database", nil)
		}
	}
	return gormstore.New(db), pg.Pinger{DB: db}, closeDB, nil
}
