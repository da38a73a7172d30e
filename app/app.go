package app

import (
	"context"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/searchktools/fast-telemetry/config"
	"github.com/searchktools/fast-telemetry/core"
	"github.com/searchktools/fast-telemetry/core/router"
	"github.com/searchktools/fast-telemetry/telemetry"
	"github.com/searchktools/fast-telemetry/telemetry/api"
)

// metricsShutdownTimeout bounds the metrics listener shutdown
const metricsShutdownTimeout = 5 * time.Second

// App wires config, logger, store, router and engine into one process
type App struct {
	cfg    *config.Config
	log    hclog.Logger
	store  *telemetry.MemoryStore
	engine *core.Engine
}

// New builds the application. policy selects how the engine is constructed.
func New(cfg *config.Config, log hclog.Logger, policy core.Policy) (*App, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	store := telemetry.NewMemoryStore()

	b := router.NewBuilder()
	api.RegisterRoutes(b, store, log)
	r, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build routes")
	}

	engine, err := core.NewService(EngineConfig(cfg.Server), r, policy, core.WithLogger(log))
	if err != nil {
		return nil, errors.Wrap(err, "create engine")
	}

	return &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		engine: engine,
	}, nil
}

// EngineConfig maps the server section onto the runtime config
func EngineConfig(s config.Server) core.EngineConfig {
	return core.EngineConfig{
		Address:        s.Address,
		Port:           s.Port,
		Threads:        s.Threads,
		KeepAlive:      s.KeepAlive(),
		MaxConnections: s.MaxConnections,
	}
}

// Engine returns the underlying engine
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Store returns the telemetry store
func (a *App) Store() *telemetry.MemoryStore {
	return a.store
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// The engine ending for any reason stops the metrics listener too
	g.Go(func() error {
		defer cancel()
		return a.engine.Run(ctx)
	})

	if addr := a.cfg.Metrics.Address; addr != "" {
		srv := &nethttp.Server{
			Addr:              addr,
			Handler:           a.metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			a.log.Info("metrics listening", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				return errors.Wrap(err, "metrics listener")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	a.log.Info("shutdown complete", "events", len(a.store.EventNames()))
	return err
}

func (a *App) metricsMux() *nethttp.ServeMux {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", a.engine.Metrics().Handler())
	mux.HandleFunc("/debug/pools", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(a.engine.PoolStatsText()))
	})
	return mux
}
