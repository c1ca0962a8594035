package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VolPull/internal/domain/repository"
	"VolPull/internal/handler/api"
	icache "VolPull/internal/service/cache"
	"VolPull/internal/usecase"
	pkgch "VolPull/pkg/clickhouse"
	"VolPull/pkg/config"
	xhttp "VolPull/pkg/http"
	pkgkafka "VolPull/pkg/kafka"
	applogger "VolPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	dvolPipe   *usecase.DvolPipeline
	vovPipe    *usecase.VovPipeline
	validation *usecase.ValidationUseCase
	collector  *usecase.IndexCollector
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	results    repository.ResultStore
	cache      icache.BytesCache
	chClient   *pkgch.Client

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	dvolPipe *usecase.DvolPipeline,
	vovPipe *usecase.VovPipeline,
	validation *usecase.ValidationUseCase,
	collector *usecase.IndexCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	results repository.ResultStore,
	cache icache.BytesCache,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		dvolPipe:   dvolPipe,
		vovPipe:    vovPipe,
		validation: validation,
		collector:  collector,
		consumer:   consumer,
		kh:         kh,
		results:    results,
		cache:      cache,
		chClient:   chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpHandler := a.httpHandler
	if httpHandler == nil {
		httpHandler = api.NewDvolEchoHandler(a.log, a.results, a.validation, a.cache, a.cfg.Dvol.CacheTTL)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	// Live index ticks keep a warm view of spot between snapshot hours.
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("index collector error", applogger.Error(err))
			}
		}()
		a.log.Info("index collector started", applogger.Any("assets", a.cfg.Deribit.Assets))
	}

	// Sink mode: drain the hourly values topic into ClickHouse.
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	go a.scheduleHourly(ctx)
	go a.scheduleDaily(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// RunBatch executes one batch mode over [from, to] and exits.
func (a *App) RunBatch(ctx context.Context, mode string, from, to time.Time) error {
	switch mode {
	case "backfill":
		computed, err := a.dvolPipe.RunBatch(ctx, a.cfg.Deribit.Assets, from, to)
		a.log.Info("backfill finished", applogger.Int("computed", computed))
		return err
	case "vov":
		return a.vovPipe.Run(ctx, a.cfg.Deribit.Assets, from, to)
	case "validate":
		for _, asset := range a.cfg.Deribit.Assets {
			report, err := a.validation.Validate(ctx, asset, from, to)
			if err != nil {
				return err
			}
			a.log.Info("validation report",
				applogger.String("asset", asset),
				applogger.Int("days", report.Days),
				applogger.Float64("correlation", report.Correlation),
				applogger.Float64("mae", report.MAE),
				applogger.Float64("rmse", report.RMSE),
				applogger.Bool("pass", report.Pass))
		}
		return nil
	}
	return fmt.Errorf("unknown batch mode %q", mode)
}

// scheduleHourly computes each asset shortly after every hour closes.
func (a *App) scheduleHourly(ctx context.Context) {
	lag := a.cfg.Dvol.RecomputeLag
	if lag <= 0 {
		lag = time.Minute
	}
	for {
		next := time.Now().UTC().Truncate(time.Hour).Add(time.Hour).Add(lag)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		for _, asset := range a.cfg.Deribit.Assets {
			rec, err := a.dvolPipe.ComputeLive(ctx, asset)
			if err != nil {
				a.log.Warn("hourly compute failed",
					applogger.String("asset", asset), applogger.Error(err))
				continue
			}
			a.log.Info("hourly dvol",
				applogger.String("asset", asset),
				applogger.Float64("dvol", rec.Dvol),
				applogger.String("quality", string(rec.Quality)))
		}
	}
}

// scheduleDaily refreshes the VoV series once per UTC day.
func (a *App) scheduleDaily(ctx context.Context) {
	for {
		now := time.Now().UTC()
		next := now.Truncate(24 * time.Hour).Add(24*time.Hour + 10*time.Minute)
		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}
		from := time.Now().UTC().AddDate(-1, 0, 0)
		if err := a.vovPipe.Run(ctx, a.cfg.Deribit.Assets, from, time.Now().UTC()); err != nil {
			a.log.Warn("daily vov run failed", applogger.Error(err))
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("index collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
