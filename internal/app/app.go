package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vberezny/stockbot/internal/config"
	"github.com/vberezny/stockbot/internal/delivery/telegram"
	"github.com/vberezny/stockbot/internal/infra/db"
	"github.com/vberezny/stockbot/internal/infra/log"
	"github.com/vberezny/stockbot/internal/infra/store"
	"github.com/vberezny/stockbot/internal/metrics"
	"github.com/vberezny/stockbot/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	bot         *telegram.Bot
	monitor     *usecase.Monitor
	metricsSrv  *http.Server
	logger      *zap.Logger
	monitorDone chan struct{}
	cleanupFn   func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	watchRepo := db.NewWatchRepository(dbConn)
	groupRepo := db.NewGroupSettingRepository(dbConn)
	stateRepo := db.NewItemStateRepository(dbConn)
	probe := store.NewProbe(cfg.StoreBaseURL, cfg.StoreLocale, cfg.ProbeUserAgent, cfg.ProbeTimeout, logger)

	recorder := metrics.NewRecorder()
	limiter := usecase.NewProbeLimiter(cfg.ProbeDelay)
	tracker := usecase.NewStateTracker()

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}

	notifier := telegram.NewNotifier(api, logger)
	dispatcher := usecase.NewDispatcher(groupRepo, notifier, recorder, logger)
	monitor := usecase.NewMonitor(
		watchRepo, stateRepo, probe,
		limiter, tracker, dispatcher,
		recorder, logger,
		cfg.MonitorInterval, cfg.ProbeTimeout,
	)

	watchUC := usecase.NewWatchUsecase(watchRepo, stateRepo, probe, limiter, logger)
	checkUC := usecase.NewCheckUsecase(probe, limiter)
	settingsUC := usecase.NewSettingsUsecase(groupRepo)

	handlers := telegram.NewHandlers(watchUC, checkUC, settingsUC, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{
		bot:         bot,
		monitor:     monitor,
		metricsSrv:  metricsSrv,
		logger:      logger,
		monitorDone: make(chan struct{}),
		cleanupFn:   cleanup,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("stockbot starting")

	if a.metricsSrv != nil {
		go func() {
			a.logger.Info("metrics listener starting", zap.String("addr", a.metricsSrv.Addr))
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	go func() {
		defer close(a.monitorDone)
		a.monitor.Run(ctx)
	}()

	a.logger.Info("stockbot started")
	return a.bot.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("stockbot shutting down")

	// Let an in-flight cycle finish its current probe before the database
	// goes away.
	select {
	case <-a.monitorDone:
	case <-time.After(30 * time.Second):
		a.logger.Warn("timeout waiting for monitor to stop")
	}

	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("failed to stop metrics listener", zap.Error(err))
		}
	}

	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
