// Package wire provides dependency injection for the comanda client.
// It creates singleton services with lazy initialization from the loaded
// configuration.
package wire

import (
	"log/slog"
	"os"
	"sync"

	"github.com/example/comanda/internal/adapters/natshint"
	"github.com/example/comanda/internal/adapters/posapi"
	"github.com/example/comanda/internal/adapters/terminal"
	"github.com/example/comanda/internal/app"
	"github.com/example/comanda/internal/config"
	"github.com/example/comanda/internal/ports/primary"
	"github.com/example/comanda/internal/ports/secondary"
)

var (
	cfg                 *config.Config
	gateway             secondary.OrderGateway
	boardService        *app.BoardSyncService
	transitionService   primary.TransitionService
	notificationService primary.NotificationService
	once                sync.Once
	initErr             error
)

// Config returns the loaded configuration.
func Config() (*config.Config, error) {
	once.Do(initServices)
	return cfg, initErr
}

// Gateway returns the singleton OrderGateway instance.
func Gateway() (secondary.OrderGateway, error) {
	once.Do(initServices)
	return gateway, initErr
}

// BoardService returns the singleton board sync engine.
func BoardService() (primary.BoardService, error) {
	once.Do(initServices)
	return boardService, initErr
}

// TransitionService returns the singleton transition service.
func TransitionService() (primary.TransitionService, error) {
	once.Do(initServices)
	return transitionService, initErr
}

// NotificationService returns the singleton notification engine.
func NotificationService() (primary.NotificationService, error) {
	once.Do(initServices)
	return notificationService, initErr
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		initErr = err
		return
	}
	cfg, initErr = config.LoadConfig(cwd)
	if initErr != nil {
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	gateway = posapi.NewClient(cfg.APIURL, cfg.Token, logger)

	var chime secondary.Chime
	if !cfg.SoundDisabled {
		chime = terminal.NewBellChime(os.Stdout)
	}

	intervals := app.DefaultBoardSyncIntervals()
	intervals.Refresh = cfg.RefreshInterval()
	intervals.Alert = cfg.AlertInterval()
	boardService = app.NewBoardSyncService(gateway, chime, nil, logger, intervals)

	transitionService = app.NewTransitionService(gateway, boardService, logger)

	// The hint channel is optional: without a NATS URL the engine relies on
	// polling alone.
	var hints secondary.HintListener
	if cfg.NATSURL != "" {
		hints, err = natshint.NewListener(cfg.NATSURL, cfg.HintSubject)
		if err != nil {
			logger.Warn("hint channel unavailable", "error", err)
			hints = nil
		}
	}

	feedIntervals := app.DefaultNotificationIntervals()
	feedIntervals.Poll = cfg.FeedPollInterval()
	notificationService = app.NewNotificationDedupService(gateway, hints, boardService, logger, feedIntervals)
}
