package main

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/ratelimit"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/auth"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/database"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/dexscreener"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
)

// app holds every long-lived component of the tracker.
type app struct {
	cfg *config.Config
	log logger.Logger

	hosted *sqlx.DB
	prices *dexscreener.SearchClient
	loop   *pricing.Loop

	services api.Services
}

// newApp loads config, opens the stores and wires the services. The returned
// cleanup closes the log sink, the hosted database and the price client.
func newApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zl, flush, err := logger.NewZapLogger(logger.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{cfg: cfg, log: zl}
	cleanup := func() {
		if a.prices != nil {
			if err := a.prices.Close(); err != nil {
				a.log.Warnf("failed to close price client: %v", err)
			}
		}
		if a.hosted != nil {
			if err := a.hosted.Close(); err != nil {
				a.log.Warnf("failed to close hosted database: %v", err)
			}
		}
		flush()
	}

	if err := a.wire(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, log := a.cfg, a.log
	clk := clock.New()

	local, err := storage.NewLocalStore(cfg.Storage.LocalDir)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	log.Infof("local store at %s", cfg.Storage.LocalDir)

	session := auth.NewSession()

	var (
		hostedBackend storage.Backend
		migrator      service.LocalMigrator
	)
	if cfg.Storage.Hosted.HostedEnabled() {
		db, err := database.Open(cfg.Storage.Hosted.Driver, cfg.Storage.Hosted.ConnectionString())
		if err != nil {
			return fmt.Errorf("failed to open hosted database: %w", err)
		}
		a.hosted = db
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate hosted database: %w", err)
		}
		hosted := storage.NewHostedStore(db)
		hostedBackend = hosted
		migrator = storage.NewMigrator(local, hosted, log)
		log.Infof("hosted store enabled (%s)", cfg.Storage.Hosted.Driver)
	}
	selector := storage.NewSelector(local, hostedBackend, session, log)

	a.prices = dexscreener.NewSearchClient(cfg.Polling.PriceAPIURL, cfg.Polling.RequestTimeout, log)
	pacer := ratelimit.New(1, ratelimit.Per(cfg.Polling.RequestDelay))

	hub := realtime.NewHub()

	portfolios := service.NewPortfolioService(selector, a.prices, pacer, hub, clk, log)
	alerts := service.NewAlertService(selector, portfolios, clk, log)

	mailer := notify.NewLogMailer(cfg.Email.SendDelay, clk, log)
	var emailSettings *service.EmailSettingsService
	emailChannel := notify.NewEmailChannel(notify.SettingsFunc(func(ctx context.Context) (model.EmailSettings, error) {
		return emailSettings.Settings(ctx)
	}), mailer, cfg.Email.From, cfg.Email.VerificationDelay, clk, log)
	emailSettings = service.NewEmailSettingsService(selector, emailChannel, clk, log)

	for _, r := range []service.Reloader{portfolios, alerts, emailSettings} {
		if err := r.Load(ctx); err != nil {
			return err
		}
	}

	sounds := notify.NewSoundLibrary(clk)
	player := notify.NewPlayer(sounds, hub, clk, log)
	browser := notify.NewBrowserNotifier(notify.NewPermissionState(), hub, clk)
	dispatcher := notify.NewDispatcher(log,
		notify.NewSoundChannel(player),
		notify.NewBrowserChannel(browser),
		emailChannel,
	)

	a.loop = pricing.NewLoop(a.prices, portfolios, alerts, dispatcher, pricing.NewCronScheduler(log),
		pacer, clk, cfg.Polling.Interval, log)
	a.loop.OnFired(func(event model.AlertEvent, results []notify.ChannelResult) {
		hub.Publish(realtime.EventAlertFired, map[string]any{
			"event":    event,
			"channels": results,
		})
	})

	key, err := service.SessionKey(cfg.Admin.SessionKey)
	if err != nil {
		return err
	}
	if cfg.Admin.SessionKey == "" {
		log.Warnf("ADMIN_SESSION_KEY not set, admin sessions end on restart")
	}
	admin := service.NewAdminService(service.AdminConfig{
		Password:   cfg.Admin.Password,
		Email:      cfg.Admin.Email,
		SessionTTL: cfg.Admin.SessionTTL,
		ResetDelay: cfg.Email.SendDelay,
	}, key, local, portfolios, alerts, clk, log)

	a.services = api.Services{
		System:        service.NewSystemService(local, a.hosted, a.loop, selector, session, version),
		Portfolios:    portfolios,
		Alerts:        alerts,
		Export:        service.NewExportService(portfolios, clk),
		EmailSettings: emailSettings,
		Preferences:   service.NewPreferencesService(local),
		Admin:         admin,
		Auth:          service.NewAuthService(session, migrator, log, portfolios, alerts, emailSettings),
		Prices:        a.prices,
		Sounds:        sounds,
		Player:        player,
		Notifier:      browser,
		Hub:           hub,
	}
	return nil
}
