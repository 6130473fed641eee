// Package app wires config, storage, the auto-reply session and the Telegram
// transport into one long-running process.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/assets"
	"github.com/ykvlv/autoreply-bot/internal/autoreply"
	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/config"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/scheduler"
	"github.com/ykvlv/autoreply-bot/internal/stats"
	"github.com/ykvlv/autoreply-bot/internal/store"
	"github.com/ykvlv/autoreply-bot/internal/telegram"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	ready   atomic.Bool

	repo    store.Repo
	session *autoreply.Session
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	a := &App{cfg: cfg, log: log, bot: bot}
	mux := http.NewServeMux()
	// 503 until storage is open and the session is wired
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !a.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	a.httpSrv = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	return a, nil
}

// Run serves updates until SIGINT/SIGTERM or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting autoreply-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.Int64("owner_id", a.cfg.OwnerID),
		zap.String("tz", a.cfg.TZName),
		zap.String("http", a.cfg.HTTPAddr),
	)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	if err := a.wire(ctx); err != nil {
		a.shutdownHTTP()
		return err
	}
	defer func() { _ = a.repo.Close() }()
	a.ready.Store(true)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sched := scheduler.New(a.session.Temp, a.log, a.cfg.SweepSpec)
		if err := sched.Run(ctx); err != nil {
			a.log.Error("scheduler error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.ready.Store(false)
			a.bot.StopReceivingUpdates()
			a.shutdownHTTP()
			<-sweepDone
			return nil
		case upd := <-updates:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// wire opens storage and builds the session and router. On error nothing is
// left open.
func (a *App) wire(ctx context.Context) error {
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	clk := clock.NewZone(a.cfg.Location())
	activity := telegram.NewActivityPresence(clk, a.cfg.AwayAfter)
	session := autoreply.NewSession(repo, clk,
		autoreply.NewPolledPresence(activity, clk, a.cfg.StatusPollInterval, a.log),
		autoreply.Settings{
			OwnerID:            a.cfg.OwnerID,
			DefaultMessage:     a.cfg.DefaultMessage,
			Cooldown:           a.cfg.ReplyCooldown,
			CooldownMaxTracked: a.cfg.CooldownMaxTracked,
			ConfirmTTL:         a.cfg.ConfirmTTL,
		}, a.log)

	if _, err := session.Controls.Ensure(ctx); err != nil {
		_ = repo.Close()
		return err
	}
	// an override may have expired while the bot was down
	if _, err := session.Temp.ResetIfExpired(ctx); err != nil {
		a.log.Warn("startup temp mode check failed", zap.Error(err))
	}

	help, err := assets.Help(map[string]string{
		"TZ":          a.cfg.TZName,
		"CONFIRM_TTL": domain.FormatRemaining(a.cfg.ConfirmTTL),
		"COOLDOWN":    domain.FormatRemaining(a.cfg.ReplyCooldown),
	})
	if err != nil {
		_ = repo.Close()
		return err
	}

	a.repo = repo
	a.session = session
	a.router = telegram.NewRouter(a.bot, a.log, session, stats.New(repo, clk, a.cfg.OwnerID), activity, clk,
		telegram.Options{
			TZName:   a.cfg.TZName,
			HelpText: help,
			BotName:  a.bot.Self.UserName,
		})
	return nil
}

func (a *App) shutdownHTTP() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
}

// Migrate applies pending migrations and exits.
func Migrate(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	repo, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("path", cfg.DBPath))
	return repo.Close()
}
