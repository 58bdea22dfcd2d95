package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/app"
	"github.com/sssohn/pointsd/internal/audit"
	"github.com/sssohn/pointsd/internal/auth"
	"github.com/sssohn/pointsd/internal/config"
	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/jobs"
	"github.com/sssohn/pointsd/internal/live"
	"github.com/sssohn/pointsd/internal/logging"
	"github.com/sssohn/pointsd/internal/notify"
	"github.com/sssohn/pointsd/internal/observability"
	"github.com/sssohn/pointsd/internal/points"
)

// set via -ldflags at release time
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("db open failed", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("migrate failed", "err", err)
	}
	if cfg.Env == "dev" {
		if err := db.SeedDemo(ctx, database, cfg.SchoolYear); err != nil {
			lg.Sugar.Warnw("demo seed failed", "err", err)
		}
	}

	hub := live.NewHub(lg.Named("live"))
	go live.Listen(ctx, cfg.DatabaseURL, hub, lg.Named("live"))

	rec := audit.New(database, lg.Named("audit"))

	var notifier points.Notifier
	if tg, err := notify.NewTelegram(cfg.BotToken, database, lg.Named("notify")); err != nil {
		lg.Sugar.Warnw("telegram notifier disabled", "err", err)
	} else if tg != nil {
		notifier = tg
	}

	svc := points.NewService(database, rec, notifier, lg.Named("points"))
	gate := auth.NewGate(
		database,
		auth.NewBcryptVerifier(database),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL),
		rec,
		lg.Named("auth"),
		cfg.RestoreTimeout,
	)

	runner := jobs.New(ctx)
	runner.Every(time.Minute, "pending_gauge", jobs.RefreshPendingGauge(database))

	app.StartOps(ctx, cfg.OpsAddr, database)

	srv := app.NewServer(&app.Options{
		Addr:    cfg.HTTPAddr,
		Env:     cfg.Env,
		Gate:    gate,
		Service: svc,
		Hub:     hub,
		DB:      database,
		Log:     lg.Named("http"),
	})

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shCtx); err != nil {
			lg.Base.Warn("server shutdown", zap.Error(err))
		}
	}()

	lg.Sugar.Infow("pointsd starting", "addr", cfg.HTTPAddr, "env", cfg.Env, "version", version)
	if err := srv.Start(); err != nil {
		lg.Sugar.Fatalw("server failed", "err", err)
	}

	rec.Wait()
}
