package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/booking"
	"github.com/iliyamo/cinema-booking-wizard/internal/config"
	"github.com/iliyamo/cinema-booking-wizard/internal/database"
	"github.com/iliyamo/cinema-booking-wizard/internal/handler"
	"github.com/iliyamo/cinema-booking-wizard/internal/idgen"
	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
	"github.com/iliyamo/cinema-booking-wizard/internal/middleware"
	"github.com/iliyamo/cinema-booking-wizard/internal/queue"
	"github.com/iliyamo/cinema-booking-wizard/internal/repository"
	"github.com/iliyamo/cinema-booking-wizard/internal/router"
	"github.com/iliyamo/cinema-booking-wizard/internal/session"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	defer func() { _ = l.Sync() }()

	// Redis is optional: without it drafts live in process memory and the
	// price cache, response cache and rate limiter are off.
	rdb := config.NewRedisClient()
	var store session.Store
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Wizard.DraftTTL)
		l.Infof(ctx, "draft store: redis (ttl=%s)", cfg.Wizard.DraftTTL)
	} else {
		store = session.NewMemoryStore(cfg.Wizard.DraftTTL)
		l.Warnf(ctx, "draft store: redis unavailable, using process memory")
	}

	bookingAPI := backend.NewBookingClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	movieAPI := backend.NewMovieClient(cfg.MovieAPI.BaseURL, cfg.MovieAPI.APIKey, cfg.MovieAPI.Language, cfg.MovieAPI.Timeout)
	pricer := backend.NewPricer(bookingAPI, rdb, cfg.Wizard.PriceCacheTTL, l)
	movies := backend.NewMovies(movieAPI, pricer)

	var opts []booking.Option

	var db *sql.DB
	var journalReader handler.JournalReader
	if cfg.Journal.Enabled {
		db, err = database.Open(ctx, cfg.Journal)
		if err != nil {
			l.Fatalf(ctx, "Failed to connect to journal database: %v", err)
		}
		defer db.Close()
		journal := repository.NewJournalRepo(db)
		if err := journal.EnsureSchema(ctx); err != nil {
			l.Fatalf(ctx, "Failed to prepare journal schema: %v", err)
		}
		opts = append(opts, booking.WithJournal(journal))
		journalReader = journal
	}

	if cfg.Events.Enabled {
		opts = append(opts, booking.WithPublisher(queue.NewPublisher(cfg.Events.URL)))
		if cfg.Events.Consumer {
			cons := queue.NewConsumer(cfg.Events.URL, "booking-wizard", cfg.Events.LogDir, l)
			go func() {
				if err := cons.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					l.Errorf(ctx, "booking event consumer stopped: %v", err)
				}
			}()
		}
	}

	pipeline := booking.NewPipeline(bookingAPI, idgen.UUID{}, l, opts...)

	responses := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, l)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.RequestLog(l))

	router.Register(e, router.Handlers{
		Health:  handler.NewHealthHandler(rdb, db),
		Catalog: handler.NewCatalogHandler(cfg.Wizard.WindowDays),
		Movies:  handler.NewMovieHandler(movies, l),
		Wizard:  handler.NewWizardHandler(store, bookingAPI, pipeline, movies, cfg.Wizard.WindowDays, l),
		Ops:     handler.NewOpsHandler(journalReader),
	}, router.Middlewares{
		Identity:     middleware.Identity(cfg.JWTSecret),
		CatalogCache: responses.Catalog(),
		MovieCache:   responses.Movies(),
		RateLimit:    middleware.RateLimit(config.LoadRateLimitConfig(), rdb, l),
	})

	addr := ":" + cfg.Port
	go func() {
		l.Infof(ctx, "listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalf(ctx, "HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Infof(ctx, "Server shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Errorf(shutdownCtx, "HTTP shutdown: %v", err)
	}
	l.Infof(shutdownCtx, "Server exited")
}
