package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordplay/internal/config"
	"github.com/robalobadob/wordplay/internal/controller"
	"github.com/robalobadob/wordplay/internal/httpserver"
	"github.com/robalobadob/wordplay/internal/notify"
	"github.com/robalobadob/wordplay/internal/oracle"
	"github.com/robalobadob/wordplay/internal/store"
	"github.com/robalobadob/wordplay/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := openStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.SeedWords {
		texts, err := words.Load(cfg.WordsFile)
		if err != nil {
			return err
		}
		if _, err := words.Seed(ctx, st, texts); err != nil {
			return err
		}
	}

	orc := oracle.New(oracle.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
		Timeout: cfg.OracleTimeout,
		Retries: cfg.OracleRetries,
	})
	if !orc.Configured() {
		log.Warn().Msg("GROQ_API_KEY not set; unknown guesses are rejected and power hints are unavailable")
	}

	var memo words.Memo
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; dictionary memo disabled")
		} else {
			memo = words.NewRedisMemo(rdb, "")
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis dictionary memo enabled")
		}
	}

	ctl := controller.New(st, words.NewChecker(st, orc, memo), orc)

	reminder, err := newReminder(ctx, cfg)
	if err != nil {
		return err
	}
	if reminder != nil && cfg.ReminderCron != "" {
		sched, err := notify.Schedule(cfg.ReminderCron, reminder)
		if err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.New(cfg, ctl, st, reminder).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting wordplay server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the backend: "memory" keeps everything in process,
// anything else is a sqlite path or postgres:// URL.
func openStore(dsn string) (store.Store, error) {
	if dsn == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
	s, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newReminder returns nil when no recipients are configured.
func newReminder(ctx context.Context, cfg *config.Config) (*notify.Reminder, error) {
	if len(cfg.ReminderEmails) == 0 {
		return nil, nil
	}
	mailer, err := notify.NewSESMailer(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return notify.NewReminder(mailer, cfg.ReminderFromEmail, cfg.ReminderEmails, cfg.AppURL), nil
}
