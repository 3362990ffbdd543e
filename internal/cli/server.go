package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/gemini"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := buildLeaderboardStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}

	var registry app.SessionRegistry = memory.NewSessionRegistry()
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
	}

	prefs := file.NewPreferenceStore(cfg.Preferences.Path)
	service := app.NewQuizService(provider, store, registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service, prefs).ServeWS)
	mux.Handle("/leaderboard", transport.NewLeaderboardHandler(service))
	mux.Handle("/preferences/sound", transport.NewPreferenceHandler(prefs))

	// No global read/write timeouts: websocket sessions legitimately idle for
	// the full 30s countdown between frames.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var eg errgroup.Group
	eg.Go(func() error {
		logrus.WithField("port", finalPort).Info("starting trivia quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		select {
		case <-stop:
			logrus.Info("shutting down server...")
		case <-ctx.Done():
			logrus.Info("context canceled, shutting down server...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// buildProvider prefers Gemini when an API key is present, falling back to
// the built-in question bank so the server works offline.
func buildProvider(ctx context.Context, cfg config.Config) (app.QuestionProvider, error) {
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		return gemini.NewProvider(ctx, cfg.Gemini.Model)
	}
	logrus.Info("no Gemini API key configured, using built-in question bank")
	return memory.NewStaticProvider(memory.SampleQuestions()), nil
}

func buildLeaderboardStore(ctx context.Context, cfg config.Config, redisClient *redis.Client) (app.LeaderboardStore, error) {
	switch cfg.Leaderboard.Backend {
	case "memory":
		return memory.NewLeaderboardStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("leaderboard backend redis requires redis.addr")
		}
		return redisinfra.NewLeaderboardStore(redisClient), nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, errors.New("leaderboard backend postgres requires postgres.url")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return pgstore.NewLeaderboardStore(pool), nil
	default:
		return file.NewLeaderboardStore(cfg.Leaderboard.Path), nil
	}
}
