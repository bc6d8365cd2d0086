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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"live-trivia-service/internal/ai"
	"live-trivia-service/internal/ai/openai"
	"live-trivia-service/internal/app"
	"live-trivia-service/internal/config"
	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/infra/memory"
	pgarchive "live-trivia-service/internal/infra/postgres"
	redisinfra "live-trivia-service/internal/infra/redis"
	transport "live-trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
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

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	roundDuration := config.Duration(cfg.Round.Duration, 15*time.Second)
	session := app.NewSession(roundDuration)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	generator := buildGenerator(cfg, redisClient)
	if generator == nil {
		log.Info().Msg("no OpenAI key configured, /generate disabled")
	}

	var archive app.BankArchive
	var pgArchive *pgarchive.BankArchive
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgArchive = pgarchive.NewBankArchive(pool)
		archive = pgArchive
	}

	service := app.NewQuizService(session, generator, archive, log)

	if pgArchive != nil {
		record, err := pgArchive.Latest(ctx)
		switch {
		case err == nil:
			service.RestoreBank(record)
		case !errors.Is(err, domain.ErrBankNotFound):
			log.Warn().Err(err).Msg("could not restore bank from archive")
		}
	}

	handler := transport.NewHandler(service, log)
	feed := transport.NewFeedHandler(service, log)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", feed.ServeWS)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting trivia service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildGenerator wires the OpenAI client behind a per-subject cache. With
// Redis configured the cache is shared; otherwise it lives in-process.
func buildGenerator(cfg config.Config, redisClient *redis.Client) ai.Generator {
	apiKey := cfg.OpenAI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil
	}

	client := openai.New(apiKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	ttl := config.Duration(cfg.Generation.TTL, 10*time.Minute)
	if redisClient != nil {
		return redisinfra.NewGenerationCache(redisClient, client, ttl)
	}
	return memory.NewGenerationCache(client, ttl)
}
