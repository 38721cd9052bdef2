package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/auth"
	"realtime-quiz-service/internal/config"
	"realtime-quiz-service/internal/httpapi"
	"realtime-quiz-service/internal/infra/memory"
	"realtime-quiz-service/internal/infra/postgres"
	redisinfra "realtime-quiz-service/internal/infra/redis"
	"realtime-quiz-service/internal/ws"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		sessions     app.SessionStore
		participants app.ParticipantStore
		questions    app.QuestionStore
		answers      app.AnswerSource
		users        app.UserStore
	)
	if pool != nil {
		sessions = postgres.NewSessionStore(pool)
		participants = postgres.NewParticipantStore(pool)
		pgQuestions := postgres.NewQuestionStore(pool)
		questions = pgQuestions
		answers = pgQuestions
		users = postgres.NewUserStore(pool)
	} else {
		sessions = memory.NewSessionStore()
		participants = memory.NewParticipantStore()
		memQuestions := memory.NewQuestionStore()
		questions = memQuestions
		answers = memQuestions
		users = memory.NewUserStore()
	}

	if redisClient != nil {
		redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)
		sessions = redisinfra.NewSessionStore(sessions, redisClient, redisTTL)

		cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
		answers = redisinfra.NewQuestionCache(redisClient, questions, cacheTTL)
	}

	registry := app.NewSessionRegistry(sessions)
	ledger := app.NewScoreLedger(registry, participants, users)
	service := app.NewQuizService(registry, ledger, questions, answers, cfg.Quiz.AnswerPoints)
	userService := app.NewUserService(users)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "development-secret"
		log.Printf("auth: no JWT secret configured, using development default")
	}
	tokens := auth.NewTokenManager(jwtSecret, config.Duration(cfg.Auth.TokenTTL, 24*time.Hour))

	readTimeout := config.Duration(cfg.Server.ReadTimeout, 60*time.Second)
	writeTimeout := config.Duration(cfg.Server.WriteTimeout, 10*time.Second)
	questionInterval := config.Duration(cfg.Quiz.QuestionInterval, 10*time.Second)

	hub := ws.NewHub()
	broadcaster := ws.NewBroadcaster(hub, service)
	runner := ws.NewQuestionRunner(service, broadcaster, questionInterval)
	wsHandler := ws.NewHandler(service, users, hub, broadcaster, runner, tokens, readTimeout, writeTimeout)

	api := httpapi.New(userService, service, tokens)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Get("/ws/{quizID}", wsHandler.ServeWS)
	router.Mount("/", api.Routes())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
