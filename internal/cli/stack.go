package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"quizverse/internal/app"
	"quizverse/internal/config"
	"quizverse/internal/content"
	"quizverse/internal/infra/memory"
	pgstore "quizverse/internal/infra/postgres"
	redisstore "quizverse/internal/infra/redis"
	"quizverse/internal/infra/sqlite"
)

// quizCache is a quiz source that can drop stale entries after admin edits.
type quizCache interface {
	app.QuizRepository
	Invalidate(ctx context.Context, quizID string) error
}

// stack is the storage wiring shared by every subcommand.
type stack struct {
	content  *content.Repository
	quizzes  quizCache
	attempts app.AttemptRepository
	closers  []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildStack picks the record store by storage driver. A configured Redis
// address also moves the quiz cache and attempt markers to Redis.
func buildStack(ctx context.Context, cfg config.Config, log zerolog.Logger) (*stack, error) {
	s := &stack{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
	}

	var records content.RecordStore
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		records = store
	case config.DriverRedis:
		records = redisstore.NewRecordStore(redisClient)
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			s.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		records = pgstore.NewRecordStore(pool)
	default:
		records = memory.NewRecordStore()
	}
	s.content = content.NewRepository(records)

	if cfg.Storage.Seed {
		n, err := s.content.Seed(ctx)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("seed content: %w", err)
		}
		if n > 0 {
			log.Info().Int("quizzes", n).Msg("seeded sample quizzes")
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		s.quizzes = redisstore.NewQuizRepository(redisClient, s.content, quizTTL)
		s.attempts = redisstore.NewAttemptStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		s.quizzes = memory.NewQuizRepository(s.content, quizTTL)
		s.attempts = memory.NewAttemptStore()
	}

	log.Info().
		Str("driver", cfg.Storage.Driver).
		Bool("redis", redisClient != nil).
		Msg("storage ready")
	return s, nil
}
