package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizverse/internal/app"
	"quizverse/internal/content"
	"quizverse/internal/domain"
	pgstore "quizverse/internal/infra/postgres"
	pgmigrations "quizverse/internal/infra/postgres/migrations"
	infraredis "quizverse/internal/infra/redis"
)

type idleTicks struct{ ch chan time.Time }

func (i idleTicks) C() <-chan time.Time { return i.ch }
func (i idleTicks) Stop()               {}

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	repo := content.NewRepository(pgstore.NewRecordStore(pool))
	if n, err := repo.Seed(ctx); err != nil || n != 2 {
		t.Fatalf("seed: %d %v", n, err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizzes := infraredis.NewQuizRepository(redisClient, repo, 5*time.Minute)
	attempts := infraredis.NewAttemptStore(redisClient, 5*time.Minute)
	player := app.NewPlayerService(attempts, quizzes, zerolog.New(io.Discard),
		app.WithTickSource(func() app.TickSource { return idleTicks{ch: make(chan time.Time)} }),
	)

	who := domain.Identity{SignedIn: true, EmailVerified: true, Email: "ann@example.com"}
	view, err := player.Start(ctx, "sample-2", who)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Total != 12 || view.Remaining != "15:00" {
		t.Fatalf("unexpected first view: %+v", view)
	}
	if n, _ := redisClient.Exists(ctx, "quiz:attempt:"+view.AttemptID, "quiz:sample-2").Result(); n != 2 {
		t.Fatalf("expected attempt marker and cached quiz in redis, got %d keys", n)
	}

	if _, err := player.SelectAnswer(ctx, view.AttemptID, "js-1", 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := player.SelectAnswer(ctx, view.AttemptID, "js-2", 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	result, err := player.Submit(ctx, view.AttemptID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectCount != 1 || result.AttemptedCount != 2 || result.ScorePercent != 8 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Unpublishing through the content store hides the quiz once the cache entry is dropped.
	quiz, err := repo.LoadQuiz(ctx, "sample-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	quiz.Published = false
	if _, err := repo.SaveQuiz(ctx, quiz); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := quizzes.Invalidate(ctx, "sample-2"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := player.Start(ctx, "sample-2", who); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected unpublished quiz to be unavailable, got %v", err)
	}

	if err := player.Exit(ctx, view.AttemptID); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if n, _ := redisClient.Exists(ctx, "quiz:attempt:"+view.AttemptID).Result(); n != 0 {
		t.Fatalf("expected attempt marker removed")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
