package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quizverse/internal/app"
	"quizverse/internal/config"
	"quizverse/internal/identity"
	"quizverse/internal/logger"
	transport "quizverse/internal/transport/http"
	"quizverse/internal/worker"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "override server port")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.CheckJWTSecret(); err != nil {
		log.Error().Err(err).Msg("refusing to start")
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := buildStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	player := app.NewPlayerService(st.attempts, st.quizzes, log)

	sweeper := worker.NewSweeper(player,
		config.TTLDuration(cfg.Sweeper.Interval, time.Minute),
		config.TTLDuration(cfg.Sweeper.Retention, 30*time.Minute),
		log)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	verifier := identity.NewVerifier(cfg.Auth.JWTSecret)
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPasswordHash == "" {
		log.Warn().Msg("admin account not configured, admin login disabled")
	}
	admin := identity.NewAdminAuthenticator(cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash, verifier,
		config.TTLDuration(cfg.Auth.AdminTokenTTL, 12*time.Hour))

	router := transport.NewRouter(transport.RouterDeps{
		Player:         player,
		Content:        st.content,
		Cache:          st.quizzes,
		Verifier:       verifier,
		Admin:          admin,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

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
