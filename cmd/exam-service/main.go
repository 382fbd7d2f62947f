package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/config"
	"github.com/SAP-F-2025/exam-service/internal/handlers"
	"github.com/SAP-F-2025/exam-service/internal/jobs"
	"github.com/SAP-F-2025/exam-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/SAP-F-2025/exam-service/pkg"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "exam-service",
		Short:        "Exam lifecycle and timed submission service",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, migrateCmd(), sweepCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the deadline sweeper",
		RunE:  runServe,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.String("port", "8080", "HTTP listen port")
	f.String("identity", "header", "Identity provider (header, jwt, casdoor)")
	f.Bool("no-migrate", false, "Skip schema migration on startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the exam and submission tables",
		RunE:  runMigrate,
	}
	addCommonFlags(cmd)
	return cmd
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Auto-submit every expired in-progress submission once and exit",
		RunE:  runSweep,
	}
	addCommonFlags(cmd)
	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	f.String("policy", "", "Submission policy TOML file (overrides POLICY_FILE)")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
}

// viperForCmd binds a command's flags and EXAM_* environment variables.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the environment and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, utils.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	v := viperForCmd(cmd)
	override := func(key string, dst *string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetString(key)
		}
	}
	override("port", &cfg.Port)
	override("identity", &cfg.IdentityProvider)
	override("database-url", &cfg.DatabaseURL)
	override("policy", &cfg.PolicyFile)
	override("log-level", &cfg.LogLevel)

	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger.Slog())
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

// app holds everything the service commands share.
type app struct {
	cfg      *config.Config
	logger   utils.Logger
	policy   services.SubmissionPolicy
	manager  services.ServiceManager
	closeFns []func()
}

func (a *app) close() {
	if err := a.manager.Close(); err != nil {
		a.logger.Warn("Failed to close event publisher", "error", err)
	}
	a.release()
}

// release closes the connections in reverse order of opening.
func (a *app) release() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}

func buildApp(ctx context.Context, cmd *cobra.Command, migrate bool) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	a.policy, err = config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.closeFns = append(a.closeFns, closeDB)

	if migrate {
		if err := postgres.Migrate(db); err != nil {
			a.release()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	cacheService := cache.NewNoopCache()
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, exam cache disabled", "error", err)
	} else if redisClient != nil {
		cacheService = cache.NewRedisCache(redisClient, logger.Slog())
		a.closeFns = append(a.closeFns, func() { _ = redisClient.Close() })
		if migrate {
			// cached documents may predate the migrated schema
			if err := cache.NewExamCache(cacheService, 0, logger.Slog()).Flush(ctx); err != nil {
				logger.Warn("Failed to flush exam cache after migration", "error", err)
			}
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger.Slog())
	if err != nil {
		a.release()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}

	a.manager = services.NewServiceManager(
		postgres.NewRepository(db),
		cacheService,
		publisher,
		logger.Slog(),
		validator.New(),
		services.ManagerOptions{Policy: a.policy},
	)
	return a, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	a, err := buildApp(ctx, cmd, !noMigrate)
	if err != nil {
		return err
	}
	defer a.close()

	resolver, err := a.cfg.IdentityResolver()
	if err != nil {
		return err
	}

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.NewHandlerManager(a.manager, resolver, a.logger).SetupRoutes(router)

	sweeper := jobs.NewDeadlineSweeper(a.manager.Submission(), a.policy.SweepInterval, a.logger.Slog())
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server",
			"port", a.cfg.Port,
			"environment", a.cfg.Environment,
			"identity", a.cfg.IdentityProvider,
			"violation_threshold", a.policy.ViolationThreshold,
			"deadline_grace", a.policy.DeadlineGrace,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Schema migrated")
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	finalized, err := a.manager.Submission().SweepExpired(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	a.logger.Info("Sweep finished", "finalized", finalized)
	return nil
}
