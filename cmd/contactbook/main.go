package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/config"
	"github.com/olekhv/contactbook/internal/db"
	"github.com/olekhv/contactbook/internal/filestore"
	"github.com/olekhv/contactbook/internal/handler"
	"github.com/olekhv/contactbook/internal/job"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/pkg/logutil"
	"github.com/olekhv/contactbook/internal/pkg/token"
	"github.com/olekhv/contactbook/internal/repo"
	"github.com/olekhv/contactbook/internal/schedule"
	"github.com/olekhv/contactbook/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "contactbook",
		Short: "contactbook backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run contactbook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logutil.Init(cfg.LogLevel, cfg.LogConsole); err != nil {
				return err
			}
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logger := logutil.GetLogger(context.Background())
	logger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	contactRepo := repo.NewContactRepo(conn)
	outboxRepo := repo.NewOutboxRepo(conn)

	signer := token.NewSigner(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour,
		time.Duration(cfg.VerifyTTLHours)*time.Hour,
	)
	mailSender := service.NewEmailSender(cfg.Mail)
	mailer := service.NewMailerService(outboxRepo, mailSender, cfg.Mail.MaxAttempts)
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	}
	authService := service.NewAuthService(userRepo, signer, mailer, baseURL)
	contactService := service.NewContactService(contactRepo)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	avatarService := service.NewAvatarService(userRepo, store)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.CORS(nil),
		gzip.Gzip(gzip.DefaultCompression),
	)
	handler.RegisterRoutes(engine, handler.RouterDeps{
		Auth:                   handler.NewAuthHandler(authService),
		Contacts:               handler.NewContactHandler(contactService),
		Avatar:                 handler.NewAvatarHandler(avatarService),
		Resolver:               authService,
		ContactCreatePerMinute: cfg.RateLimit.ContactCreatePerMinute,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewMailDispatchJob(mailer), "* * * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: engine}
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
