package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/controllers"
	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/routes"
	"github.com/Govind-619/EnrollSphere/services"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run database migrations before serving")
	return cmd
}

func runServe(parent context.Context, autoMigrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if autoMigrate {
		if err := config.Migrate(db); err != nil {
			return err
		}
		utils.LogInfo("Database migrated")
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup := buildHandler(ctx, cfg, db)
	defer cleanup()
	metrics.MustRegister()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildHandler wires the services. Redis, Kafka and SMTP are optional and
// are skipped with a warning when unset or unreachable.
func buildHandler(ctx context.Context, cfg *config.Config, db *gorm.DB) (*controllers.Handler, func()) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var events services.EventPublisher = services.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := services.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			utils.LogWarn("Kafka unavailable, domain events disabled: %v", err)
		} else {
			events = publisher
			closers = append(closers, func() {
				if err := publisher.Close(); err != nil {
					utils.LogError("Failed to close kafka producer: %v", err)
				}
			})
		}
	}

	notifications := services.NewNotificationService(db, cfg.NotificationBatchSize)
	enrollments := services.NewEnrollmentService(db, cfg.RazorpaySecret).
		WithNotifier(notifications).
		WithEvents(events)

	if cfg.RedisAddr != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			utils.LogWarn("Redis unavailable, confirmation lock disabled: %v", err)
		} else {
			enrollments.WithLocker(services.NewRedisLocker(client), cfg.LockTTL)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if mailer := utils.NewSMTPMailer(utils.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}); mailer != nil {
		enrollments.WithMailer(mailer)
	}

	gateway := razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)

	return &controllers.Handler{
		Config:        cfg,
		DB:            db,
		Checkout:      services.NewCheckoutService(db, gateway.Order, cfg.RazorpayKey, cfg.Currency),
		Enrollments:   enrollments,
		Webhooks:      services.NewWebhookService(db).WithEvents(events),
		Enquiries:     services.NewEnquiryService(db, cfg.TypeformRefs).WithEvents(events),
		Notifications: notifications,
		Referrals:     services.NewReferralService(db),
		Centers:       services.NewCenterService(db),
		Invoices:      services.NewInvoiceService(db),
	}, cleanup
}
