package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/otpgate/internal/application/otp"
	"github.com/otpgate/internal/audit"
	"github.com/otpgate/internal/config"
	"github.com/otpgate/internal/infrastructure/dynamodoc"
	"github.com/otpgate/internal/infrastructure/filestore"
	"github.com/otpgate/internal/infrastructure/s3doc"
	"github.com/otpgate/internal/infrastructure/smtp"
	"github.com/otpgate/internal/infrastructure/sns"
	"github.com/otpgate/internal/notify"
	"github.com/otpgate/internal/store"
	transporthttp "github.com/otpgate/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	docs := store.New(newBackend(ctx, cfg))
	// The empty document must exist before the first request is served.
	if err := docs.Init(ctx); err != nil {
		log.Fatalf("init store: %v", err)
	}

	deps := &transporthttp.Deps{
		Docs:     docs,
		Notifier: newNotifier(cfg),
		Trail:    audit.New(cfg.AuditLogPath),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func newBackend(ctx context.Context, cfg *config.Config) store.Backend {
	switch cfg.StoreBackend {
	case "s3":
		client := s3doc.NewClient(cfg)
		return s3doc.New(client, cfg.S3BucketName, cfg.S3DocumentKey)
	case "dynamo":
		client := dynamodoc.NewClient(cfg)
		dynamodoc.Bootstrap(ctx, client, cfg.DynamoTableDocument)
		return dynamodoc.New(client, cfg.DynamoTableDocument)
	default:
		return filestore.New(cfg.StoreFilePath)
	}
}

func newNotifier(cfg *config.Config) otp.Notifier {
	switch cfg.NotifyChannel {
	case "email":
		return notify.NewEmail(smtp.NewMailer(cfg))
	case "sms":
		if cfg.NotifySMSTo == "" {
			log.Println("WARN: NOTIFY_SMS_TO not set, falling back to log notifier")
			return notify.LogNotifier{}
		}
		sender, err := sns.NewSender(cfg)
		if err != nil {
			log.Printf("WARN: SNS sender not available (%v), falling back to log notifier", err)
			return notify.LogNotifier{}
		}
		return notify.NewSMS(sender, cfg.NotifySMSTo)
	default:
		return notify.LogNotifier{}
	}
}
