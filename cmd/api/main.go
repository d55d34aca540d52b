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

	"github.com/expertresume/notification-api/internal/config"
	"github.com/expertresume/notification-api/internal/infrastructure/dynamo"
	"github.com/expertresume/notification-api/internal/infrastructure/pdf"
	s3infra "github.com/expertresume/notification-api/internal/infrastructure/s3"
	"github.com/expertresume/notification-api/internal/infrastructure/ses"
	"github.com/expertresume/notification-api/internal/infrastructure/sns"
	transporthttp "github.com/expertresume/notification-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// SES relay (required for every email path).
	relay, err := ses.NewRelay(cfg)
	if err != nil {
		log.Fatalf("SES relay not available: %v", err)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Invoice PDF renderer.
	renderer := pdf.NewChromeRenderer(cfg.PDFRenderTimeout)

	// S3 invoice archive (optional).
	var archive *s3infra.ArchiveStore
	if cfg.InvoiceBucket != "" {
		archive = s3infra.NewArchiveStore(s3infra.NewClient(cfg), cfg.InvoiceBucket)
	} else {
		log.Println("WARN: invoice archive disabled, INVOICE_BUCKET not set")
	}

	deps := &transporthttp.Deps{
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationCodes),
		EmailLogRepo:     dynamo.NewEmailLogRepo(dynamoClient, cfg.DynamoTables.EmailLogs),
		UnsubscribeRepo:  dynamo.NewUnsubscribeRepo(dynamoClient, cfg.DynamoTables.UnsubscribedEmails),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Relay:            relay,
		SMSSender:        smsSender,
		PDFRenderer:      renderer,
		Archive:          archive,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
