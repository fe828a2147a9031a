package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/electromarket/electromarket/libs/config"
	"github.com/electromarket/electromarket/libs/db"
	"github.com/electromarket/electromarket/libs/eventx"
	"github.com/electromarket/electromarket/libs/httpx"
	"github.com/electromarket/electromarket/libs/kafkax"
	otelx "github.com/electromarket/electromarket/libs/otel"
	"github.com/electromarket/electromarket/libs/runtime"
	"github.com/electromarket/electromarket/services/credits-service/internal/credits"
	"github.com/electromarket/electromarket/services/credits-service/internal/handlers"
	"github.com/electromarket/electromarket/services/credits-service/internal/reconcile"
	"github.com/electromarket/electromarket/services/credits-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "credits-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewRepository(pool)
	outboxRepo := eventx.NewOutboxRepository(pool)
	creditsSvc := credits.New(repo, outboxRepo)

	outboxPublisher := eventx.NewPublisher(pool, outboxRepo, logger, eventx.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if err := startGrpcServer(ctx, logger, repo); err != nil {
		logger.Error("grpc server setup failed", "err", err)
	}

	inboxRepo := eventx.NewInboxRepository(pool)
	confirmConsumer := eventx.NewConsumer(logger, inboxRepo, eventx.ConsumerConfig{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "credits-service"),
		Topic:   "meeting.appointment.confirmed.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID  string `json:"appointment_id"`
			BuyerID        string `json:"buyer_id"`
			CreditsCharged int    `json:"credits_charged"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.BuyerID == "" || payload.AppointmentID == "" {
			logger.Error("missing buyer_id or appointment_id", "topic", msg.Topic)
			return nil
		}
		amount := payload.CreditsCharged
		if amount <= 0 {
			amount = 1
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := creditsSvc.ApplyDeduction(ctx, tx, payload.BuyerID, amount, "meeting:"+payload.AppointmentID, time.Now().UTC()); err != nil {
			if errors.Is(err, credits.ErrInsufficientCredits) {
				// Confirmation already pre-checked the balance; don't block the
				// consumer on a race, record nothing and move on.
				logger.Error("credit deduction skipped", "err", err, "buyer_id", payload.BuyerID, "appointment_id", payload.AppointmentID)
				return nil
			}
			return err
		}
		return tx.Commit(ctx)
	})
	go confirmConsumer.Run(ctx)

	tolSeconds, err := strconv.Atoi(config.String("STRIPE_WEBHOOK_TOLERANCE_SECONDS", "300"))
	if err != nil || tolSeconds <= 0 {
		tolSeconds = 300
	}
	h := handlers.New(repo, outboxRepo, logger, handlers.Config{
		StripeWebhookSecret:           config.String("STRIPE_WEBHOOK_SECRET", ""),
		StripeWebhookToleranceSeconds: tolSeconds,
		StripeSecretKey:               config.String("STRIPE_SECRET_KEY", ""),
		Packs: map[string]handlers.Pack{
			"small":  {PriceID: config.String("STRIPE_PRICE_PACK_SMALL", ""), Credits: config.Int("CREDITS_PACK_SMALL", 10)},
			"medium": {PriceID: config.String("STRIPE_PRICE_PACK_MEDIUM", ""), Credits: config.Int("CREDITS_PACK_MEDIUM", 25)},
			"large":  {PriceID: config.String("STRIPE_PRICE_PACK_LARGE", ""), Credits: config.Int("CREDITS_PACK_LARGE", 60)},
		},
		CheckoutSuccessURL: config.String("CHECKOUT_SUCCESS_URL", ""),
		CheckoutCancelURL:  config.String("CHECKOUT_CANCEL_URL", ""),
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/credits/checkout", h.Checkout)
	mux.HandleFunc("/api/v1/credits/checkout/session", h.CheckoutSessionStatus)
	mux.HandleFunc("/api/v1/credits/checkout/session/ack", h.AckCheckoutReturn)
	mux.HandleFunc("/api/v1/credits/balance", h.Balance)
	mux.HandleFunc("/api/v1/credits/ledger", h.Ledger)
	mux.HandleFunc("/api/v1/credits/webhooks/local", h.LocalWebhook)
	mux.HandleFunc("/api/v1/credits/webhooks/stripe", h.StripeWebhook)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "credits")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	// Stripe reconciliation: periodically settle sessions whose webhook was missed.
	if isTruthy(config.String("CREDITS_STRIPE_RECONCILE_ENABLED", "false")) {
		intervalSeconds := config.Int("CREDITS_STRIPE_RECONCILE_INTERVAL_SECONDS", 300)
		if intervalSeconds <= 0 {
			intervalSeconds = 300
		}
		rec := reconcile.NewStripeReconciler(pool, repo, creditsSvc, logger, reconcile.StripeReconcilerConfig{
			StripeSecretKey: config.String("STRIPE_SECRET_KEY", ""),
			BatchSize:       config.Int("CREDITS_STRIPE_RECONCILE_BATCH_SIZE", 50),
			MinSessionAge:   time.Duration(config.Int("CREDITS_STRIPE_RECONCILE_MIN_AGE_MINUTES", 30)) * time.Minute,
			AdvisoryLockKey: int64(config.Int("CREDITS_STRIPE_RECONCILE_LOCK_KEY", 4242002)),
		})
		go rec.Run(ctx, time.Duration(intervalSeconds)*time.Second)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func isTruthy(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
