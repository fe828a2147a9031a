package main

import (
	"context"
	"encoding/json"
	"net/http"
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
	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
	"github.com/electromarket/electromarket/services/meeting-service/internal/handlers"
	"github.com/electromarket/electromarket/services/meeting-service/internal/jobs"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
	"github.com/electromarket/electromarket/services/meeting-service/internal/scheduling"
	"github.com/electromarket/electromarket/services/meeting-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "meeting-service")
	port, err := config.Port("PORT", "8083")
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

	repo := storage.NewMeetingRepository(pool)
	projections := storage.NewProjectionRepository(pool)
	outboxRepo := eventx.NewOutboxRepository(pool)
	jobsRepo := jobs.NewRepository()

	schedulingProvider, err := scheduling.NewProvider(config.String("CATALOG_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("scheduling provider init failed; using projections", "err", err)
		schedulingProvider = nil
	}

	outboxPublisher := eventx.NewPublisher(pool, outboxRepo, logger, eventx.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	worker := jobs.NewWorker(pool, jobsRepo, outboxRepo, logger, jobs.WorkerConfig{
		Interval:  time.Duration(config.Int("JOBS_INTERVAL_SECONDS", 5)) * time.Second,
		BatchSize: config.Int("JOBS_BATCH_SIZE", 50),
		Backoff:   time.Duration(config.Int("JOBS_BACKOFF_SECONDS", 60)) * time.Second,
	})
	go worker.Run(ctx)

	inboxRepo := eventx.NewInboxRepository(pool)
	startConsumer := func(topic string, handler eventx.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		eventConsumer := eventx.NewConsumer(logger, inboxRepo, eventx.ConsumerConfig{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "meeting-service"),
			Topic:   topic,
		}, handler)
		go eventConsumer.Run(ctx)
	}

	startConsumer("catalog.availability.updated.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			SellerID string `json:"seller_id"`
			Rules    []struct {
				Weekday     int  `json:"weekday"`
				StartMinute int  `json:"start_minute"`
				EndMinute   int  `json:"end_minute"`
				Active      bool `json:"active"`
			} `json:"rules"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.SellerID == "" {
			logger.Error("missing seller_id", "topic", msg.Topic)
			return nil
		}
		rules := make([]availability.Rule, 0, len(payload.Rules))
		for _, r := range payload.Rules {
			rules = append(rules, availability.Rule{
				Weekday:     time.Weekday(r.Weekday),
				StartMinute: r.StartMinute,
				EndMinute:   r.EndMinute,
				Active:      r.Active,
			})
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()
		if err := projections.ReplaceAvailabilityRules(ctx, tx, payload.SellerID, rules); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})

	startConsumer("catalog.product.updated.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			ProductID    string `json:"product_id"`
			SellerID     string `json:"seller_id"`
			Title        string `json:"title"`
			Stock        int    `json:"stock"`
			PriceCredits int    `json:"price_credits"`
			Status       string `json:"status"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.ProductID == "" || payload.SellerID == "" {
			logger.Error("missing product fields", "topic", msg.Topic)
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()
		if err := projections.UpsertProductSnapshot(ctx, tx, model.ProductSnapshot{
			ProductID:    payload.ProductID,
			SellerID:     payload.SellerID,
			Title:        payload.Title,
			Stock:        payload.Stock,
			PriceCredits: payload.PriceCredits,
			Status:       payload.Status,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})

	startConsumer("credits.balance.updated.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			UserID  string `json:"user_id"`
			Balance int    `json:"balance"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.UserID == "" {
			logger.Error("missing user_id", "topic", msg.Topic)
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()
		if err := projections.UpsertCreditBalance(ctx, tx, payload.UserID, payload.Balance); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})

	meetingHandler := handlers.NewMeetingHandler(
		repo,
		projections,
		outboxRepo,
		jobsRepo,
		logger,
		schedulingProvider,
		time.Duration(config.Int("PENDING_TTL_HOURS", 24))*time.Hour,
		time.Duration(config.Int("REMINDER_OFFSET_MINUTES", 60))*time.Minute,
	)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/calendar", meetingHandler.Calendar)
	mux.HandleFunc("/api/v1/public/ranges", meetingHandler.Ranges)
	mux.HandleFunc("/api/v1/public/slots", meetingHandler.Slots)
	mux.HandleFunc("/api/v1/meetings", meetingHandler.List)
	mux.HandleFunc("/api/v1/meetings/create", meetingHandler.Create)
	mux.HandleFunc("/api/v1/meetings/confirm", meetingHandler.Confirm)
	mux.HandleFunc("/api/v1/meetings/cancel", meetingHandler.Cancel)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "meeting")
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

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
