package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
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
	"github.com/electromarket/electromarket/services/catalog-service/internal/handlers"
	"github.com/electromarket/electromarket/services/catalog-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "catalog-service")
	port, err := config.Port("PORT", "8082")
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

	outboxPublisher := eventx.NewPublisher(pool, outboxRepo, logger, eventx.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if err := startGrpcServer(ctx, logger, pool, repo); err != nil {
		logger.Error("grpc server setup failed", "err", err)
	}

	inboxRepo := eventx.NewInboxRepository(pool)
	confirmConsumer := eventx.NewConsumer(logger, inboxRepo, eventx.ConsumerConfig{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "catalog-service"),
		Topic:   "meeting.appointment.confirmed.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.ProductID == "" || payload.Quantity <= 0 {
			logger.Error("missing product_id or quantity", "topic", msg.Topic)
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.DecrementStock(ctx, tx, payload.ProductID, payload.Quantity); err != nil {
			if errors.Is(err, storage.ErrInsufficientStock) || storage.IsNotFound(err) {
				logger.Error("stock decrement skipped", "err", err, "product_id", payload.ProductID)
				return nil
			}
			return err
		}
		p, err := repo.GetProductTx(ctx, tx, payload.ProductID)
		if err != nil {
			return err
		}
		snapshot, err := json.Marshal(map[string]any{
			"product_id":    p.ID,
			"seller_id":     p.SellerID,
			"title":         p.Title,
			"stock":         p.Stock,
			"price_credits": p.PriceCredits,
			"status":        p.Status,
		})
		if err != nil {
			return err
		}
		if err := outboxRepo.Insert(ctx, tx, eventx.Event{
			AggregateType: "product",
			AggregateID:   p.ID,
			EventType:     "catalog.product.updated.v1",
			Payload:       snapshot,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	go confirmConsumer.Run(ctx)

	handler := handlers.New(repo, outboxRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/products/create", handler.CreateProduct)
	mux.HandleFunc("/api/v1/products/update", handler.UpdateProduct)
	mux.HandleFunc("/api/v1/products/get", handler.GetProduct)
	mux.HandleFunc("/api/v1/products", handler.ListProducts)
	mux.HandleFunc("/api/v1/products/moderate", handler.ModerateProduct)
	mux.HandleFunc("/api/v1/categories", handler.Categories)
	mux.HandleFunc("/api/v1/meeting-points", handler.MeetingPoints)
	mux.HandleFunc("/api/v1/availability", handler.Availability)
	mux.HandleFunc("/api/v1/ratings/create", handler.CreateRating)
	mux.HandleFunc("/api/v1/ratings", handler.ListRatings)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "catalog")
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
