package main

import (
	"context"
	"encoding/json"
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
	"github.com/electromarket/electromarket/services/stats-service/internal/handlers"
	"github.com/electromarket/electromarket/services/stats-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "stats-service")
	port, err := config.Port("PORT", "8086")
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

	inboxRepo := eventx.NewInboxRepository(pool)
	statsRepo := storage.NewRepository(pool)

	startConsumer := func(topic string, handler eventx.Handler) {
		eventConsumer := eventx.NewConsumer(logger, inboxRepo, eventx.ConsumerConfig{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "stats-service"),
			Topic:   topic,
		}, handler)
		go eventConsumer.Run(ctx)
	}

	handleAppointmentEvent := func(ctx context.Context, msg kafka.Message, kind string) error {
		var payload struct {
			AppointmentID  string `json:"appointment_id"`
			SellerID       string `json:"seller_id"`
			MeetingDate    string `json:"meeting_date"`
			CreditsCharged int    `json:"credits_charged"`
			ConfirmedAt    string `json:"confirmed_at"`
			CancelledAt    string `json:"cancelled_at"`
			ExpiredAt      string `json:"expired_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid appointment payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.AppointmentID == "" || payload.SellerID == "" {
			logger.Error("missing appointment fields", "topic", msg.Topic)
			return nil
		}

		// Day attribution: the meeting day when the event carries one,
		// otherwise the moment the event occurred.
		day := payload.MeetingDate
		if day == "" {
			ts := payload.ConfirmedAt
			if ts == "" {
				ts = payload.CancelledAt
			}
			if ts == "" {
				ts = payload.ExpiredAt
			}
			occurred, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				logger.Error("invalid event timestamp", "err", err, "topic", msg.Topic)
				return nil
			}
			day = occurred.UTC().Format("2006-01-02")
		}

		meta := kafkax.ExtractEventMeta(msg)

		tx, err := pool.Begin(ctx)
		if err != nil {
			logger.Error("db begin failed", "err", err)
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		tag, err := tx.Exec(ctx, `
			INSERT INTO appointment_stat_events (event_id, event_type, seller_id, appointment_id, day)
			VALUES ($1, $2, $3, $4, $5::date)
			ON CONFLICT (event_id) DO NOTHING
		`, meta.EventID, meta.EventType, payload.SellerID, payload.AppointmentID, day)
		if err != nil {
			logger.Error("failed to insert appointment stat event", "err", err)
			return err
		}
		if tag.RowsAffected() == 0 {
			_ = tx.Commit(ctx)
			return nil
		}

		confirmedInc, cancelledInc, expiredInc, creditsInc := 0, 0, 0, 0
		switch kind {
		case "confirmed":
			confirmedInc = 1
			creditsInc = payload.CreditsCharged
		case "cancelled":
			cancelledInc = 1
		case "expired":
			expiredInc = 1
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO daily_appointment_stats (seller_id, day, confirmed_count, cancelled_count, expired_count, credits_charged)
			VALUES ($1, $2::date, $3, $4, $5, $6)
			ON CONFLICT (seller_id, day)
			DO UPDATE SET confirmed_count = daily_appointment_stats.confirmed_count + EXCLUDED.confirmed_count,
			              cancelled_count = daily_appointment_stats.cancelled_count + EXCLUDED.cancelled_count,
			              expired_count = daily_appointment_stats.expired_count + EXCLUDED.expired_count,
			              credits_charged = daily_appointment_stats.credits_charged + EXCLUDED.credits_charged,
			              updated_at = now()
		`, payload.SellerID, day, confirmedInc, cancelledInc, expiredInc, creditsInc); err != nil {
			logger.Error("failed to update daily appointment stats", "err", err)
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			logger.Error("failed to commit appointment stat", "err", err)
			return err
		}

		logger.Info("appointment stat recorded", "appointment_id", payload.AppointmentID, "seller_id", payload.SellerID, "event_type", meta.EventType)
		return nil
	}

	startConsumer("meeting.appointment.confirmed.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleAppointmentEvent(ctx, msg, "confirmed")
	})
	startConsumer("meeting.appointment.cancelled.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleAppointmentEvent(ctx, msg, "cancelled")
	})
	startConsumer("meeting.appointment.expired.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleAppointmentEvent(ctx, msg, "expired")
	})

	startConsumer("catalog.rating.created.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			RatingID string `json:"rating_id"`
			SellerID string `json:"seller_id"`
			Score    int    `json:"score"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid rating payload", "err", err)
			return nil
		}
		if payload.SellerID == "" || payload.Score < 1 || payload.Score > 5 {
			logger.Error("missing or invalid rating fields")
			return nil
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO daily_rating_stats (seller_id, day, rating_count, score_sum)
			VALUES ($1, CURRENT_DATE, 1, $2)
			ON CONFLICT (seller_id, day)
			DO UPDATE SET rating_count = daily_rating_stats.rating_count + 1,
			              score_sum = daily_rating_stats.score_sum + EXCLUDED.score_sum,
			              updated_at = now()
		`, payload.SellerID, payload.Score)
		if err != nil {
			logger.Error("failed to update rating stats", "err", err)
			return err
		}
		logger.Info("rating stat recorded", "rating_id", payload.RatingID, "seller_id", payload.SellerID)
		return nil
	})

	bumpNotificationStats := func(ctx context.Context, channel, ts string, sentInc, failedInc int) error {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO daily_notification_stats (day, channel, sent_count, failed_count)
			VALUES ($1::date, $2, $3, $4)
			ON CONFLICT (day, channel)
			DO UPDATE SET sent_count = daily_notification_stats.sent_count + EXCLUDED.sent_count,
			              failed_count = daily_notification_stats.failed_count + EXCLUDED.failed_count,
			              updated_at = now()
		`, t.UTC(), channel, sentInc, failedInc)
		return err
	}

	startConsumer("notification.sent.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			Channel       string `json:"channel"`
			SentAt        string `json:"sent_at"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid notification payload", "err", err)
			return nil
		}
		if payload.Channel == "" || payload.SentAt == "" {
			logger.Error("missing notification fields")
			return nil
		}
		if err := bumpNotificationStats(ctx, payload.Channel, payload.SentAt, 1, 0); err != nil {
			logger.Error("failed to update notification stats", "err", err)
			return err
		}
		return nil
	})

	startConsumer("notification.failed.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			Channel       string `json:"channel"`
			FailedAt      string `json:"failed_at"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid notification payload", "err", err)
			return nil
		}
		if payload.Channel == "" || payload.FailedAt == "" {
			logger.Error("missing notification fields")
			return nil
		}
		if err := bumpNotificationStats(ctx, payload.Channel, payload.FailedAt, 0, 1); err != nil {
			logger.Error("failed to update notification stats", "err", err)
			return err
		}
		return nil
	})

	statsHandler := handlers.New(statsRepo, logger)
	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/stats/overview", statsHandler.Overview)
	mux.HandleFunc("/api/v1/stats/daily", statsHandler.Daily)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "stats")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
