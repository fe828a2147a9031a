package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
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
	"github.com/electromarket/electromarket/services/notification-service/internal/email"
	"github.com/electromarket/electromarket/services/notification-service/internal/sms"
	"github.com/electromarket/electromarket/services/notification-service/internal/storage"
)

type notifier struct {
	pool        *db.Pool
	repo        *storage.Repository
	outboxRepo  *eventx.OutboxRepository
	logger      *slog.Logger
	emailSender email.Sender
	smsSender   sms.Sender
	failSuffix  string
}

// deliver sends one message to one user, persists the attempt, and enqueues
// the sent/failed event.
func (n *notifier) deliver(ctx context.Context, appointmentID string, userID string, subject string, body string, templateData map[string]any) error {
	contact, err := n.repo.GetContact(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			n.logger.Error("no contact for user", "user_id", userID, "appointment_id", appointmentID)
			return n.record(ctx, appointmentID, userID, "email", "", templateData, "failed", "no contact on record")
		}
		return err
	}

	status := "sent"
	failureReason := ""

	if n.failSuffix != "" && strings.HasSuffix(contact.Email, n.failSuffix) {
		status = "failed"
		failureReason = "simulated failure"
	} else if err := n.emailSender.Send(contact.Email, subject, body); err != nil {
		status = "failed"
		failureReason = err.Error()
		n.logger.Error("email send failed", "err", err, "recipient", contact.Email)
	}

	if err := n.record(ctx, appointmentID, userID, "email", contact.Email, templateData, status, failureReason); err != nil {
		return err
	}
	if status != "sent" {
		return nil
	}

	// SMS is best-effort on top of email, only when a phone is on record.
	if contact.Phone != "" && n.smsSender != nil {
		if err := n.smsSender.Send(ctx, contact.Phone, body); err != nil {
			n.logger.Error("sms send failed", "err", err, "recipient", contact.Phone)
			_ = n.record(ctx, appointmentID, userID, "sms", contact.Phone, templateData, "failed", err.Error())
		} else {
			_ = n.record(ctx, appointmentID, userID, "sms", contact.Phone, templateData, "sent", "")
		}
	}
	return nil
}

func (n *notifier) record(ctx context.Context, appointmentID, userID, channel, recipient string, templateData map[string]any, status, failureReason string) error {
	if err := n.repo.Insert(ctx, storage.Notification{
		AppointmentID: appointmentID,
		UserID:        userID,
		Channel:       channel,
		Recipient:     recipient,
		Payload:       templateData,
		Status:        status,
	}); err != nil {
		n.logger.Error("failed to persist notification", "err", err)
		return err
	}

	tx, err := n.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eventType := "notification.sent.v1"
	fields := map[string]any{
		"appointment_id": appointmentID,
		"user_id":        userID,
		"channel":        channel,
		"sent_at":        time.Now().UTC().Format(time.RFC3339),
	}
	if status == "failed" {
		eventType = "notification.failed.v1"
		delete(fields, "sent_at")
		fields["error_reason"] = failureReason
		fields["failed_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := n.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "notification",
		AggregateID:   appointmentID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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
	notificationsRepo := storage.NewRepository(pool)
	outboxRepo := eventx.NewOutboxRepository(pool)
	outboxPublisher := eventx.NewPublisher(pool, outboxRepo, logger, eventx.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	emailSender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@electromarket.local"),
	)

	var smsSender sms.Sender
	switch strings.ToLower(config.String("SMS_PROVIDER", "noop")) {
	case "webhook":
		smsSender = sms.NewWebhookSender(config.String("SMS_WEBHOOK_URL", ""), config.String("SMS_WEBHOOK_TOKEN", ""))
	default:
		smsSender = sms.NewNoopSender()
	}

	n := &notifier{
		pool:        pool,
		repo:        notificationsRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		emailSender: emailSender,
		smsSender:   smsSender,
		failSuffix:  config.String("NOTIFICATION_FAIL_SUFFIX", ""),
	}

	startConsumer := func(topic string, handler eventx.Handler) {
		eventConsumer := eventx.NewConsumer(logger, inboxRepo, eventx.ConsumerConfig{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
			Topic:   topic,
		}, handler)
		go eventConsumer.Run(ctx)
	}

	startConsumer("auth.user.created.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			UserID string `json:"user_id"`
			Email  string `json:"email"`
			Phone  string `json:"phone"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.UserID == "" || payload.Email == "" {
			logger.Error("missing user_id or email", "topic", msg.Topic)
			return nil
		}
		return notificationsRepo.UpsertContact(ctx, storage.Contact{
			UserID: payload.UserID,
			Email:  payload.Email,
			Phone:  payload.Phone,
		})
	})

	startConsumer("meeting.reminder.due.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			BuyerID       string `json:"buyer_id"`
			SellerID      string `json:"seller_id"`
			ProductID     string `json:"product_id"`
			RemindAt      string `json:"remind_at"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.BuyerID == "" || payload.RemindAt == "" {
			logger.Error("missing reminder fields", "topic", msg.Topic)
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.RemindAt); err != nil {
			logger.Error("invalid remind_at", "err", err)
			return nil
		}

		subject := "Meeting reminder"
		body := fmt.Sprintf("Your meeting for order %s starts at %s. Don't forget your credits confirmation.", payload.AppointmentID, payload.RemindAt)
		data := map[string]any{"product_id": payload.ProductID, "remind_at": payload.RemindAt}

		if err := n.deliver(ctx, payload.AppointmentID, payload.BuyerID, subject, body, data); err != nil {
			return err
		}
		if payload.SellerID != "" {
			return n.deliver(ctx, payload.AppointmentID, payload.SellerID, subject, body, data)
		}
		return nil
	})

	startConsumer("meeting.appointment.confirmed.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			BuyerID       string `json:"buyer_id"`
			SellerID      string `json:"seller_id"`
			MeetingDate   string `json:"meeting_date"`
			MeetingTime   string `json:"meeting_time"`
			Quantity      int    `json:"quantity"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.AppointmentID == "" || payload.BuyerID == "" {
			logger.Error("missing appointment fields", "topic", msg.Topic)
			return nil
		}

		subject := "Meeting confirmed"
		body := fmt.Sprintf("Your meeting on %s at %s is confirmed.", payload.MeetingDate, payload.MeetingTime)
		data := map[string]any{
			"meeting_date": payload.MeetingDate,
			"meeting_time": payload.MeetingTime,
			"quantity":     payload.Quantity,
		}

		if err := n.deliver(ctx, payload.AppointmentID, payload.BuyerID, subject, body, data); err != nil {
			return err
		}
		if payload.SellerID != "" {
			return n.deliver(ctx, payload.AppointmentID, payload.SellerID, subject, body, data)
		}
		return nil
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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
