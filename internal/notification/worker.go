package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/advice"
	"smart-orchard-backend/internal/metrics"
	"smart-orchard-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// ErrQueueFull is returned by Dispatch when every worker is busy and the queue has no room.
var ErrQueueFull = errors.New("alert queue is full")

// SendTimeout bounds a single push delivery.
const SendTimeout = 10 * time.Second

// NewWebPushOptions builds the VAPID options with an HTTP client that gives up
// after SendTimeout.
func NewWebPushOptions(cfg config.PushConfig) *webpush.Options {
	return &webpush.Options{
		HTTPClient:      &http.Client{Timeout: SendTimeout},
		VAPIDPublicKey:  cfg.PublicKey,
		VAPIDPrivateKey: cfg.PrivateKey,
		Subscriber:      cfg.Subject,
		TTL:             cfg.TTL,
	}
}

// Subscriptions is the part of the store the pool reads recipients from.
type Subscriptions interface {
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Alert is one environment warning to broadcast.
type Alert struct {
	ReadingID int64       `json:"reading_id"`
	Code      advice.Code `json:"code"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	subs    Subscriptions
	webpush *webpush.Options
	sender  NotificationSender
	log     *slog.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs Subscriptions, webpushOptions *webpush.Options, logger *slog.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("push worker started", "worker", id)
	for {
		select {
		case alert := <-wp.jobs:
			wp.log.Info("broadcasting alert", "worker", id, "code", alert.Code, "reading_id", alert.ReadingID)
			wp.broadcast(ctx, alert)
		case <-ctx.Done():
			wp.log.Debug("push worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues an alert without waiting. It returns ErrQueueFull when the
// queue has no room so the caller never stalls behind a slow push service.
func (wp *WorkerPool) Dispatch(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case wp.jobs <- alert:
		metrics.AlertsDispatchedTotal.WithLabelValues(string(alert.Code)).Inc()
		return nil
	default:
		metrics.AlertsDroppedTotal.WithLabelValues(string(alert.Code)).Inc()
		return ErrQueueFull
	}
}

func (wp *WorkerPool) broadcast(ctx context.Context, alert Alert) {
	subscriptions, err := wp.subs.ListSubscriptions(ctx)
	if err != nil {
		wp.log.Error("failed to fetch push subscriptions", "err", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		wp.log.Error("failed to encode alert", "code", alert.Code, "err", err)
		return
	}
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("failed to send notification", "endpoint", sub.Endpoint, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info("push subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "err", err)
		}
	}
}
