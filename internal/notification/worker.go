package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"shopfloor-backend/internal/model"
)

// RunCompleted is the job payload: one closed runtime interval.
type RunCompleted struct {
	EquipmentNumber string
	Duration        time.Duration
}

// SubscriptionStore is the slice of the store the worker pool needs.
type SubscriptionStore interface {
	SubscriptionsForEquipment(ctx context.Context, equipmentNumber string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

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

// WorkerPool manages a pool of workers pushing run-completed notifications.
type WorkerPool struct {
	size    int
	jobs    chan RunCompleted
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, store SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan RunCompleted, size), // Buffered channel
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.notifyRunCompleted(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a run-completed job without blocking the caller; the POST
// /events handler must not stall behind push delivery.
func (wp *WorkerPool) Dispatch(job RunCompleted) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("Notification queue full, dropping run-completed push for %s", job.EquipmentNumber)
	}
}

func (wp *WorkerPool) notifyRunCompleted(ctx context.Context, job RunCompleted) {
	subscriptions, err := wp.store.SubscriptionsForEquipment(ctx, job.EquipmentNumber)
	if err != nil {
		log.Printf("Error fetching subscriptions for equipment %s: %v", job.EquipmentNumber, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	message := fmt.Sprintf("Equipment %s finished a run (%s)", job.EquipmentNumber, job.Duration.Round(time.Second))
	log.Printf("Sending %d notifications for equipment %s", len(subscriptions), job.EquipmentNumber)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
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
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
