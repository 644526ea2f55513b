package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"

	"housing-allocation-backend/internal/model"
)

// ErrQueueFull is returned by Publish when the worker pool cannot accept more events.
var ErrQueueFull = errors.New("notification queue is full")

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

// SubscriptionStore is the storage the pool needs to find and prune push endpoints.
type SubscriptionStore interface {
	StudentSubscriptions(ctx context.Context, studentID int64) ([]model.PushSubscription, error)
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
}

// WorkerPool delivers lifecycle events as web push notifications to the student's browsers.
type WorkerPool struct {
	size    int
	jobs    chan Event
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool with a buffered queue of queueSize events.
func NewWorkerPool(size, queueSize int, store SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, queueSize),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// SetSender replaces the push transport.
func (wp *WorkerPool) SetSender(s NotificationSender) {
	wp.sender = s
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case evt := <-wp.jobs:
			wp.deliver(ctx, evt)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Publish queues evt for delivery without waiting for a worker.
func (wp *WorkerPool) Publish(ctx context.Context, evt Event) error {
	select {
	case wp.jobs <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, evt Event) {
	entry := log.WithFields(log.Fields{"kind": evt.Kind, "student_id": evt.StudentID})

	subscriptions, err := wp.store.StudentSubscriptions(ctx, evt.StudentID)
	if err != nil {
		entry.Errorf("fetching subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(Render(evt))
	if err != nil {
		entry.Errorf("encoding push payload: %v", err)
		return
	}

	entry.Debugf("sending %d push notifications", len(subscriptions))
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
		log.Warnf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		log.Infof("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil {
			log.Warnf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
