package notification

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Kind names a lifecycle event.
type Kind string

const (
	KindSubmitted     Kind = "submitted"
	KindApproved      Kind = "approved"
	KindRejected      Kind = "rejected"
	KindAccepted      Kind = "accepted"
	KindOfferRejected Kind = "offer-rejected"
)

// Event is the payload handed to a Sink after a lifecycle transition.
type Event struct {
	Kind           Kind       `json:"kind"`
	ApplicationIDs []int64    `json:"application_ids"`
	StudentID      int64      `json:"student_id"`
	StudentName    string     `json:"student_name"`
	ResidenceName  string     `json:"residence_name"`
	ApplyDate      *time.Time `json:"apply_date,omitempty"`
	RoomNumber     *string    `json:"room_number,omitempty"`
	RecipientEmail string     `json:"recipient_email"`
}

// Sink receives lifecycle events for delivery to students.
// Publish must not block on delivery; errors only mean the event was not handed off.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
}

// Fanout publishes every event to each of its sinks and joins their errors.
type Fanout []Sink

// Publish hands evt to all sinks, even when one of them fails.
func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the log. It is used when no delivery channel is configured.
type LogSink struct{}

// Publish logs evt.
func (LogSink) Publish(_ context.Context, evt Event) error {
	log.WithFields(log.Fields{
		"kind":            evt.Kind,
		"student_id":      evt.StudentID,
		"residence":       evt.ResidenceName,
		"recipient_email": evt.RecipientEmail,
	}).Info("lifecycle event")
	return nil
}
