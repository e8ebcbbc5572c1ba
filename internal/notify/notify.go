package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
)

// Logical event kinds emitted by the marketplace core. Job type and
// notification kind share these names.
const (
	EventInquiryCreated  = "inquiry_created"
	EventInquiryAccepted = "inquiry_accepted"
	EventInquiryRejected = "inquiry_rejected"
	EventOfferCompleted  = "offer_completed"
	EventReviewCreated   = "review_created"
)

// Event is the job payload for all notification kinds; unused ids stay zero.
type Event struct {
	OfferID   int64 `json:"offer_id,omitempty"`
	InquiryID int64 `json:"inquiry_id,omitempty"`
	ReviewID  int64 `json:"review_id,omitempty"`
}

// Emitter enqueues notification jobs from the request path. A failed
// enqueue never fails the triggering request; delivery is best-effort
// by design.
type Emitter struct {
	pool *WorkerPool
}

func NewEmitter(pool *WorkerPool) *Emitter { return &Emitter{pool: pool} }

func (e *Emitter) Emit(ctx context.Context, kind string, ev Event) error {
	if e == nil || e.pool == nil {
		return nil
	}
	_, err := e.pool.Enqueue(ctx, kind, ev, 100, 3)
	return err
}

// Fanout resolves an event's recipient and writes the notification row.
// It is the handler side of the queue.
type Fanout struct {
	offers        repository.OfferRepo
	inquiries     repository.InquiryRepo
	notifications repository.NotificationRepo
}

func NewFanout(offers repository.OfferRepo, inquiries repository.InquiryRepo, notifications repository.NotificationRepo) *Fanout {
	return &Fanout{offers: offers, inquiries: inquiries, notifications: notifications}
}

// Handlers returns the job-type handler map for the worker pool.
func (f *Fanout) Handlers() map[string]Handler {
	wrap := func(build func(ctx context.Context, ev Event) (*models.Notification, error)) Handler {
		return func(ctx context.Context, j *Job) error {
			var ev Event
			if err := json.Unmarshal(j.Payload, &ev); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			n, err := build(ctx, ev)
			if err != nil {
				return err
			}
			if n == nil {
				// recipient vanished, nothing to deliver
				return nil
			}
			_, err = f.notifications.CreateNotification(ctx, n)
			return err
		}
	}

	return map[string]Handler{
		EventInquiryCreated:  wrap(f.inquiryCreated),
		EventInquiryAccepted: wrap(f.inquiryStatus(EventInquiryAccepted, "Inquiry accepted", "Your inquiry was accepted, the offer is now in progress.")),
		EventInquiryRejected: wrap(f.inquiryStatus(EventInquiryRejected, "Inquiry rejected", "Your inquiry was not selected for this offer.")),
		EventOfferCompleted:  wrap(f.offerCompleted),
		EventReviewCreated:   wrap(f.reviewCreated),
	}
}

// inquiryCreated notifies the craftsman owning the offer.
func (f *Fanout) inquiryCreated(ctx context.Context, ev Event) (*models.Notification, error) {
	inquiry, offer, err := f.resolve(ctx, ev.InquiryID)
	if err != nil || inquiry == nil || offer == nil {
		return nil, err
	}
	return &models.Notification{
		AccountID: offer.CraftsmanID,
		Kind:      EventInquiryCreated,
		Title:     "New inquiry",
		Message:   fmt.Sprintf("A customer sent an inquiry for %q.", offer.Title),
		OfferID:   &offer.ID,
		InquiryID: &inquiry.ID,
	}, nil
}

// inquiryStatus notifies the inquiring customer about an accept/reject.
func (f *Fanout) inquiryStatus(kind, title, message string) func(ctx context.Context, ev Event) (*models.Notification, error) {
	return func(ctx context.Context, ev Event) (*models.Notification, error) {
		inquiry, offer, err := f.resolve(ctx, ev.InquiryID)
		if err != nil || inquiry == nil || offer == nil {
			return nil, err
		}
		return &models.Notification{
			AccountID: inquiry.CustomerID,
			Kind:      kind,
			Title:     title,
			Message:   fmt.Sprintf("%s (%q)", message, offer.Title),
			OfferID:   &offer.ID,
			InquiryID: &inquiry.ID,
		}, nil
	}
}

// offerCompleted notifies the customer whose inquiry was accepted.
func (f *Fanout) offerCompleted(ctx context.Context, ev Event) (*models.Notification, error) {
	offer, err := f.offers.GetOffer(ctx, ev.OfferID)
	if err != nil || offer == nil {
		return nil, err
	}
	inquiries, err := f.inquiries.ListInquiriesByOffer(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	for _, inquiry := range inquiries {
		if inquiry.Status == models.InquiryAccepted {
			return &models.Notification{
				AccountID: inquiry.CustomerID,
				Kind:      EventOfferCompleted,
				Title:     "Offer completed",
				Message:   fmt.Sprintf("%q was marked completed. You can leave a review now.", offer.Title),
				OfferID:   &offer.ID,
				InquiryID: &inquiry.ID,
			}, nil
		}
	}
	return nil, nil
}

// reviewCreated notifies the reviewed craftsman.
func (f *Fanout) reviewCreated(ctx context.Context, ev Event) (*models.Notification, error) {
	offer, err := f.offers.GetOffer(ctx, ev.OfferID)
	if err != nil || offer == nil {
		return nil, err
	}
	return &models.Notification{
		AccountID: offer.CraftsmanID,
		Kind:      EventReviewCreated,
		Title:     "New review",
		Message:   fmt.Sprintf("Your offer %q received a review.", offer.Title),
		OfferID:   &offer.ID,
		ReviewID:  &ev.ReviewID,
	}, nil
}

func (f *Fanout) resolve(ctx context.Context, inquiryID int64) (*models.Inquiry, *models.Offer, error) {
	inquiry, err := f.inquiries.GetInquiry(ctx, inquiryID)
	if err != nil || inquiry == nil {
		return nil, nil, err
	}
	offer, err := f.offers.GetOffer(ctx, inquiry.OfferID)
	if err != nil {
		return nil, nil, err
	}
	return inquiry, offer, nil
}
