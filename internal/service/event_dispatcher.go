package service

import (
	"context"
	"encoding/json"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/types"
)

// HandlerResult reports what the dispatcher did with an event
type HandlerResult struct {
	EventType types.BillingEventType
	// Handled is false for event types without a handler
	Handled bool
}

// EventDispatcher routes verified provider events to the projector
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *stripe.Event) (*HandlerResult, error)
}

type eventHandler func(ctx context.Context, object json.RawMessage) error

type eventDispatcher struct {
	ServiceParams
	handlers map[types.BillingEventType]eventHandler
}

func NewEventDispatcher(params ServiceParams, projector SubscriptionProjector) EventDispatcher {
	d := &eventDispatcher{ServiceParams: params}
	d.handlers = map[types.BillingEventType]eventHandler{
		types.BillingEventSubscriptionCreated:     subscriptionHandler(projector.OnCreated),
		types.BillingEventSubscriptionUpdated:     subscriptionHandler(projector.OnUpdated),
		types.BillingEventSubscriptionDeleted:     subscriptionHandler(projector.OnDeleted),
		types.BillingEventInvoicePaymentSucceeded: invoiceHandler(projector.OnInvoicePaid),
		types.BillingEventInvoicePaymentFailed:    invoiceHandler(projector.OnInvoiceFailed),
	}
	return d
}

func (d *eventDispatcher) Dispatch(ctx context.Context, event *stripe.Event) (*HandlerResult, error) {
	eventType := types.BillingEventType(event.Type)
	result := &HandlerResult{EventType: eventType}

	handle, ok := d.handlers[eventType]
	if !ok {
		d.Logger.Debugw("no handler for billing event type",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return result, nil
	}

	if err := handle(ctx, event.Object); err != nil {
		return result, err
	}

	result.Handled = true
	return result, nil
}

func subscriptionHandler(fn func(context.Context, *stripe.Subscription) error) eventHandler {
	return func(ctx context.Context, object json.RawMessage) error {
		var sub stripe.Subscription
		if err := decodeObject(object, &sub); err != nil {
			return err
		}
		if sub.ID == "" {
			return ierr.NewError("subscription payload has no id").
				WithHint("Subscription payload has no id").
				Mark(ierr.ErrValidation)
		}
		return fn(ctx, &sub)
	}
}

func invoiceHandler(fn func(context.Context, *stripe.Invoice) error) eventHandler {
	return func(ctx context.Context, object json.RawMessage) error {
		var inv stripe.Invoice
		if err := decodeObject(object, &inv); err != nil {
			return err
		}
		if inv.ID == "" {
			return ierr.NewError("invoice payload has no id").
				WithHint("Invoice payload has no id").
				Mark(ierr.ErrValidation)
		}
		return fn(ctx, &inv)
	}
}

func decodeObject(object json.RawMessage, v any) error {
	if len(object) == 0 {
		return ierr.NewError("event has no data object").
			WithHint("Event payload has no data object").
			Mark(ierr.ErrValidation)
	}
	if err := json.Unmarshal(object, v); err != nil {
		return ierr.WithError(err).
			WithHint("Malformed event payload").
			Mark(ierr.ErrValidation)
	}
	return nil
}
