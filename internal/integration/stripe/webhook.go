package stripe

import (
	"encoding/json"
	"time"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Event is a verified webhook event reduced to what the billing core consumes
type Event struct {
	ID      string
	Type    string
	Created time.Time
	// Object is the raw data.object of the event
	Object json.RawMessage
}

// VerifyEvent checks the Stripe-Signature header against secret and parses the
// event. API version mismatches are ignored because the payload decoders
// tolerate both old and new shapes.
func VerifyEvent(payload []byte, signature string, secret string) (*Event, error) {
	if signature == "" {
		return nil, ierr.NewError("missing stripe signature").
			WithHint("Missing Stripe-Signature header").
			Mark(ierr.ErrValidation)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid signature").
			Mark(ierr.ErrValidation)
	}

	if event.ID == "" || event.Type == "" {
		return nil, ierr.NewError("event missing id or type").
			WithHint("Invalid payload").
			Mark(ierr.ErrValidation)
	}

	out := &Event{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if event.Created > 0 {
		out.Created = time.Unix(event.Created, 0).UTC()
	}
	if event.Data != nil {
		out.Object = event.Data.Raw
	}
	return out, nil
}
