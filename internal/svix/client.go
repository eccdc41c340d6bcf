package svix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/svix/svix-webhooks/go/models"
)

// Client wraps the Svix SDK client. A disabled client accepts every call and does nothing.
type Client struct {
	client  *svix.Svix
	appUID  string
	enabled bool
}

// NewClient creates a new Svix client
func NewClient(cfg *config.Configuration) (*Client, error) {
	sc := cfg.Webhook.Svix
	if !sc.Enabled {
		return &Client{enabled: false}, nil
	}

	serverURL, err := url.Parse(sc.BaseURL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid Svix base URL").
			Mark(ierr.ErrValidation)
	}

	svixClient, err := svix.New(sc.AuthToken, &svix.SvixOptions{
		ServerUrl: serverURL,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create Svix client").
			Mark(ierr.ErrSystem)
	}

	return &Client{
		client:  svixClient,
		appUID:  sc.ApplicationUID,
		enabled: true,
	}, nil
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// GetOrCreateApplication returns the id of the Svix application that receives
// all subscription notifications, creating it on first use
func (c *Client) GetOrCreateApplication(ctx context.Context) (string, error) {
	if !c.IsEnabled() {
		return "", nil
	}

	if app, err := c.client.Application.Get(ctx, c.appUID); err == nil {
		return app.Id, nil
	}

	app, err := c.client.Application.Create(ctx, models.ApplicationIn{
		Name: c.appUID,
		Uid:  &c.appUID,
	}, &svix.ApplicationCreateOptions{})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create Svix application").
			WithReportableDetails(map[string]any{"uid": c.appUID}).
			Mark(ierr.ErrHTTPClient)
	}

	return app.Id, nil
}

// SendMessage delivers one event. eventID doubles as the Svix idempotency key
// so redelivered notifications are not fanned out twice.
func (c *Client) SendMessage(ctx context.Context, applicationID, eventID, eventType string, payload json.RawMessage) error {
	if !c.IsEnabled() {
		return nil
	}

	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payload, &payloadMap); err != nil {
		return ierr.WithError(err).
			WithHint("Notification payload must be a JSON object").
			Mark(ierr.ErrValidation)
	}

	msg := models.MessageIn{
		EventType: eventType,
		Payload:   payloadMap,
	}
	if eventID != "" {
		msg.EventId = &eventID
	}

	if _, err := c.client.Message.Create(ctx, applicationID, msg, &svix.MessageCreateOptions{}); err != nil {
		return ierr.WithError(err).
			WithHint(fmt.Sprintf("Failed to send %s to Svix", eventType)).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
