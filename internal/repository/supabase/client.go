package supabase

import (
	"net/http"
	"strings"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/nedpals/supabase-go"
	postgrest "github.com/nedpals/supabase-go/postgrest/pkg"
)

const (
	tableBillingEvents = "stripe_webhook_events"
	tableSubscriptions = "subscriptions"
	tableProfiles      = "user_profiles"
	tableInvoices      = "invoices"
	tableCustomers     = "stripe_customers"
	tableUsage         = "usage_tracking"
)

// NewClient creates a service-role Supabase client for the REST data API
func NewClient(cfg *config.Configuration) (*supabase.Client, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
		return nil, ierr.NewError("supabase is not configured").
			WithHint("supabase.url and supabase.service_key are required for the supabase store").
			Mark(ierr.ErrValidation)
	}

	client := supabase.CreateClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if client == nil {
		return nil, ierr.NewError("failed to create supabase client").
			Mark(ierr.ErrSystem)
	}
	return client, nil
}

// pgUniqueViolation is the SQLSTATE PostgREST echoes for a unique constraint hit
const pgUniqueViolation = "23505"

// isUniqueViolation recognises PostgREST conflict responses
func isUniqueViolation(err error) bool {
	var reqErr *postgrest.RequestError
	if !ierr.As(err, &reqErr) {
		return false
	}
	return reqErr.Code == pgUniqueViolation || reqErr.HTTPStatusCode == http.StatusConflict
}

func notFound(entity, key, value string) error {
	return ierr.NewErrorf("%s not found", strings.ToLower(entity)).
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{key: value}).
		Mark(ierr.ErrNotFound)
}

func wrapErr(err error, action, entity string) error {
	return ierr.WithError(err).
		WithHintf("Failed to %s %s", action, entity).
		Mark(ierr.ErrDatabase)
}
