package stripe

import (
	"bytes"
	"encoding/json"

	"github.com/beautyops/beautyops/internal/types"
)

// The payload types below decode the data.object of Stripe webhook events.
// They are deliberately narrower than the SDK types: only the fields the
// projector reads, with tolerant decoding for fields whose shape differs
// across API versions.

// ExpandableID decodes either an id string or an expanded object carrying an id
type ExpandableID string

func (e *ExpandableID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ExpandableID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = ExpandableID(obj.ID)
	return nil
}

func (e ExpandableID) String() string {
	return string(e)
}

type Recurring struct {
	Interval string `json:"interval"`
}

type Price struct {
	ID        string     `json:"id"`
	Recurring *Recurring `json:"recurring"`
}

// Plan is the legacy representation still sent alongside price
type Plan struct {
	ID       string `json:"id"`
	Interval string `json:"interval"`
}

type SubscriptionItem struct {
	ID                 string `json:"id"`
	Price              *Price `json:"price"`
	Plan               *Plan  `json:"plan"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
}

// PlanID returns the price id, falling back to the legacy plan id
func (i SubscriptionItem) PlanID() string {
	if i.Price != nil && i.Price.ID != "" {
		return i.Price.ID
	}
	if i.Plan != nil {
		return i.Plan.ID
	}
	return ""
}

// Interval returns the provider recurring interval, e.g. "month"
func (i SubscriptionItem) Interval() string {
	if i.Price != nil && i.Price.Recurring != nil && i.Price.Recurring.Interval != "" {
		return i.Price.Recurring.Interval
	}
	if i.Plan != nil {
		return i.Plan.Interval
	}
	return ""
}

// SubscriptionItems accepts both a Stripe list object ({"data": [...]}) and a bare array
type SubscriptionItems []SubscriptionItem

func (s *SubscriptionItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var items []SubscriptionItem
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*s = items
		return nil
	}
	var list struct {
		Data []SubscriptionItem `json:"data"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list.Data
	return nil
}

type Subscription struct {
	ID                 string            `json:"id"`
	Customer           ExpandableID      `json:"customer"`
	Status             string            `json:"status"`
	Items              SubscriptionItems `json:"items"`
	Metadata           map[string]string `json:"metadata"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	TrialEnd           int64             `json:"trial_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CanceledAt         int64             `json:"canceled_at"`
	Created            int64             `json:"created"`
}

// UserID is the application user recorded in metadata at checkout
func (s *Subscription) UserID() string {
	return s.Metadata["user_id"]
}

// FirstItem returns the item that determines the tier
func (s *Subscription) FirstItem() (SubscriptionItem, bool) {
	if len(s.Items) == 0 {
		return SubscriptionItem{}, false
	}
	return s.Items[0], true
}

// PeriodBounds returns the current period. Newer API versions only carry
// the period on the items, so the first item is used when the top level is empty.
func (s *Subscription) PeriodBounds() (start int64, end int64) {
	start, end = s.CurrentPeriodStart, s.CurrentPeriodEnd
	if item, ok := s.FirstItem(); ok {
		if start == 0 {
			start = item.CurrentPeriodStart
		}
		if end == 0 {
			end = item.CurrentPeriodEnd
		}
	}
	return start, end
}

func (s *Subscription) SubscriptionStatus() types.SubscriptionStatus {
	if s.Status == "" {
		return types.SubscriptionStatusActive
	}
	return types.SubscriptionStatus(s.Status)
}

type StatusTransitions struct {
	PaidAt int64 `json:"paid_at"`
}

type Invoice struct {
	ID                string            `json:"id"`
	Customer          ExpandableID      `json:"customer"`
	Subscription      ExpandableID      `json:"subscription"`
	AmountPaid        int64             `json:"amount_paid"`
	AmountDue         int64             `json:"amount_due"`
	Currency          string            `json:"currency"`
	Status            string            `json:"status"`
	InvoicePDF        string            `json:"invoice_pdf"`
	HostedInvoiceURL  string            `json:"hosted_invoice_url"`
	PeriodStart       int64             `json:"period_start"`
	PeriodEnd         int64             `json:"period_end"`
	AttemptCount      int64             `json:"attempt_count"`
	StatusTransitions StatusTransitions `json:"status_transitions"`
}

// CheckoutParams describes a subscription checkout for one user
type CheckoutParams struct {
	CustomerID      string
	PriceID         string
	UserID          string
	SuccessURL      string
	CancelURL       string
	TrialPeriodDays int64
}
