package stripe

import (
	"encoding/json"
	"testing"

	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionDecoding(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		planID    string
		interval  string
		customer  string
		periodEnd int64
		status    types.SubscriptionStatus
	}{
		{
			name:      "list items with top level period",
			raw:       `{"id":"sub_1","customer":"cus_1","status":"trialing","current_period_end":1702592000,"items":{"object":"list","data":[{"price":{"id":"price_a","recurring":{"interval":"year"}}}]}}`,
			planID:    "price_a",
			interval:  "year",
			customer:  "cus_1",
			periodEnd: 1702592000,
			status:    types.SubscriptionStatusTrialing,
		},
		{
			name:      "bare item array with item period and expanded customer",
			raw:       `{"id":"sub_2","customer":{"id":"cus_2","object":"customer"},"items":[{"current_period_end":1800000000,"price":{"id":"price_b","recurring":{"interval":"month"}}}]}`,
			planID:    "price_b",
			interval:  "month",
			customer:  "cus_2",
			periodEnd: 1800000000,
			status:    types.SubscriptionStatusActive,
		},
		{
			name:     "legacy plan",
			raw:      `{"id":"sub_3","customer":null,"status":"past_due","items":{"data":[{"plan":{"id":"plan_c","interval":"month"}}]}}`,
			planID:   "plan_c",
			interval: "month",
			status:   types.SubscriptionStatusPastDue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub Subscription
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &sub))

			item, ok := sub.FirstItem()
			require.True(t, ok)
			assert.Equal(t, tt.planID, item.PlanID())
			assert.Equal(t, tt.interval, item.Interval())
			assert.Equal(t, tt.customer, sub.Customer.String())
			_, end := sub.PeriodBounds()
			assert.Equal(t, tt.periodEnd, end)
			assert.Equal(t, tt.status, sub.SubscriptionStatus())
		})
	}
}

func TestSubscriptionUserID(t *testing.T) {
	var sub Subscription
	require.NoError(t, json.Unmarshal([]byte(`{"id":"sub_1","metadata":{"user_id":"u-1"}}`), &sub))
	assert.Equal(t, "u-1", sub.UserID())

	_, ok := sub.FirstItem()
	assert.False(t, ok)

	sub = Subscription{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"sub_2"}`), &sub))
	assert.Equal(t, "", sub.UserID())
}
