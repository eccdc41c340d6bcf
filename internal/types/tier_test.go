package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierLevels(t *testing.T) {
	tests := []struct {
		name     string
		tier     Tier
		required Tier
		want     bool
	}{
		{"solo meets solo", TierSoloAE, TierSoloAE, true},
		{"solo below pro", TierSoloAE, TierProAE, false},
		{"pro meets solo", TierProAE, TierSoloAE, true},
		{"enterprise meets pro", TierEnterprise, TierProAE, true},
		{"unknown user tier", Tier("legacy"), TierSoloAE, false},
		{"unknown required tier", TierEnterprise, Tier("platinum"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.Includes(tt.required))
		})
	}

	assert.Equal(t, TierSoloAE, TierLowest)
	assert.Equal(t, 0, Tier("").Level())
	assert.Error(t, Tier("gold").Validate())
	assert.NoError(t, TierProAE.Validate())
}

func TestBillingIntervalFromProvider(t *testing.T) {
	assert.Equal(t, BillingIntervalMonthly, BillingIntervalFromProvider("month"))
	assert.Equal(t, BillingIntervalYearly, BillingIntervalFromProvider("year"))
	assert.Equal(t, BillingIntervalYearly, BillingIntervalFromProvider(""))
}

func TestFeatureLimit(t *testing.T) {
	limit, ok := FeatureLimit(TierSoloAE, FeaturePOSAnalysis)
	assert.True(t, ok)
	assert.Equal(t, 10, limit)

	_, ok = FeatureLimit(TierSoloAE, FeatureTrainingGenerator)
	assert.False(t, ok)

	limit, ok = FeatureLimit(TierProAE, FeatureContentAssistant)
	assert.True(t, ok)
	assert.Equal(t, UsageUnlimited, limit)

	_, ok = FeatureLimit(Tier("unknown"), FeatureBriefing)
	assert.False(t, ok)
}

func TestUnixTimePtr(t *testing.T) {
	assert.Nil(t, UnixTimePtr(0))
	got := UnixTimePtr(1700000000)
	if assert.NotNil(t, got) {
		assert.Equal(t, time.UTC, got.Location())
		assert.Equal(t, int64(1700000000), got.Unix())
	}
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		StartOfMonth(time.Date(2024, 2, 17, 13, 4, 0, 0, time.UTC)))
}

func TestToMajorUnits(t *testing.T) {
	assert.Equal(t, "29", ToMajorUnits(2900, "usd").String())
	assert.Equal(t, "19.99", ToMajorUnits(1999, "USD").String())
	assert.Equal(t, "500", ToMajorUnits(500, "jpy").String())
	assert.True(t, IsZeroDecimalCurrency("KRW"))
	assert.False(t, IsZeroDecimalCurrency("eur"))
}

func TestMetadataScan(t *testing.T) {
	var m Metadata
	assert.NoError(t, m.Scan([]byte(`{"source":"upload"}`)))
	assert.Equal(t, "upload", m["source"])

	assert.NoError(t, m.Scan(`{"rows":3}`))
	assert.Equal(t, float64(3), m["rows"])

	assert.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	v, err := Metadata(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestMinimumTierFor(t *testing.T) {
	tier, ok := MinimumTierFor(FeatureBriefing)
	assert.True(t, ok)
	assert.Equal(t, TierSoloAE, tier)

	tier, ok = MinimumTierFor(FeatureContentAssistant)
	assert.True(t, ok)
	assert.Equal(t, TierProAE, tier)

	_, ok = MinimumTierFor(FeatureType("vision"))
	assert.False(t, ok)
}
