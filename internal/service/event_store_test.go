package service

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/testutil"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EventStoreSuite struct {
	testutil.BaseServiceTestSuite
	store EventStore
}

func TestEventStore(t *testing.T) {
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.store = NewEventStore(newTestParams(&s.BaseServiceTestSuite))
}

func (s *EventStoreSuite) TestRecordDeduplicates() {
	ctx := s.GetContext()
	payload := json.RawMessage(`{"id":"sub_1"}`)

	outcome, err := s.store.Record(ctx, "evt_1", types.BillingEventSubscriptionCreated, payload)
	s.NoError(err)
	s.Equal(types.RecordOutcomeInserted, outcome)

	outcome, err = s.store.Record(ctx, "evt_1", types.BillingEventSubscriptionCreated, payload)
	s.NoError(err)
	s.Equal(types.RecordOutcomeDuplicate, outcome)

	s.Equal(1, s.GetStores().BillingEventRepo.Count())
	stored, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_1")
	s.NoError(err)
	s.False(stored.Processed)
	s.Nil(stored.ErrorMessage)
	s.JSONEq(`{"id":"sub_1"}`, string(stored.Payload))
}

func (s *EventStoreSuite) TestRecordConcurrentDeliveries() {
	ctx := s.GetContext()
	const deliveries = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.store.Record(ctx, "evt_race", types.BillingEventSubscriptionUpdated, nil)
			s.NoError(err)
			if outcome == types.RecordOutcomeInserted {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, inserted)
}

func (s *EventStoreSuite) TestRecordValidation() {
	ctx := s.GetContext()

	_, err := s.store.Record(ctx, "", types.BillingEventSubscriptionCreated, nil)
	s.True(ierr.IsValidation(err))

	_, err = s.store.Record(ctx, "evt_2", "", nil)
	s.True(ierr.IsValidation(err))

	s.Equal(0, s.GetStores().BillingEventRepo.Count())
}

func (s *EventStoreSuite) TestTransitionsAreOneWay() {
	ctx := s.GetContext()

	_, err := s.store.Record(ctx, "evt_ok", types.BillingEventInvoicePaymentSucceeded, nil)
	s.Require().NoError(err)
	s.NoError(s.store.MarkProcessed(ctx, "evt_ok"))

	stored, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_ok")
	s.NoError(err)
	s.True(stored.Processed)
	s.NotNil(stored.ProcessedAt)

	s.True(ierr.IsInvalidOperation(s.store.MarkProcessed(ctx, "evt_ok")))
	s.True(ierr.IsInvalidOperation(s.store.MarkFailed(ctx, "evt_ok", "late failure")))

	_, err = s.store.Record(ctx, "evt_bad", types.BillingEventInvoicePaymentSucceeded, nil)
	s.Require().NoError(err)
	s.NoError(s.store.MarkFailed(ctx, "evt_bad", "boom"))
	s.True(ierr.IsInvalidOperation(s.store.MarkProcessed(ctx, "evt_bad")))

	stored, err = s.GetStores().BillingEventRepo.Get(ctx, "evt_bad")
	s.NoError(err)
	s.False(stored.Processed)
	s.Require().NotNil(stored.ErrorMessage)
	s.Equal("boom", *stored.ErrorMessage)
}

func (s *EventStoreSuite) TestMarkUnknownEvent() {
	ctx := s.GetContext()
	s.True(ierr.IsNotFound(s.store.MarkProcessed(ctx, "evt_missing")))
	s.True(ierr.IsNotFound(s.store.MarkFailed(ctx, "evt_missing", "boom")))
	s.True(ierr.IsValidation(s.store.MarkProcessed(ctx, "")))
}

func (s *EventStoreSuite) TestMarkFailedTruncatesMessage() {
	ctx := s.GetContext()

	_, err := s.store.Record(ctx, "evt_long", types.BillingEventSubscriptionDeleted, nil)
	s.Require().NoError(err)
	s.NoError(s.store.MarkFailed(ctx, "evt_long", strings.Repeat("x", 5000)))

	stored, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_long")
	s.NoError(err)
	s.Require().NotNil(stored.ErrorMessage)
	s.Len(*stored.ErrorMessage, maxErrorMessageLength)
}

func (s *EventStoreSuite) TestMarkFailedKeepsMultiByteRunesWhole() {
	ctx := s.GetContext()

	_, err := s.store.Record(ctx, "evt_utf8", types.BillingEventSubscriptionUpdated, nil)
	s.Require().NoError(err)
	// "é" is two bytes, so the byte limit falls inside a rune after the leading "a"
	s.NoError(s.store.MarkFailed(ctx, "evt_utf8", "a"+strings.Repeat("é", 1500)))

	stored, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_utf8")
	s.Require().NoError(err)
	s.Require().NotNil(stored.ErrorMessage)
	s.True(utf8.ValidString(*stored.ErrorMessage))
	s.Len(*stored.ErrorMessage, maxErrorMessageLength-1)
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"inside two byte rune", "aéé", 2, "a"},
		{"on rune boundary", "aéé", 3, "aé"},
		{"inside four byte rune", "💳💳", 6, "💳"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateUTF8(tt.in, tt.max))
		})
	}
}
