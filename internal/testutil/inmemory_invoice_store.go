package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository keyed by stripe invoice id
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	return &c
}

func (s *InMemoryInvoiceStore) CreateIfAbsent(ctx context.Context, inv *invoice.Invoice) (types.RecordOutcome, error) {
	if s.InMemoryStore.CreateIfAbsent(ctx, inv.StripeInvoiceID, copyInvoice(inv)) {
		return types.RecordOutcomeInserted, nil
	}
	return types.RecordOutcomeDuplicate, nil
}

func (s *InMemoryInvoiceStore) ListByUserID(ctx context.Context, userID string, limit int) ([]*invoice.Invoice, error) {
	invoices := s.List(ctx,
		func(inv *invoice.Invoice) bool { return inv.UserID == userID },
		func(i, j *invoice.Invoice) bool { return i.CreatedAt.After(j.CreatedAt) },
	)
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}

	out := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, copyInvoice(inv))
	}
	return out, nil
}
