package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_BILLING_EVENT   = "bevt"
	UUID_PREFIX_SUBSCRIPTION    = "sub"
	UUID_PREFIX_INVOICE         = "inv"
	UUID_PREFIX_STRIPE_CUSTOMER = "scus"
	UUID_PREFIX_USAGE           = "usage"
	UUID_PREFIX_WEBHOOK_EVENT   = "webhook"
)
