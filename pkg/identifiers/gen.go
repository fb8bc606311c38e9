package identifiers

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// GenerateVenueOrderId mints a synthetic, k-sortable VenueOrderId for
// the L1_TBBO/L2_MBP synthetic order/level ids spec.md §4.3.2 calls
// for, and for adapters that need to assign a local id before a venue
// one is known.
func GenerateVenueOrderId() (VenueOrderId, error) {
	return NewVenueOrderId(ksuid.New().String())
}

// GenerateTradeId mints a synthetic, k-sortable TradeId for fills
// executed against a simulated or internally-matched book.
func GenerateTradeId() (TradeId, error) {
	return NewTradeId(ksuid.New().String())
}

// GenerateAccountId mints a new AccountId. Unlike VenueOrderId/TradeId,
// account and position identifiers have no natural temporal ordering
// requirement, so a plain UUIDv4 is used instead of a k-sortable id.
func GenerateAccountId() (AccountId, error) {
	return NewAccountId(uuid.NewString())
}

// GeneratePositionId mints a new PositionId.
func GeneratePositionId() (PositionId, error) {
	return NewPositionId(uuid.NewString())
}
