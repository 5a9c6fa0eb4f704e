package carrier

import (
	"context"

	"buyback-backend/internal/domain"
)

// Label is the result of a successful label purchase.
type Label struct {
	TrackingID string
	LabelRef   string
	Carrier    string
	CostCents  int64
}

// TrackingUpdate is the normalized view of a carrier tracking lookup.
type TrackingUpdate struct {
	Status      domain.TrackingStatus
	Description string
}

// Client is the carrier label service contract. Implementations are external
// collaborators; every call honors the caller's context deadline, and a
// failure here is recoverable. It never corrupts engine state.
type Client interface {
	PurchaseLabel(ctx context.Context, destinationAddress, orderRef string) (*Label, error)
	Void(ctx context.Context, labelRef string) error
	Track(ctx context.Context, trackingID string) (*TrackingUpdate, error)
}
