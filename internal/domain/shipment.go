package domain

import "time"

// Normalized carrier tracking statuses. Raw carrier strings are mapped to
// these before the engine looks at them.
type TrackingStatus string

const (
	TrackingStatusPreTransit TrackingStatus = "PRE_TRANSIT"
	TrackingStatusInTransit  TrackingStatus = "IN_TRANSIT"
	TrackingStatusDelivered  TrackingStatus = "DELIVERED"
	TrackingStatusUnknown    TrackingStatus = "UNKNOWN"
)

// Shipment binds an order to its carrier leg. An order owns at most one
// shipment; a shipment may be voided only while still pre-transit.
type Shipment struct {
	ID             int64          `json:"id"`
	OrderID        int64          `json:"order_id"`
	Carrier        string         `json:"carrier"`
	TrackingID     string         `json:"tracking_id"`
	LabelRef       string         `json:"label_ref"`
	CostCents      int64          `json:"cost_cents"`
	TrackingStatus TrackingStatus `json:"tracking_status"`
	LastCheckedOn  *time.Time     `json:"last_checked_on,omitempty"`
	VoidedOn       *time.Time     `json:"voided_on,omitempty"`
	CreatedOn      time.Time      `json:"created_on"`
}

// Voidable reports whether the shipment can still be voided with the carrier.
func (s *Shipment) Voidable() bool {
	return s.VoidedOn == nil && s.TrackingStatus == TrackingStatusPreTransit
}
