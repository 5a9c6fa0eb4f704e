package carrier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"buyback-backend/internal/domain"

	"github.com/google/uuid"
)

// MockClient is an in-memory carrier for demo/testing without a real
// carrier account. Labels it issues can be advanced through tracking states
// with AdvanceTracking.
type MockClient struct {
	mu        sync.Mutex
	carrier   string
	costCents int64
	labels    map[string]*Label                // labelRef -> label
	tracking  map[string]domain.TrackingStatus // trackingID -> status
	voided    map[string]bool                  // labelRef -> voided
}

func NewMockClient(carrierName string, costCents int64) *MockClient {
	return &MockClient{
		carrier:   carrierName,
		costCents: costCents,
		labels:    make(map[string]*Label),
		tracking:  make(map[string]domain.TrackingStatus),
		voided:    make(map[string]bool),
	}
}

func (m *MockClient) PurchaseLabel(ctx context.Context, destinationAddress, orderRef string) (*Label, error) {
	if destinationAddress == "" {
		return nil, fmt.Errorf("destination address is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	token := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	label := &Label{
		TrackingID: "MOCK" + token,
		LabelRef:   "label-" + orderRef + "-" + token,
		Carrier:    m.carrier,
		CostCents:  m.costCents,
	}
	m.labels[label.LabelRef] = label
	m.tracking[label.TrackingID] = domain.TrackingStatusPreTransit
	return label, nil
}

func (m *MockClient) Void(ctx context.Context, labelRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	label, ok := m.labels[labelRef]
	if !ok {
		return fmt.Errorf("unknown label %q", labelRef)
	}
	if m.tracking[label.TrackingID] != domain.TrackingStatusPreTransit {
		return fmt.Errorf("label %q is no longer voidable", labelRef)
	}
	m.voided[labelRef] = true
	return nil
}

func (m *MockClient) Track(ctx context.Context, trackingID string) (*TrackingUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.tracking[trackingID]
	if !ok {
		return nil, fmt.Errorf("unknown tracking id %q", trackingID)
	}
	return &TrackingUpdate{Status: status, Description: string(status)}, nil
}

// AdvanceTracking sets the tracking status for a shipment. Test hook.
func (m *MockClient) AdvanceTracking(trackingID string, status domain.TrackingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking[trackingID] = status
}
