package seed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wismo-agent/server/internal/agent/repo"
)

func TestMakeTimeline(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		scenario   Scenario
		wantStatus string
		wantEvents int
		lastStatus string
		lastTS     string
	}{
		{ScenarioStuckInTransit, "in_transit", 3, "in_transit", "2025-03-02T08:00:00Z"},
		{ScenarioNormalDelivered, "delivered", 5, "delivered", "2025-03-03T15:00:00Z"},
		{ScenarioDeliveryAttempted, "delivery_attempted", 5, "delivery_attempted", "2025-03-03T15:00:00Z"},
		{ScenarioReturnedToSender, "returned_to_sender", 6, "returned_to_sender", "2025-03-05T10:00:00Z"},
		{ScenarioDamaged, "damaged", 5, "damaged", "2025-03-03T13:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scenario), func(t *testing.T) {
			status, timeline := MakeTimeline(base, tt.scenario)
			assert.Equal(t, tt.wantStatus, status)
			require.Len(t, timeline, tt.wantEvents)

			// Every scenario shares the label/pickup/line-haul prefix.
			assert.Equal(t, "label_created", timeline[0].Status)
			assert.Equal(t, "picked_up", timeline[1].Status)
			assert.Equal(t, "in_transit", timeline[2].Status)

			last := timeline[len(timeline)-1]
			assert.Equal(t, tt.lastStatus, last.Status)
			assert.Equal(t, tt.lastTS, last.TS)

			prev := time.Time{}
			for _, ev := range timeline {
				ts, err := time.Parse(time.RFC3339, ev.TS)
				require.NoErrorf(t, err, "event %q", ev.TS)
				assert.False(t, ts.Before(prev), "timeline out of order at %s", ev.TS)
				prev = ts
				assert.NotEmpty(t, ev.Location)
			}
		})
	}
}

func TestMakeTimeline_UnknownScenario(t *testing.T) {
	status, timeline := MakeTimeline(time.Now().UTC(), Scenario("mystery"))
	assert.Equal(t, "unknown", status)
	assert.Len(t, timeline, 4)
	assert.Equal(t, "out_for_delivery", timeline[3].Status)
}

func TestDataset_FixedOrders(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	records := Dataset(0, now, rand.New(rand.NewSource(1)))
	require.Len(t, records, 2)

	stuck := records[0]
	assert.Equal(t, "A1001", stuck.Order.OrderID)
	assert.Equal(t, "T9001", stuck.Order.TrackingID)
	assert.Equal(t, CustomerEmail, stuck.Order.Email)
	assert.Equal(t, 120.0, stuck.Order.Value)
	assert.Equal(t, ScenarioStuckInTransit, stuck.Scenario)
	assert.Equal(t, "in_transit", stuck.Shipment.CurrentStatus)
	assert.Equal(t, "MockCarrier", stuck.Shipment.Carrier)
	require.Len(t, stuck.Shipment.Timeline, 3)
	// Base is now-77h, so the last scan sits 45h back: moving, not yet stuck.
	assert.Equal(t, now.Add(-45*time.Hour).Format(time.RFC3339), stuck.Shipment.Timeline[2].TS)

	delivered := records[1]
	assert.Equal(t, "A2002", delivered.Order.OrderID)
	assert.Equal(t, "T9002", delivered.Order.TrackingID)
	assert.Equal(t, 420.0, delivered.Order.Value)
	assert.Equal(t, ScenarioNormalDelivered, delivered.Scenario)
	assert.Equal(t, "delivered", delivered.Shipment.CurrentStatus)
	require.Len(t, delivered.Shipment.Timeline, 5)
	assert.Equal(t, now.Add(-14*time.Hour).Format(time.RFC3339), delivered.Shipment.Timeline[4].TS)
}

func TestDataset_GeneratedOrders(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	records := Dataset(200, now, rand.New(rand.NewSource(42)))
	require.Len(t, records, 202)

	values := make(map[float64]bool, len(orderValues))
	for _, v := range orderValues {
		values[v] = true
	}

	orderIDs := make(map[string]bool)
	trackingIDs := make(map[string]bool)
	scenarios := make(map[Scenario]int)
	for i, rec := range records {
		assert.Falsef(t, orderIDs[rec.Order.OrderID], "duplicate order id %s", rec.Order.OrderID)
		orderIDs[rec.Order.OrderID] = true
		assert.Falsef(t, trackingIDs[rec.Shipment.TrackingID], "duplicate tracking id %s", rec.Shipment.TrackingID)
		trackingIDs[rec.Shipment.TrackingID] = true

		assert.Equal(t, CustomerEmail, rec.Order.Email)
		assert.Equal(t, rec.Order.TrackingID, rec.Shipment.TrackingID)
		assert.Truef(t, values[rec.Order.Value], "record %d has value %v outside the catalog", i, rec.Order.Value)
		if i >= 2 {
			scenarios[rec.Scenario]++
		}
	}

	// n == len(mix) walks the shuffled mix exactly once, so the generated
	// distribution matches the configured counts.
	assert.Equal(t, map[Scenario]int{
		ScenarioNormalDelivered:   110,
		ScenarioStuckInTransit:    35,
		ScenarioDeliveryAttempted: 25,
		ScenarioReturnedToSender:  15,
		ScenarioDamaged:           15,
	}, scenarios)

	// Generated ids start after the fixed block and never collide with it.
	assert.Equal(t, "A1002", records[2].Order.OrderID)
	assert.False(t, orderIDs["A1202"])
}

func TestDataset_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := Dataset(50, now, rand.New(rand.NewSource(42)))
	b := Dataset(50, now, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestScenarioMix(t *testing.T) {
	mix := scenarioMix()
	assert.Len(t, mix, 200)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	records := Dataset(3, now, rand.New(rand.NewSource(7)))

	orders := repo.NewMemoryOrders()
	shipments := repo.NewMemoryShipments()
	require.NoError(t, Apply(ctx, records, orders, shipments))

	order, err := orders.Get(ctx, "A1001")
	require.NoError(t, err)
	assert.Equal(t, 120.0, order.Value)
	assert.Equal(t, "T9001", order.TrackingID)

	shipment, err := shipments.Get(ctx, "T9002")
	require.NoError(t, err)
	assert.Equal(t, "delivered", shipment.CurrentStatus)
	assert.Len(t, shipment.Timeline, 5)

	generated, err := orders.Get(ctx, "A1004")
	require.NoError(t, err)
	assert.Equal(t, CustomerEmail, generated.Email)
}
