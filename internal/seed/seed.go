// Package seed generates the demo dataset: orders and shipments covering the
// five delivery scenarios in a realistic mix.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/wismo-agent/server/internal/agent/model"
)

// Scenario names the delivery storyline behind one seeded order.
type Scenario string

const (
	ScenarioNormalDelivered   Scenario = "normal_delivered"
	ScenarioStuckInTransit    Scenario = "stuck_in_transit"
	ScenarioDeliveryAttempted Scenario = "delivery_attempted"
	ScenarioReturnedToSender  Scenario = "returned_to_sender"
	ScenarioDamaged           Scenario = "damaged"
)

// CustomerEmail is the demo account every seeded order belongs to.
const CustomerEmail = "anju@example.com"

const carrier = "MockCarrier"

var orderValues = []float64{49.99, 89.99, 120.0, 199.0, 249.0, 320.0, 420.0, 799.0}

// scenarioMix returns the distribution generated orders are drawn from.
func scenarioMix() []Scenario {
	mix := make([]Scenario, 0, 200)
	add := func(s Scenario, n int) {
		for i := 0; i < n; i++ {
			mix = append(mix, s)
		}
	}
	add(ScenarioNormalDelivered, 110)
	add(ScenarioStuckInTransit, 35)
	add(ScenarioDeliveryAttempted, 25)
	add(ScenarioReturnedToSender, 15)
	add(ScenarioDamaged, 15)
	return mix
}

// Record pairs an order with its shipment.
type Record struct {
	Order    model.Order
	Shipment model.Shipment
	Scenario Scenario
}

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// MakeTimeline builds the scan history for a scenario and returns the
// shipment's current status alongside it.
func MakeTimeline(base time.Time, scenario Scenario) (string, []model.TrackingEvent) {
	timeline := []model.TrackingEvent{
		{TS: iso(base), Status: "label_created", Location: "Toronto"},
		{TS: iso(base.Add(18 * time.Hour)), Status: "picked_up", Location: "Toronto"},
		{TS: iso(base.Add(32 * time.Hour)), Status: "in_transit", Location: "Mississauga"},
	}

	// Stuck shipments simply stop scanning after the line-haul pickup.
	if scenario == ScenarioStuckInTransit {
		return "in_transit", timeline
	}

	timeline = append(timeline, model.TrackingEvent{
		TS: iso(base.Add(57 * time.Hour)), Status: "out_for_delivery", Location: "Windsor",
	})

	switch scenario {
	case ScenarioNormalDelivered:
		timeline = append(timeline, model.TrackingEvent{
			TS: iso(base.Add(63 * time.Hour)), Status: "delivered", Location: "Windsor",
		})
		return "delivered", timeline
	case ScenarioDeliveryAttempted:
		timeline = append(timeline, model.TrackingEvent{
			TS: iso(base.Add(63 * time.Hour)), Status: "delivery_attempted", Location: "Windsor",
		})
		return "delivery_attempted", timeline
	case ScenarioReturnedToSender:
		timeline = append(timeline,
			model.TrackingEvent{TS: iso(base.Add(60 * time.Hour)), Status: "return_initiated", Location: "Windsor"},
			model.TrackingEvent{TS: iso(base.Add(106 * time.Hour)), Status: "returned_to_sender", Location: "Toronto"},
		)
		return "returned_to_sender", timeline
	case ScenarioDamaged:
		timeline = append(timeline, model.TrackingEvent{
			TS: iso(base.Add(61 * time.Hour)), Status: "damaged", Location: "Windsor",
		})
		return "damaged", timeline
	}

	return "unknown", timeline
}

// Dataset builds n generated records plus two fixed test orders: A1001 is a
// recently moving shipment and A2002 is a delivered high-value one.
func Dataset(n int, now time.Time, rng *rand.Rand) []Record {
	records := make([]Record, 0, n+2)

	fixed := []struct {
		orderID    string
		trackingID string
		scenario   Scenario
		value      float64
	}{
		{"A1001", "T9001", ScenarioStuckInTransit, 120.0},
		{"A2002", "T9002", ScenarioNormalDelivered, 420.0},
	}
	for _, f := range fixed {
		base := now.Add(-77 * time.Hour)
		records = append(records, makeRecord(f.orderID, f.trackingID, f.scenario, f.value, base))
	}

	mix := scenarioMix()
	rng.Shuffle(len(mix), func(i, j int) { mix[i], mix[j] = mix[j], mix[i] })

	created := 0
	for i := 1; created < n; i++ {
		orderID := fmt.Sprintf("A%d", 1000+i)
		trackingID := fmt.Sprintf("T%d", 9000+i)
		if orderID == "A1001" || orderID == "A2002" {
			continue
		}

		scenario := mix[created%len(mix)]
		base := now.Add(-time.Duration(1+rng.Intn(10))*24*time.Hour - time.Duration(rng.Intn(13))*time.Hour)
		value := orderValues[rng.Intn(len(orderValues))]
		records = append(records, makeRecord(orderID, trackingID, scenario, value, base))
		created++
	}

	return records
}

func makeRecord(orderID, trackingID string, scenario Scenario, value float64, base time.Time) Record {
	status, timeline := MakeTimeline(base, scenario)
	return Record{
		Order: model.Order{
			OrderID:    orderID,
			Email:      CustomerEmail,
			Value:      value,
			TrackingID: trackingID,
		},
		Shipment: model.Shipment{
			TrackingID:    trackingID,
			Carrier:       carrier,
			CurrentStatus: status,
			Timeline:      timeline,
		},
		Scenario: scenario,
	}
}

// Apply writes the records through the repositories.
func Apply(ctx context.Context, records []Record, orders model.OrderRepository, shipments model.ShipmentRepository) error {
	for _, rec := range records {
		o := rec.Order
		if err := orders.Put(ctx, &o); err != nil {
			return fmt.Errorf("seed order %s: %w", o.OrderID, err)
		}
		s := rec.Shipment
		if err := shipments.Put(ctx, &s); err != nil {
			return fmt.Errorf("seed shipment %s: %w", s.TrackingID, err)
		}
	}
	return nil
}
