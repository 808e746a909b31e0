// Package policy holds the deterministic decision core: the diagnosis engine
// that classifies what is happening with a shipment, and the rules that map a
// diagnosis to the assistant's next action.
package policy

import (
	"strings"
	"time"

	"github.com/wismo-agent/server/internal/agent/model"
)

// StuckAfterHours is how long a moving shipment may go without a new
// timeline event before it counts as stuck.
const StuckAfterHours = 48

// Status vocabularies. Carrier feeds disagree on naming, so each set carries
// the variants seen in practice.
var (
	deliveredStatuses = map[string]bool{
		"delivered": true, "delivery_confirmed": true, "delivered_to_mailroom": true,
	}
	rtsStatuses = map[string]bool{
		"returned_to_sender": true, "return_to_sender": true, "rts": true,
	}
	attemptStatuses = map[string]bool{
		"delivery_attempted": true, "attempted": true, "attempted_delivery": true, "notice_left": true,
	}
	damagedStatuses = map[string]bool{
		"damaged": true, "damage_reported": true,
	}
	delayStatuses = map[string]bool{
		"delayed": true, "delay": true, "exception": true, "weather_delay": true,
	}
	movingStatuses = map[string]bool{
		"in_transit": true, "out_for_delivery": true, "picked_up": true,
	}
)

var notReceivedTerms = []string{"not received", "did not receive", "missing", "stolen"}

// Diagnose classifies the shipment situation from the tracking status and
// the customer's (effective) message. The rule order is a deliberate
// precedence; the first match wins.
func Diagnose(message string, shipment *model.Shipment, now time.Time) model.Diagnosis {
	msg := strings.ToLower(strings.TrimSpace(message))
	status := strings.ToLower(strings.TrimSpace(shipment.CurrentStatus))

	if rtsStatuses[status] {
		return model.Diagnosis{Label: model.DiagReturnToSender, Confidence: 0.95, Notes: "tracking status indicates RTS"}
	}

	if damagedStatuses[status] || strings.Contains(msg, "damag") {
		return model.Diagnosis{Label: model.DiagDamaged, Confidence: 0.85, Notes: "damage keyword/status detected"}
	}

	if attemptStatuses[status] || strings.Contains(msg, "attempt") || strings.Contains(msg, "not home") {
		return model.Diagnosis{Label: model.DiagDeliveryAttempted, Confidence: 0.80, Notes: "attempt keyword/status detected"}
	}

	if deliveredStatuses[status] {
		for _, term := range notReceivedTerms {
			if strings.Contains(msg, term) {
				return model.Diagnosis{Label: model.DiagDeliveredNotReceived, Confidence: 0.85, Notes: "delivered + not received"}
			}
		}
		return model.Diagnosis{Label: model.DiagDelivered, Confidence: 0.70, Notes: "delivered status"}
	}

	if delayStatuses[status] || strings.Contains(msg, "delay") {
		return model.Diagnosis{Label: model.DiagDelayed, Confidence: 0.70}
	}

	if movingStatuses[status] {
		if last, ok := lastEventTime(shipment.Timeline); ok {
			if now.Sub(last) >= StuckAfterHours*time.Hour {
				return model.Diagnosis{Label: model.DiagStuckInTransit, Confidence: 0.75}
			}
		}
		return model.Diagnosis{Label: model.DiagInTransit, Confidence: 0.60}
	}

	return model.Diagnosis{Label: model.DiagUnknown, Confidence: 0.40}
}

// lastEventTime returns the maximum parsable timestamp in the timeline.
// Array order is not trusted.
func lastEventTime(timeline []model.TrackingEvent) (time.Time, bool) {
	var last time.Time
	found := false
	for _, ev := range timeline {
		t, ok := parseEventTime(ev.TS)
		if !ok {
			continue
		}
		if !found || t.After(last) {
			last = t
			found = true
		}
	}
	return last, found
}

// parseEventTime tolerates RFC3339 (including the trailing Z marker) and
// zone-less timestamps, which are treated as UTC. Anything else is absent,
// never fatal.
func parseEventTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
