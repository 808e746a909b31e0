package model

// Intent is the closed set of customer intents the extractor may produce.
type Intent string

const (
	IntentTrackOrder           Intent = "track_order"
	IntentDeliveredNotReceived Intent = "delivered_not_received"
	IntentDeliveryAttempted    Intent = "delivery_attempted"
	IntentDamaged              Intent = "damaged"
	IntentReturnToSender       Intent = "return_to_sender"
	IntentDelayed              Intent = "delayed"
	IntentStuckInTransit       Intent = "stuck_in_transit"
	IntentAddressIssue         Intent = "address_issue"
	IntentUnknown              Intent = "unknown"
)

// ParseIntent validates v against the closed intent set.
func ParseIntent(v string) (Intent, bool) {
	switch Intent(v) {
	case IntentTrackOrder, IntentDeliveredNotReceived, IntentDeliveryAttempted,
		IntentDamaged, IntentReturnToSender, IntentDelayed,
		IntentStuckInTransit, IntentAddressIssue, IntentUnknown:
		return Intent(v), true
	}
	return "", false
}

// NextAction is the extractor's suggestion for how the pipeline should proceed.
type NextAction string

const (
	NextAskFollowup NextAction = "ask_followup"
	NextProceed     NextAction = "proceed"
)

// ParseNextAction validates v, treating empty as proceed.
func ParseNextAction(v string) (NextAction, bool) {
	switch NextAction(v) {
	case NextAskFollowup, NextProceed:
		return NextAction(v), true
	case "":
		return NextProceed, true
	}
	return "", false
}

// IntentResult is the outcome of one extraction pass over a user message.
type IntentResult struct {
	Intent        Intent
	OrderID       string
	Email         string
	MissingFields []string
	RiskFlags     []string
	Confidence    float64
	NextAction    NextAction
}
