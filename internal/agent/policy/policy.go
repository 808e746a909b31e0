package policy

import (
	"time"

	"github.com/wismo-agent/server/internal/agent/model"
)

// HighValueThreshold separates orders that always warrant an investigation
// when something looks wrong. The comparison is strictly greater-than.
const HighValueThreshold = 300.0

// Repeat-claim override: a 3rd-or-later delivered-not-received claim from the
// same email within the window forces escalation.
const (
	RepeatClaimWindow    = 60 * 24 * time.Hour
	RepeatClaimThreshold = 2
	RepeatClaimRule      = "repeat_claims_60d"
)

// highValueRiskLabels are the diagnoses where a high order value buys an
// investigation instead of softer handling.
var highValueRiskLabels = map[model.DiagnosisLabel]bool{
	model.DiagDeliveredNotReceived: true,
	model.DiagStuckInTransit:       true,
	model.DiagDelayed:              true,
	model.DiagDamaged:              true,
	model.DiagUnknown:              true,
}

// Recommend maps an order and its diagnosis to exactly one action. Rules are
// ordered; the first match wins. The value check runs before the generic
// delivered_not_received rule so high-value at-risk orders always get
// investigated rather than a wait-and-see checklist.
func Recommend(order *model.Order, diag model.Diagnosis) model.PolicyAction {
	switch {
	case diag.Label == model.DiagReturnToSender:
		return model.ActionVerifyAddress
	case order.Value > HighValueThreshold && highValueRiskLabels[diag.Label]:
		return model.ActionOpenInvestigation
	case diag.Label == model.DiagDeliveredNotReceived:
		return model.ActionAdviseWaitThenInvestigate
	case diag.Label == model.DiagDamaged || diag.Label == model.DiagDeliveryAttempted:
		return model.ActionEscalate
	case diag.Label == model.DiagStuckInTransit || diag.Label == model.DiagDelayed || diag.Label == model.DiagInTransit:
		return model.ActionReassureAndMonitor
	default:
		return model.ActionEscalate
	}
}

// RepeatClaimGated reports whether the repeat-claim override applies to this
// diagnosis label. No claim count changes the action for other labels.
func RepeatClaimGated(label model.DiagnosisLabel) bool {
	return label == model.DiagDeliveredNotReceived
}
