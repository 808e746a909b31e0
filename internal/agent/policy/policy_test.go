package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wismo-agent/server/internal/agent/model"
)

func orderWorth(value float64) *model.Order {
	return &model.Order{OrderID: "A1004", Email: "anju@example.com", Value: value, TrackingID: "T9004"}
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		label model.DiagnosisLabel
		want  model.PolicyAction
	}{
		{"rts always verifies address", 49.99, model.DiagReturnToSender, model.ActionVerifyAddress},
		{"rts wins even on high value", 799.0, model.DiagReturnToSender, model.ActionVerifyAddress},
		{"high value claim opens investigation", 420.0, model.DiagDeliveredNotReceived, model.ActionOpenInvestigation},
		{"high value stuck opens investigation", 420.0, model.DiagStuckInTransit, model.ActionOpenInvestigation},
		{"high value delayed opens investigation", 320.01, model.DiagDelayed, model.ActionOpenInvestigation},
		{"high value damaged opens investigation", 799.0, model.DiagDamaged, model.ActionOpenInvestigation},
		{"high value unknown opens investigation", 420.0, model.DiagUnknown, model.ActionOpenInvestigation},
		{"high value moving is still reassurance", 799.0, model.DiagInTransit, model.ActionReassureAndMonitor},
		{"high value attempt is still escalation", 799.0, model.DiagDeliveryAttempted, model.ActionEscalate},
		{"low value claim advises waiting", 120.0, model.DiagDeliveredNotReceived, model.ActionAdviseWaitThenInvestigate},
		{"damaged escalates", 49.99, model.DiagDamaged, model.ActionEscalate},
		{"attempt escalates", 49.99, model.DiagDeliveryAttempted, model.ActionEscalate},
		{"stuck reassures", 120.0, model.DiagStuckInTransit, model.ActionReassureAndMonitor},
		{"delayed reassures", 120.0, model.DiagDelayed, model.ActionReassureAndMonitor},
		{"in transit reassures", 120.0, model.DiagInTransit, model.ActionReassureAndMonitor},
		{"plain delivered escalates", 120.0, model.DiagDelivered, model.ActionEscalate},
		{"unknown escalates", 120.0, model.DiagUnknown, model.ActionEscalate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Recommend(orderWorth(tc.value), model.Diagnosis{Label: tc.label, Confidence: 0.8})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecommend_HighValueBoundary(t *testing.T) {
	diag := model.Diagnosis{Label: model.DiagDeliveredNotReceived, Confidence: 0.85}

	// The threshold comparison is strictly greater-than; an order at exactly
	// the threshold takes the normal path.
	got := Recommend(orderWorth(HighValueThreshold), diag)
	assert.Equal(t, model.ActionAdviseWaitThenInvestigate, got)

	got = Recommend(orderWorth(HighValueThreshold+0.01), diag)
	assert.Equal(t, model.ActionOpenInvestigation, got)
}

func TestRepeatClaimGated(t *testing.T) {
	assert.True(t, RepeatClaimGated(model.DiagDeliveredNotReceived))

	for _, label := range []model.DiagnosisLabel{
		model.DiagDelivered,
		model.DiagStuckInTransit,
		model.DiagInTransit,
		model.DiagDeliveryAttempted,
		model.DiagReturnToSender,
		model.DiagDamaged,
		model.DiagDelayed,
		model.DiagUnknown,
	} {
		assert.False(t, RepeatClaimGated(label), "label %s must not be gated", label)
	}
}
