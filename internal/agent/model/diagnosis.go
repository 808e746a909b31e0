package model

// DiagnosisLabel classifies what is actually happening with a shipment.
type DiagnosisLabel string

const (
	DiagDelivered            DiagnosisLabel = "delivered"
	DiagDeliveredNotReceived DiagnosisLabel = "delivered_not_received"
	DiagStuckInTransit       DiagnosisLabel = "stuck_in_transit"
	DiagInTransit            DiagnosisLabel = "in_transit"
	DiagDeliveryAttempted    DiagnosisLabel = "delivery_attempted"
	DiagReturnToSender       DiagnosisLabel = "return_to_sender"
	DiagDamaged              DiagnosisLabel = "damaged"
	DiagDelayed              DiagnosisLabel = "delayed"
	DiagUnknown              DiagnosisLabel = "unknown"
)

// Diagnosis pairs a label with how confident the engine is and a short
// human-readable note explaining which signal fired.
type Diagnosis struct {
	Label      DiagnosisLabel `json:"label"`
	Confidence float64        `json:"confidence"`
	Notes      string         `json:"notes,omitempty"`
}

// PolicyAction is the recommended handling for a diagnosed situation.
type PolicyAction string

const (
	ActionVerifyAddress             PolicyAction = "verify_address"
	ActionOpenInvestigation         PolicyAction = "open_investigation"
	ActionAdviseWaitThenInvestigate PolicyAction = "advise_wait_then_investigate"
	ActionEscalate                  PolicyAction = "escalate"
	ActionReassureAndMonitor        PolicyAction = "reassure_and_monitor"
)
