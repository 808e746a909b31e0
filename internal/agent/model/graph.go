package model

// ConversationState carries one chat turn through the decision pipeline.
// Concurrency model:
//   - One state instance belongs to exactly one pipeline invocation and is
//     only touched by the node currently executing; the stages run strictly
//     in sequence, so no mutex is required.
//   - The reply is write-once: the first stage that answers the customer
//     wins, and later stages observe Replied() and pass the state through.
type ConversationState struct {
	Input ChatInput

	// Session memory loaded (or created) during intake.
	Session *Session

	// Extraction outcome and the continuity decisions derived from it.
	Intent           IntentResult
	DetailsOnly      bool
	EffectiveMessage string

	// Working order id and email after merging request, extraction, and
	// session values. Input keeps the raw request untouched.
	OrderID string
	Email   string

	// Records fetched during retrieval. Either may stay nil when the reply
	// was already decided or the lookup failed.
	Order    *Order
	Shipment *Shipment

	Diagnosis Diagnosis
	Action    PolicyAction
	CaseID    string

	actions []ActionEvent
	reply   string
	replied bool
}

// NewConversationState builds the pipeline state for one request.
func NewConversationState(input ChatInput) *ConversationState {
	return &ConversationState{Input: input}
}

// SetReply records the user-facing reply if none is set yet and reports
// whether this call won.
func (s *ConversationState) SetReply(text string) bool {
	if s.replied {
		return false
	}
	s.reply = text
	s.replied = true
	return true
}

// Replied reports whether a reply has been decided.
func (s *ConversationState) Replied() bool {
	return s.replied
}

// Reply returns the decided reply, empty until SetReply succeeds.
func (s *ConversationState) Reply() string {
	return s.reply
}

// AddAction appends one audit event to the trail.
func (s *ConversationState) AddAction(ev ActionEvent) {
	s.actions = append(s.actions, ev)
}

// Actions returns a copy of the audit trail in append order.
func (s *ConversationState) Actions() []ActionEvent {
	out := make([]ActionEvent, len(s.actions))
	copy(out, s.actions)
	return out
}

// Result assembles the caller-facing outcome of the invocation.
func (s *ConversationState) Result() *ChatResult {
	return &ChatResult{
		Reply:         s.reply,
		Intent:        s.Intent.Intent,
		MissingFields: append([]string{}, s.Intent.MissingFields...),
		Confidence:    s.Intent.Confidence,
		RiskFlags:     append([]string{}, s.Intent.RiskFlags...),
		Actions:       s.Actions(),
		CaseID:        s.CaseID,
	}
}

// ChatInput represents one inbound customer message.
type ChatInput struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	OrderID   string `json:"order_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ChatResult holds the data for the response.
type ChatResult struct {
	Reply         string
	Intent        Intent // empty when no extraction ran
	MissingFields []string
	Confidence    float64
	RiskFlags     []string
	Actions       []ActionEvent
	CaseID        string
}
