package model

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationState_ReplyIsWriteOnce(t *testing.T) {
	s := NewConversationState(ChatInput{SessionID: "demo-session", Message: "hi"})

	assert.False(t, s.Replied())
	assert.Empty(t, s.Reply())

	assert.True(t, s.SetReply("first answer"))
	assert.True(t, s.Replied())
	assert.Equal(t, "first answer", s.Reply())

	assert.False(t, s.SetReply("second answer"))
	assert.Equal(t, "first answer", s.Reply())
}

func TestConversationState_ActionsReturnsCopy(t *testing.T) {
	s := NewConversationState(ChatInput{})
	s.AddAction(ActionEvent{Kind: EventLLMIntent})
	s.AddAction(ActionEvent{Kind: EventToolCall, Tool: ToolGetOrder})

	got := s.Actions()
	require.Len(t, got, 2)

	// Mutating the copy must not touch the trail.
	got[0] = ActionEvent{Kind: EventError}
	assert.Equal(t, EventLLMIntent, s.Actions()[0].Kind)
}

func TestConversationState_Result(t *testing.T) {
	s := NewConversationState(ChatInput{SessionID: "s1", Message: "where is A1004?"})
	s.Intent = IntentResult{
		Intent:        IntentTrackOrder,
		MissingFields: []string{"email"},
		RiskFlags:     []string{},
		Confidence:    0.55,
	}
	s.CaseID = "CASE-1A2B3C4D"
	s.SetReply("checking now")
	s.AddAction(ActionEvent{Kind: EventDecision})

	res := s.Result()
	assert.Equal(t, "checking now", res.Reply)
	assert.Equal(t, IntentTrackOrder, res.Intent)
	assert.Equal(t, []string{"email"}, res.MissingFields)
	assert.Equal(t, "CASE-1A2B3C4D", res.CaseID)
	require.Len(t, res.Actions, 1)

	// Slices are never nil so the response marshals as [] not null.
	assert.NotNil(t, res.MissingFields)
	assert.NotNil(t, res.RiskFlags)
}

func TestConversationState_ResultWithNilSlices(t *testing.T) {
	res := NewConversationState(ChatInput{}).Result()
	assert.NotNil(t, res.MissingFields)
	assert.NotNil(t, res.RiskFlags)
	assert.NotNil(t, res.Actions)
	assert.Empty(t, res.Intent)
}

func TestNewCaseID(t *testing.T) {
	pattern := regexp.MustCompile(`^CASE-[0-9A-F]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewCaseID()
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestParseIntent(t *testing.T) {
	got, ok := ParseIntent("delivered_not_received")
	assert.True(t, ok)
	assert.Equal(t, IntentDeliveredNotReceived, got)

	_, ok = ParseIntent("chitchat")
	assert.False(t, ok)

	_, ok = ParseIntent("")
	assert.False(t, ok)
}

func TestParseNextAction(t *testing.T) {
	got, ok := ParseNextAction("ask_followup")
	assert.True(t, ok)
	assert.Equal(t, NextAskFollowup, got)

	got, ok = ParseNextAction("")
	assert.True(t, ok)
	assert.Equal(t, NextProceed, got)

	_, ok = ParseNextAction("retry")
	assert.False(t, ok)
}
