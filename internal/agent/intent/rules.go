package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/wismo-agent/server/internal/agent/model"
)

// RuleConfidence is the fixed confidence reported by keyword extraction.
const RuleConfidence = 0.55

var (
	orderIDPattern = regexp.MustCompile(`\bA\d{3,6}\b`)
	emailPattern   = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// complaintTerms distinguish "something is wrong" messages from turns that
// merely supply order details for an earlier complaint.
var complaintTerms = []string{
	"not received", "never arrived", "missing", "stolen",
	"damag", "broken", "stuck", "not moving",
	"delay", "late", "return", "refund", "attempt", "lost",
}

// FindOrderID returns the first order id in the message, empty when none.
func FindOrderID(message string) string {
	return orderIDPattern.FindString(message)
}

// FindEmail returns the first email address in the message, empty when none.
func FindEmail(message string) string {
	return emailPattern.FindString(message)
}

// MissingFields lists which of the two required details are absent.
func MissingFields(orderID, email string) []string {
	missing := []string{}
	if orderID == "" {
		missing = append(missing, "order_id")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	return missing
}

// HasComplaint reports whether the message contains complaint language.
func HasComplaint(message string) bool {
	lowered := strings.ToLower(message)
	for _, term := range complaintTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// LooksLikeDetails reports whether the message reads as bare order details:
// an order id or email with no complaint language around it.
func LooksLikeDetails(message string) bool {
	if HasComplaint(message) {
		return false
	}
	return orderIDPattern.MatchString(message) || emailPattern.MatchString(message)
}

// DetailsOnly reports whether this turn only supplies details for an earlier
// complaint. The extraction must have produced the default intent, found at
// least one identifier, and the message must carry no complaint language.
func DetailsOnly(message string, res model.IntentResult) bool {
	if res.Intent != model.IntentTrackOrder {
		return false
	}
	if res.OrderID == "" && res.Email == "" {
		return false
	}
	return !HasComplaint(message)
}

// RuleExtractor classifies with the keyword vocabulary and pulls order ids
// and emails out with regular expressions.
type RuleExtractor struct {
	vocab *Vocabulary
}

func NewRuleExtractor(vocab *Vocabulary) *RuleExtractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &RuleExtractor{vocab: vocab}
}

func (e *RuleExtractor) Extract(ctx context.Context, message string) model.IntentResult {
	res := model.IntentResult{
		Intent:     e.vocab.Match(message),
		OrderID:    FindOrderID(message),
		Email:      FindEmail(message),
		Confidence: RuleConfidence,
		RiskFlags:  []string{},
	}
	res.MissingFields = MissingFields(res.OrderID, res.Email)
	if len(res.MissingFields) > 0 {
		res.NextAction = model.NextAskFollowup
	} else {
		res.NextAction = model.NextProceed
	}
	return res
}

var _ Extractor = (*RuleExtractor)(nil)
