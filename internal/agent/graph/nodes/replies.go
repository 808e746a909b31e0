package nodes

// Canned replies. The wording is part of the product surface; eval cases
// match on these strings, so edits here need matching fixture updates.
const (
	ReplyClarification = "To help you, I need a couple details:\n1) Your order ID (example: A1004)\n2) The email used for the order\n"

	ReplyAttemptQuestions = "It looks like a delivery was attempted.\nQuick questions:\n1) Unit/apt/buzzer or gate code?\n2) Best phone number for the courier?\n3) Prefer re-delivery or pickup?"

	ReplyDamageQuestions = "Sorry about that — it looks like the package may be damaged.\nPlease confirm:\n1) Outer box damaged, item damaged, or both?\n2) Prefer replacement or refund?\nIf you have a photo, you can upload it too."

	ReplyVerifyAddress = "Your package was returned to sender. Let’s confirm your shipping address so we can resend it.\nPlease reply with:\n1) Full address (street, city, province, postal code)\n2) Unit/apt/buzzer number (if any)\n3) Preferred phone number for the courier\n"

	ReplyInvestigationOpened = "I opened an investigation (%s). A support agent will review and follow up."

	ReplyEscalated = "I’m escalating this to a human support agent. I created a case (%s). A support agent will follow up."

	ReplyCaseReused = "You already have an open case (%s) for this order. I’ve added your message and a support agent will follow up."

	ReplyDeliveredChecklist = "It’s marked delivered recently. Here’s a quick checklist:\n• Check mailbox/porch/garage and side doors\n• Check with neighbors/household\n• If apartment/condo: check mailroom/concierge/lockers\n• Look for a carrier photo/note (if available)\n\nIf you still can’t find it after 24 hours, reply here and I’ll open an investigation."

	ReplyReassure = "Your shipment is in transit. If it doesn’t move for 48 hours, I can open a carrier investigation."

	ReplyFallback = "I’m not fully sure what’s happening. I can escalate this to a human support agent."

	ReplyEmailMismatch = "That email doesn’t match the order on file. Please double-check and try again."

	ReplyNotFound = "I couldn’t find that order/tracking. Please confirm your order ID and email."

	ReplyLookupTrouble = "Something went wrong while looking up your order. Please try again."

	ReplyOrderUnavailable = "I couldn’t retrieve your order details. Please try again."

	ReplyCaseTrouble = "Something went wrong while creating your case. Please try again."
)
