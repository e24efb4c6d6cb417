package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentKind classifies a visitor message.
type IntentKind string

const (
	IntentNewBooking        IntentKind = "new_booking"
	IntentAvailabilityQuery IntentKind = "availability_query"
	IntentManagement        IntentKind = "management"
	IntentBookingDetails    IntentKind = "booking_details"
	IntentNotBookingRelated IntentKind = "general"
)

// ManagementAction distinguishes cancel from reschedule requests.
type ManagementAction string

const (
	ActionCancel     ManagementAction = "cancel"
	ActionReschedule ManagementAction = "reschedule"
)

// Intent is the structured reading of one visitor message.
type Intent struct {
	Kind   IntentKind
	Action ManagementAction

	// Details extracted when Kind is IntentBookingDetails. Zero values
	// mean the field was absent from the message.
	Email       string
	SlotNumber  int
	Name        string
	MeetingType string
}

// Turn is one prior exchange in the conversation, oldest first.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	// A slot choice is "slot N", an ordinal like "2nd", or a standalone
	// "N.". The last two forms are anchored so digits inside an email
	// address or URL never read as a choice.
	slotRe = regexp.MustCompile(`(?i)slot\s*(\d+)|\b(\d+)(?:st|nd|rd|th)\b|(?:^|\s)(\d+)\.(?:\s|$)`)

	namePhraseRe = regexp.MustCompile(`(?i)(?:i'm|name is|call me)\s+([a-zA-Z\s]+)`)
	nameProperRe = regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+)`)
)

// Bot phrases that mark the conversation as mid-booking. A details
// message only counts as booking details when one of these appeared in
// a recent assistant turn.
var bookingContextMarkers = []string{
	"available time slots",
	"To book a meeting",
	"I need a few more details",
}

const bookingContextWindow = 4

// Extract classifies message against the recent conversation. It is
// deliberately keyword-driven; anything ambiguous falls through to the
// model.
func Extract(message string, recentTurns []Turn) Intent {
	lower := strings.ToLower(message)

	hasBookingWord := containsAny(lower, "schedule", "book", "meeting", "appointment")
	hasManageWord := containsAny(lower, "cancel", "reschedule")
	hasAvailWord := containsAny(lower, "available", "time slot", "when can")

	switch {
	case hasBookingWord && hasManageWord:
		return Intent{Kind: IntentManagement, Action: managementAction(lower)}
	case hasManageWord && inBookingContext(recentTurns):
		return Intent{Kind: IntentManagement, Action: managementAction(lower)}
	case hasAvailWord:
		return Intent{Kind: IntentAvailabilityQuery}
	case hasBookingWord:
		return Intent{Kind: IntentNewBooking}
	}

	if inBookingContext(recentTurns) {
		if details, ok := extractDetails(message); ok {
			return details
		}
	}
	return Intent{Kind: IntentNotBookingRelated}
}

func managementAction(lower string) ManagementAction {
	if strings.Contains(lower, "cancel") {
		return ActionCancel
	}
	return ActionReschedule
}

// inBookingContext reports whether any of the last assistant turns in
// the window contains a booking marker phrase.
func inBookingContext(turns []Turn) bool {
	start := len(turns) - bookingContextWindow
	if start < 0 {
		start = 0
	}
	for _, turn := range turns[start:] {
		if turn.Role != "assistant" {
			continue
		}
		for _, marker := range bookingContextMarkers {
			if strings.Contains(turn.Content, marker) {
				return true
			}
		}
	}
	return false
}

// extractDetails pulls email, slot number, name and meeting type out of
// a free-form message. It succeeds when at least one field is found.
func extractDetails(message string) (Intent, bool) {
	intent := Intent{Kind: IntentBookingDetails}
	found := false

	if email := emailRe.FindString(message); email != "" {
		intent.Email = strings.ToLower(email)
		found = true
	}
	if m := slotRe.FindStringSubmatch(message); m != nil {
		var digits string
		for _, group := range m[1:] {
			if group != "" {
				digits = group
				break
			}
		}
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			intent.SlotNumber = n
			found = true
		}
	}
	if name := extractName(message); name != "" {
		intent.Name = name
		found = true
	}
	if mt := extractMeetingType(message); mt != "" {
		intent.MeetingType = mt
		found = true
	}

	return intent, found
}

func extractName(message string) string {
	if m := namePhraseRe.FindStringSubmatch(message); m != nil {
		return cleanName(m[1])
	}
	if m := nameProperRe.FindStringSubmatch(message); m != nil {
		return cleanName(m[1])
	}
	return ""
}

// cleanName trims the captured run and drops trailing filler words the
// greedy capture tends to swallow.
func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	words := strings.Fields(name)
	for len(words) > 0 {
		switch strings.ToLower(words[len(words)-1]) {
		case "and", "my", "email", "is", "a", "for", "the", "slot":
			words = words[:len(words)-1]
		default:
			return strings.Join(words, " ")
		}
	}
	return ""
}

func extractMeetingType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "project-discussion"), strings.Contains(lower, "project discussion"):
		return "project-discussion"
	case strings.Contains(lower, "collaboration"):
		return "collaboration"
	case strings.Contains(lower, "job-opportunity"), strings.Contains(lower, "job opportunity"):
		return "job-opportunity"
	case strings.Contains(lower, "consultation"):
		return "consultation"
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
