package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/dondo0936/portfolio-assistant/internal/meetings"
	"github.com/dondo0936/portfolio-assistant/internal/schedule"
)

// The wording of these templates doubles as conversation state: the
// extractor looks for "available time slots", "To book a meeting" and
// "I need a few more details" in recent assistant turns. Change with
// care.

func renderSlots(slots []schedule.Slot, loc *time.Location, degraded bool) string {
	if len(slots) == 0 {
		return "I'm sorry, there are no available time slots in the coming days. Please check back later."
	}
	var b strings.Builder
	b.WriteString("Here are the available time slots:\n\n")
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot.Start.In(loc).Format("Monday, Jan 2 at 15:04"))
	}
	b.WriteString("\nTo book a meeting, reply with the slot number, your name and your email. You can also mention a meeting type: consultation, project-discussion, collaboration or job-opportunity.")
	if degraded {
		b.WriteString("\n\nNote: I could not verify the external calendar just now, so a slot may turn out to be taken.")
	}
	return b.String()
}

func renderMissingDetails(state *SessionState) string {
	var missing []string
	if len(state.PresentedSlots) == 0 {
		missing = append(missing, "which slot you would like (ask me for availability first)")
	}
	if state.Name == "" {
		missing = append(missing, "your name")
	}
	if state.Email == "" {
		missing = append(missing, "your email")
	}
	return "I need a few more details to book your meeting: " + strings.Join(missing, ", ") + "."
}

func renderSlotOutOfRange(n, max int) string {
	return fmt.Sprintf("Slot %d is not on the list. Please pick a number between 1 and %d.", n, max)
}

func renderBookingConfirmed(m *meetings.Meeting, loc *time.Location, outcome string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s is booked for %s.\n", m.MeetingType, m.StartTime.In(loc).Format("Monday, Jan 2 at 15:04"))
	fmt.Fprintf(&b, "A confirmation has been sent to %s.", m.UserEmail)
	if m.MeetingLink != "" {
		fmt.Fprintf(&b, "\nMeeting link: %s", m.MeetingLink)
	}
	if outcome == meetings.OutcomeDegradedOk {
		b.WriteString("\nThe calendar invitation could not be created right now; you will still receive the confirmation email.")
	}
	return b.String()
}

func renderSlotTaken() string {
	return "I'm sorry, that slot was just taken. Ask me for availability again and I'll show you what's still open."
}

func renderManagement(action ManagementAction, upcoming []meetings.Meeting, loc *time.Location) string {
	if len(upcoming) == 0 {
		return "I couldn't find any upcoming meetings for you. If you booked with a different email, tell me that address."
	}
	var b strings.Builder
	b.WriteString("Here are your upcoming meetings:\n\n")
	for i, m := range upcoming {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, m.StartTime.In(loc).Format("Monday, Jan 2 at 15:04"), m.MeetingType)
	}
	if action == ActionCancel {
		b.WriteString("\nTo cancel one, please use the link in your confirmation email or tell me the meeting number.")
	} else {
		b.WriteString("\nTo reschedule one, please use the link in your confirmation email or tell me the meeting number and a new time.")
	}
	return b.String()
}

func renderManagementNeedsEmail() string {
	return "I can help with that. What email address did you book with?"
}

func renderModelFailure() string {
	return "I'm sorry, I'm having trouble answering right now. Please try again in a moment."
}

func renderModelRateLimited() string {
	return "I'm getting a lot of questions at the moment. Please try again shortly."
}
