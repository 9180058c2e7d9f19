package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

// UI texts in English
const (
	helpText = "👋 I remind this chat and mention everyone.\n\n" +
		"Reminders (admins):\n" +
		"/remind HH:MM text — daily reminder (text may go on the next line)\n" +
		"/reminders — list reminders\n" +
		"/retime ID HH:MM — change time\n" +
		"/enable ID, /disable ID, /delete ID\n" +
		"/all — mention everyone now\n\n" +
		"Profile:\n" +
		"/nick name, /about text, /birthday YYYY-MM-DD\n" +
		"/profile — yours, or reply to someone's message"

	noRightsText     = "❌ No permission."
	internalErrText  = "Something went wrong. Please try again later."
	deliveryErrText  = "Could not deliver the notification."
	pendingSyncText  = "Saved, but the schedule will refresh a bit later."
	notFoundFmt      = "Reminder %d not found."
	noRemindersText  = "No reminders."
	remindUsageText  = "Usage: /remind 19:00 text\nThe text may also go on the next line."
	badClockText     = "Time must be HH:MM, 24-hour (e.g. 07:30 or 19:00)."
	idUsageFmt       = "Usage: /%s 3"
	retimeUsageText  = "Usage: /retime 3 19:00"
	nickUsageText    = "Usage: /nick your_name"
	aboutUsageText   = "Usage: /about a few words about you"
	birthUsageText   = "Usage: /birthday 2005-06-20"
	badBirthText     = "Birthday must be YYYY-MM-DD and not in the future."
	profileEmptyText = "❌ Profile not found."

	createdFmt  = "Reminder created ✔\nID: %d, every day at %s"
	deletedText = "Deleted ✔"
	enabledText = "Enabled ✔"
	disableText = "Disabled ✔"
	retimedFmt  = "Time changed to %s ✔"
	nickSetText = "Nickname updated ✔"
	aboutSetTxt = "Info updated ✔"
	birthSetTxt = "Birthday saved ✔"
)

const dash = "—"

// formatReminderList renders reminders in creation order.
func formatReminderList(rs []domain.Reminder) string {
	if len(rs) == 0 {
		return noRemindersText
	}
	var b strings.Builder
	b.WriteString("Reminders:\n")
	for _, r := range rs {
		state := "on"
		if !r.Enabled {
			state = "off"
		}
		fmt.Fprintf(&b, "\nID %d — %s — %s\n", r.ID, r.Clock(), state)
		if r.Text != "" {
			b.WriteString(r.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatProfile renders a profile card; today is the current date in the
// bot's time zone.
func formatProfile(u *domain.User, today time.Time) string {
	if u == nil {
		return profileEmptyText
	}
	name := u.Nickname
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = dash
	}
	about := u.About
	if about == "" {
		about = dash
	}

	birth, age, left := dash, dash, dash
	if u.Birth != nil {
		birth = domain.FormatDate(*u.Birth)
		age = fmt.Sprint(domain.Age(*u.Birth, today))
		left = fmt.Sprintf("%d days", domain.DaysUntilBirthday(*u.Birth, today))
	}

	return "───────────\n" +
		"    👤 Profile\n" +
		"───────────\n" +
		"Nick: " + name + "\n" +
		"Age: " + age + "\n" +
		"Birthday: " + birth + "\n" +
		"Until birthday: " + left + "\n" +
		"About: " + about + "\n" +
		"───────────"
}
