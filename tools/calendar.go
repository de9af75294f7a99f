package tools

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is one meal occurrence to export
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// CalendarExport holds the rendered ICS document
type CalendarExport struct {
	ICS        string `json:"ics"`
	EventCount int    `json:"event_count"`
}

// CalendarToolset exports meal events to an iCalendar document
type CalendarToolset struct{}

const defaultEventTime = "18:00"

// ExportICS renders a VCALENDAR string for the given events.
// Events missing a title or date are skipped; missing times default
// to 18:00 local.
func (t *CalendarToolset) ExportICS(events []CalendarEvent) CalendarExport {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//EcoFood//MealPlanner//EN",
	}

	now := time.Now().UTC().Format("20060102T150405Z")

	for idx, ev := range events {
		title := strings.TrimSpace(ev.Title)
		date := strings.TrimSpace(ev.Date)
		if title == "" || date == "" {
			continue
		}
		dtstart := formatEventStart(date, ev.Time)
		uid := fmt.Sprintf("ecofood-%d-%s@local", idx+1, dtstart)

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+uid,
			"DTSTAMP:"+now,
			"DTSTART:"+dtstart,
			"SUMMARY:"+title,
		)
		if desc := strings.TrimSpace(ev.Description); desc != "" {
			// ICS requires literal newlines in text values to be escaped
			lines = append(lines, "DESCRIPTION:"+strings.ReplaceAll(desc, "\n", "\\n"))
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")
	return CalendarExport{
		ICS:        strings.Join(lines, "\r\n") + "\r\n",
		EventCount: len(events),
	}
}

func formatEventStart(date, eventTime string) string {
	if eventTime == "" {
		eventTime = defaultEventTime
	}
	parsed, err := time.Parse("2006-01-02 15:04", date+" "+eventTime)
	if err != nil {
		// Fall back to the raw date at the default hour
		parsed, err = time.Parse("2006-01-02 15:04", date+" "+defaultEventTime)
		if err != nil {
			return strings.ReplaceAll(date, "-", "") + "T180000"
		}
	}
	return parsed.Format("20060102T150405")
}
