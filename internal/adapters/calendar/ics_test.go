package calendar

import (
	"testing"

	"github.com/rs/zerolog"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:one@test
DTSTAMP:20250630T120000Z
DTSTART:20250701T033000Z
DTEND:20250701T043000Z
SUMMARY:Standup
LOCATION:Office
END:VEVENT
BEGIN:VEVENT
UID:two@test
DTSTAMP:20250630T120000Z
DTSTART:20250701T050000Z
DTEND:20250701T050000Z
SUMMARY:ZeroLength
END:VEVENT
END:VCALENDAR
`

func TestICSParse(t *testing.T) {
	source := NewICSSource("http://example.invalid/cal.ics", 0, zerolog.Nop())
	events, dropped, err := source.parse([]byte(sampleICS))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ожидали 1 событие, получили %d", len(events))
	}
	if dropped != 1 {
		t.Fatalf("событие нулевой длины должно отбрасываться")
	}
	if events[0].Summary != "Standup" || events[0].Location != "Office" {
		t.Fatalf("поля VEVENT должны переноситься: %+v", events[0])
	}
}
