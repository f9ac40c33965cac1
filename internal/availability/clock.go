package availability

import "fmt"

// ClockToMinutes parses an "HH:mm" 24-hour clock string into minutes
// since midnight. Returns ok=false for anything that is not a
// well-formed clock value.
func ClockToMinutes(clock string) (int, bool) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, false
	}

	h, ok := parseTwoDigits(clock[0], clock[1])
	if !ok || h > 23 {
		return 0, false
	}
	m, ok := parseTwoDigits(clock[3], clock[4])
	if !ok || m > 59 {
		return 0, false
	}

	return h*60 + m, true
}

// MinutesToClock renders minutes since midnight back to "HH:mm".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidDate checks the "YYYY-MM-DD" shape without resolving the
// calendar. Month and day ranges are enforced; day-in-month is not,
// which matches how dates are compared everywhere else (string
// equality, never arithmetic).
func ValidDate(date string) bool {
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if date[i] < '0' || date[i] > '9' {
			return false
		}
	}

	month, _ := parseTwoDigits(date[5], date[6])
	if month < 1 || month > 12 {
		return false
	}
	day, _ := parseTwoDigits(date[8], date[9])
	return day >= 1 && day <= 31
}

// FormatDateTime joins a date and clock for logs and notifications.
func FormatDateTime(date string, clock string) string {
	return date + " " + clock
}

func parseTwoDigits(a byte, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// overlaps reports whether [start1, end1) intersects [start2, end2).
func overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
