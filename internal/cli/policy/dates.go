package policy

import (
	"fmt"
	"time"
)

// LoanPeriodDays is the lending window in calendar days.
const LoanPeriodDays = 14

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DueDate computes the calendar due date for a loan. The math runs on
// stripped dates so daylight-saving shifts cannot move the boundary.
func DueDate(borrowedAt time.Time) time.Time {
	return dateOnly(borrowedAt).AddDate(0, 0, LoanPeriodDays)
}

// IsOverdue reports whether the loan is past due as of now: true only when
// now's calendar date is strictly after the due date.
func IsOverdue(borrowedAt, now time.Time) bool {
	return dateOnly(now).After(DueDate(borrowedAt))
}

// ParseBorrowDate accepts the borrow_date formats the backend is known to
// emit.
func ParseBorrowDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized borrow date %q", s)
}

// FormatRelative renders a borrow timestamp the way the listing shows it:
// "Today", "Yesterday", days or weeks ago, then a plain date.
func FormatRelative(t, now time.Time) string {
	days := int(dateOnly(now).Sub(dateOnly(t)).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
	return t.Format("2006/01/02")
}
