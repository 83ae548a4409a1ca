package ledger

import (
	"time"
)

// Occurrence is a recurring transaction together with its next due date.
type Occurrence struct {
	Transaction *Transaction
	NextDue     time.Time
}

// RecurringDue identifies non-deleted recurring transactions and projects
// each one's next due date: the smallest date + k*period that is on or after
// today. The projection is closed-form integer-day arithmetic, so an entry
// whose original date is years in the past costs the same as a fresh one.
func (s *Service) RecurringDue() []Occurrence {
	today := truncateToDay(s.now())

	var out []Occurrence

	for _, t := range s.active() {
		if !t.Recurring() || t.Date == nil {
			continue
		}

		next := nextOccurrence(truncateToDay(*t.Date), t.RecurringPeriod, today)
		out = append(out, Occurrence{Transaction: t.clone(), NextDue: next})
	}

	return out
}

// nextOccurrence advances start in period-day steps to the first date >= today.
func nextOccurrence(start time.Time, period int, today time.Time) time.Time {
	if !start.Before(today) {
		return start
	}

	elapsed := int(today.Sub(start).Hours() / 24)
	steps := (elapsed + period - 1) / period

	return start.AddDate(0, 0, steps*period)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
