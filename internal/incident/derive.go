package incident

import (
	"fmt"
	"time"
)

// Business hours used for the business-minute metrics: 08:00-17:00, Monday
// through Friday, in the timestamps' own (unzoned) clock.
const (
	businessOpenHour  = 8
	businessCloseHour = 17
)

// RecomputeDurations derives the three duration metrics from the timestamp
// triple, overwriting whatever the model supplied:
//
//   - Resolve time: wall-clock minutes from Opened to Closed
//   - Business duration: business minutes from Created to Closed
//   - Business resolve time: business minutes from Opened to Closed
//
// All three are zero when the incident has no Closed timestamp. The
// computation is idempotent, so re-running it at export time yields the
// same numbers the generator accepted.
func (in *Incident) RecomputeDurations() error {
	if in.Closed == "" {
		in.ResolveTime = 0
		in.BusinessDuration = 0
		in.BusinessResolveTime = 0
		return nil
	}

	created, err := time.Parse(TimeLayout, in.Created)
	if err != nil {
		return fmt.Errorf("parsing Created: %w", err)
	}
	opened, err := time.Parse(TimeLayout, in.Opened)
	if err != nil {
		return fmt.Errorf("parsing Opened: %w", err)
	}
	closed, err := time.Parse(TimeLayout, in.Closed)
	if err != nil {
		return fmt.Errorf("parsing Closed: %w", err)
	}

	in.ResolveTime = Minutes(wallMinutes(opened, closed))
	in.BusinessDuration = Minutes(businessMinutes(created, closed))
	in.BusinessResolveTime = Minutes(businessMinutes(opened, closed))
	return nil
}

func wallMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// businessMinutes counts the minutes of [start, end] that fall inside
// business hours, walking the interval one calendar day at a time.
func businessMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	total := 0
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for !day.After(end) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dayOpen := day.Add(businessOpenHour * time.Hour)
			dayClose := day.Add(businessCloseHour * time.Hour)

			from := dayOpen
			if start.After(from) {
				from = start
			}
			to := dayClose
			if end.Before(to) {
				to = end
			}
			if to.After(from) {
				total += int(to.Sub(from) / time.Minute)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return total
}
