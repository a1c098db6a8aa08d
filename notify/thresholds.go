// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/scaper/cert-tracker/models"
)

// DaysLeft returns whole days until notAfter, negative once expired.
// Division truncates toward zero, so a certificate a few hours past
// expiry needs the explicit floor to report -1 instead of 0.
func DaysLeft(now, notAfter time.Time) int {
	d := notAfter.Sub(now)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// Crossed returns the tightest alert threshold the certificate has crossed.
// Thresholds must be sorted descending (cliparse guarantees this). An expired
// certificate reports models.ThresholdExpired. The second return is false
// when no boundary has been crossed yet.
func Crossed(daysLeft int, thresholds []int) (int, bool) {
	if daysLeft < 0 {
		return models.ThresholdExpired, true
	}

	crossed := -1
	for _, t := range thresholds {
		if daysLeft <= t {
			crossed = t
		}
	}
	if crossed == -1 {
		return 0, false
	}
	return crossed, true
}

// Message builds the human-readable alert text
func Message(domain string, daysLeft int, notAfter time.Time) string {
	if daysLeft < 0 {
		return fmt.Sprintf("certificate for %s expired %s", domain, humanize.Time(notAfter))
	}
	return fmt.Sprintf("certificate for %s expires %s (%d days left)", domain, humanize.Time(notAfter), daysLeft)
}
