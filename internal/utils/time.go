package utils

import "time"

// Tomorrow returns the next calendar day at midnight, the default scheduled
// date for deliveries created from a checkout.
func Tomorrow() time.Time {
	return Midnight(time.Now().AddDate(0, 0, 1))
}

// Midnight truncates a timestamp to its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
