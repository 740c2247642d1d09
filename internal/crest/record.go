// Package crest parses the historical-crest table published for a gauging
// station into structured records.
package crest

import "time"

// Record is one historical crest: the peak stage reached during a flood
// event and the calendar date it occurred.
type Record struct {
	Rank   int
	Height float64 // feet
	Date   time.Time
}

// Year returns the calendar year of the crest date.
func (r Record) Year() int { return r.Date.Year() }
