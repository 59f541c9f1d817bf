package models

import (
	"strings"
	"time"
)

// WorkRecord is one tracked interval of work
type WorkRecord struct {
	ID      int64
	Tags    string     // space separated, empty means no tags
	Start   time.Time
	End     *time.Time // nil while tracking
	Bill    *string    // nil when unbilled, otherwise the bill reference
	Amended bool
}

// Open reports whether the record is still being tracked
func (r WorkRecord) Open() bool {
	return r.End == nil
}

// Billed reports whether the record carries a bill reference
func (r WorkRecord) Billed() bool {
	return r.Bill != nil
}

// Duration returns the length of the interval. Open records are measured up to now.
func (r WorkRecord) Duration(now time.Time) time.Duration {
	if r.End == nil {
		return now.Sub(r.Start)
	}
	return r.End.Sub(r.Start)
}

// TagList splits the tag string into its tokens
func (r WorkRecord) TagList() []string {
	return strings.Fields(r.Tags)
}

// Which names an amendable timestamp of a record
type Which string

const (
	WhichStart Which = "start"
	WhichEnd   Which = "end"
)

// JoinTags builds the stored tag string from individual tags
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}

// Log is an ordered listing of records read at a single instant
type Log struct {
	At      time.Time
	Records []WorkRecord
}

// Total sums the durations of all records, measuring open ones up to At
func (l Log) Total() time.Duration {
	var total time.Duration
	for _, r := range l.Records {
		total += r.Duration(l.At)
	}
	return total
}

// Tracking reports whether the listing contains the open record
func (l Log) Tracking() bool {
	for _, r := range l.Records {
		if r.Open() {
			return true
		}
	}
	return false
}
