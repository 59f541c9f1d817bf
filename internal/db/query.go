package db

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Range is a symbolic log period ending now
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// Ranges lists every range in display order
var Ranges = []Range{RangeToday, RangeWeek, RangeMonth, RangeYear, RangeAll}

// ParseRange converts user input to a Range
func ParseRange(s string) (Range, error) {
	for _, r := range Ranges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w %q (want today, week, month, year or all)", ErrUnknownRange, s)
}

// PeriodStart returns the first instant covered by r, in now's location.
// The second result is false for RangeAll, which has no lower bound.
func PeriodStart(now time.Time, r Range) (time.Time, bool) {
	y, m, d := now.Date()
	loc := now.Location()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch r {
	case RangeToday:
		return midnight, true
	case RangeWeek:
		return midnight.AddDate(0, 0, -7), true
	case RangeMonth:
		return floorDate(y, m-1, d, loc), true
	case RangeYear:
		return floorDate(y-1, m, d, loc), true
	}
	return time.Time{}, false
}

// floorDate builds a midnight date, clamping day to the end of the month
// instead of overflowing into the next one (Mar 31 - 1 month = Feb 28/29).
func floorDate(y int, m time.Month, d int, loc *time.Location) time.Time {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
}

// TagFilter selects records by their tag string. With Partial each term must be a
// substring of the tags; otherwise each term must be a whole space separated token.
// All terms must match. Matching is case sensitive.
type TagFilter struct {
	Terms   []string
	Partial bool
}

// NewTagFilter drops empty terms
func NewTagFilter(terms []string, partial bool) TagFilter {
	f := TagFilter{Partial: partial}
	for _, t := range terms {
		if t != "" {
			f.Terms = append(f.Terms, t)
		}
	}
	return f
}

// Empty reports whether the filter has no terms and so matches everything
func (f TagFilter) Empty() bool {
	return len(f.Terms) == 0
}

// Match applies the filter to a tag string in memory, with the same rules as the
// SQL clauses built for it.
func (f TagFilter) Match(tags string) bool {
	for _, t := range f.Terms {
		if f.Partial {
			if !strings.Contains(tags, t) {
				return false
			}
			continue
		}
		if !(tags == t ||
			strings.HasPrefix(tags, t+" ") ||
			strings.Contains(tags, " "+t+" ") ||
			strings.HasSuffix(tags, " "+t)) {
			return false
		}
	}
	return true
}

func (f TagFilter) String() string {
	s := strings.Join(f.Terms, " ")
	if f.Partial {
		s += " (partial)"
	}
	return s
}

const tagsExpr = "COALESCE(tags, '')"

// predicate is an ordered conjunction of SQL clauses with positional arguments
type predicate struct {
	clauses []string
	args    []any
}

func (p *predicate) and(clause string, args ...any) {
	p.clauses = append(p.clauses, clause)
	p.args = append(p.args, args...)
}

func (p *predicate) tags(f TagFilter) {
	for _, t := range f.Terms {
		if f.Partial {
			p.and("instr("+tagsExpr+", ?) > 0", t)
			continue
		}
		n := utf8.RuneCountInString(t) + 1
		p.and("("+tagsExpr+" = ?"+
			" OR substr("+tagsExpr+", 1, ?) = ?"+
			" OR instr("+tagsExpr+", ?) > 0"+
			" OR substr("+tagsExpr+", ?) = ?)",
			t,
			n, t+" ",
			" "+t+" ",
			-n, " "+t,
		)
	}
}

func (p predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.clauses, " AND ")
}

// LogQuery selects records for a log listing
type LogQuery struct {
	Range  Range // empty means all
	Billed *bool // nil means both billed and unbilled
	Tags   TagFilter
}

func (q LogQuery) predicate(now time.Time) (predicate, error) {
	var p predicate

	r := q.Range
	if r == "" {
		r = RangeAll
	}
	if _, err := ParseRange(string(r)); err != nil {
		return p, err
	}

	if start, ok := PeriodStart(now, r); ok {
		p.and("start >= ?", start.Unix())
	}

	if q.Billed != nil {
		if *q.Billed {
			p.and("bill IS NOT NULL")
		} else {
			p.and("bill IS NULL")
		}
	}

	p.tags(q.Tags)
	return p, nil
}

// BillQuery selects records whose bill reference is set or cleared in bulk.
// Exactly one of a date bound (From and/or To) or All must be given.
type BillQuery struct {
	From   *time.Time // start >= From
	To     *time.Time // end <= To
	All    bool
	Tags   TagFilter
	Ref    string // empty means DefaultBillRef
	Unbill bool
}

func (q BillQuery) predicate() (predicate, error) {
	var p predicate

	bounded := q.From != nil || q.To != nil
	switch {
	case !bounded && !q.All:
		return p, ErrNoBillRange
	case bounded && q.All:
		return p, ErrBillRangeConflict
	}

	if q.From != nil {
		p.and("start >= ?", q.From.Unix())
	}
	if q.To != nil {
		p.and(`"end" <= ?`, q.To.Unix())
	}

	p.tags(q.Tags)
	return p, nil
}
