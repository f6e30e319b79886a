package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	PeriodAll          Period = "all"
	PeriodDay          Period = "day"
	PeriodWeek         Period = "week"
	PeriodMonth        Period = "month"
	PeriodYear         Period = "year"
	PeriodPreviousYear Period = "previous-year"
)

// Period is the time-range filter applied to the list and its totals.
type Period string

var ErrInvalidPeriod = errors.New("invalid period")

// Periods returns every period in display order.
func Periods() []Period {
	return []Period{PeriodAll, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodPreviousYear}
}

// ParsePeriod maps a period name to a Period. An empty string selects all.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PeriodAll, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

func (p Period) IsValid() bool {
	switch p {
	case PeriodAll, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodPreviousYear:
		return true
	default:
		return false
	}
}

func (p Period) String() string {
	return string(p)
}

// WeekStart returns the most recent Sunday on or before today.
func WeekStart(today Date) Date {
	return Date{Time: today.AddDate(0, 0, -int(today.Weekday()))}
}

// Includes reports whether d falls inside the period relative to today.
// Unknown periods filter nothing, like PeriodAll.
func (p Period) Includes(d, today Date) bool {
	switch p {
	case PeriodDay:
		return d.Equal(today.Time)
	case PeriodWeek:
		return !d.Before(WeekStart(today).Time)
	case PeriodMonth:
		return d.Month() == today.Month() && d.Year() == today.Year()
	case PeriodYear:
		return d.Year() == today.Year()
	case PeriodPreviousYear:
		return d.Year() < today.Year()
	default:
		return true
	}
}
