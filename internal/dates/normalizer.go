// Package dates converts free-text historical date strings into partial
// ISO dates (YYYY, YYYY-MM or YYYY-MM-DD).
package dates

import (
	"errors"
	"regexp"
	"strings"
)

var (
	reSpace        = regexp.MustCompile(`\s+`)
	reYear         = regexp.MustCompile(`^\d{4}$`)
	reMonthYear    = regexp.MustCompile(`^m([01][0-9]) (\d{4})$`)
	reDayMonthYear = regexp.MustCompile(`^([0-3]?[0-9]) m([01][0-9]) (\d{4})$`)
)

// Month names are rewritten to a 2-digit token before matching, so that a
// date string splits cleanly on spaces.
var months = map[string]string{
	"January": "m01", "February": "m02", "March": "m03", "April": "m04",
	"May": "m05", "June": "m06", "July": "m07", "August": "m08",
	"September": "m09", "October": "m10", "November": "m11",
	"December": "m12",
}

var errUnparseable = errors.New("date matches no pattern")

type isoDate struct {
	year  string
	month string
	day   string
}

func (d isoDate) join() string {
	if d.month == "" {
		return d.year
	}
	if d.day == "" {
		return d.year + "-" + d.month
	}
	return d.year + "-" + d.month + "-" + d.day
}

// Normalize parses a single date or a two-part "start - end" range. It
// returns empty strings when the input fails every parse pattern; messy
// dates are not an error, the record is simply saved without normalized
// dates. For a range the end date is parsed first (it is more often
// complete) and its year and month serve as substitution defaults for
// components omitted from the start date.
func Normalize(text string) (start, end string) {
	for _, char := range []string{"?", "[", "]"} {
		text = strings.ReplaceAll(text, char, "")
	}
	parts := strings.Split(text, "-")
	switch len(parts) {
	case 1:
		date, err := parseToISO(parts[0], "", "")
		if err != nil {
			return "", ""
		}
		return date.join(), date.join()
	case 2:
		endDate, err := parseToISO(parts[1], "", "")
		if err != nil {
			return "", ""
		}
		startDate, err := parseToISO(parts[0], endDate.year, endDate.month)
		if err != nil {
			return "", ""
		}
		return startDate.join(), endDate.join()
	}
	return "", ""
}

// parseToISO parses one bound. substituteYear and substituteMonth fill in
// components omitted from a partial bound, eg the "27" in
// "27 - 30 March 1822".
func parseToISO(date, substituteYear, substituteMonth string) (isoDate, error) {
	date = strings.TrimSpace(reSpace.ReplaceAllString(date, " "))
	for month, number := range months {
		date = strings.ReplaceAll(date, month, number)
	}
	parts := strings.Split(date, " ")
	switch len(parts) {
	case 1:
		// One part is either "year", "month" (with year supplied), or
		// "day" (with month and year supplied).
		if reYear.MatchString(date) {
			return isoDate{year: date}, nil
		}
		if substituteYear != "" && substituteMonth != "" {
			if m := reDayMonthYear.FindStringSubmatch(date + " m" + substituteMonth + " " + substituteYear); m != nil {
				return isoDate{year: m[3], month: m[2], day: pad(m[1])}, nil
			}
		}
		if substituteYear != "" {
			if m := reMonthYear.FindStringSubmatch(date + " " + substituteYear); m != nil {
				return isoDate{year: m[2], month: m[1]}, nil
			}
		}
	case 2:
		// Two parts are either "month year" or "day month" (with year
		// supplied).
		if m := reMonthYear.FindStringSubmatch(date); m != nil {
			return isoDate{year: m[2], month: m[1]}, nil
		}
		if substituteYear != "" {
			if m := reDayMonthYear.FindStringSubmatch(date + " " + substituteYear); m != nil {
				return isoDate{year: m[3], month: m[2], day: pad(m[1])}, nil
			}
		}
	case 3:
		// Three parts are "day month year".
		if m := reDayMonthYear.FindStringSubmatch(date); m != nil {
			return isoDate{year: m[3], month: m[2], day: pad(m[1])}, nil
		}
	}
	return isoDate{}, errUnparseable
}

func pad(day string) string {
	if len(day) == 1 {
		return "0" + day
	}
	return day
}
