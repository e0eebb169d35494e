package semantic

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// Preferred format: IMF-fixdate. Always rendered in GMT.
	imfFixDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
	// RFC 1123. Named zones are rewritten to their offset before parsing.
	rfc1123DateFormat = time.RFC1123Z
	// Obsolete RFC 850 format
	rfc850DateFormat = "Monday, 02-Jan-06 15:04:05 -0700"
	// Obsolete asctime format
	asctimeDateFormat = time.ANSIC
)

// rfc822Zones are the zone names RFC 822 allows besides numeric offsets.
// Military single letter zones other than Z are not accepted.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc822#section-5.1
var rfc822Zones = map[string]string{
	"UT": "+0000", "GMT": "+0000", "Z": "+0000",
	"EST": "-0500", "EDT": "-0400",
	"CST": "-0600", "CDT": "-0500",
	"MST": "-0700", "MDT": "-0600",
	"PST": "-0800", "PDT": "-0700",
}

var ErrDateParse = errors.New("malformed date")

// ParseDate parses an HTTP date into a time.
// IMF-fixdate and RFC 1123 are accepted, as are the obsolete RFC 850 and asctime forms.
// The zone may be numeric or one of the RFC 822 names; asctime dates are read as GMT.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
func ParseDate(raw string) (time.Time, error) {
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseDate keeps the zone written in raw.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(asctimeDateFormat, raw); err == nil {
		return t, nil
	}

	numeric, err := replaceZoneName(raw)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range []string{rfc1123DateFormat, rfc850DateFormat} {
		if t, err := time.Parse(layout, numeric); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Wrapf(ErrDateParse, "invalid time format: %q", raw)
}

// replaceZoneName swaps a trailing zone name for its numeric offset.
// Unknown names are rejected instead of being read as UTC.
func replaceZoneName(raw string) (string, error) {
	idx := strings.LastIndexByte(raw, ' ')
	if idx < 0 {
		return raw, nil
	}

	zone := raw[idx+1:]
	if zone == "" || !isAlpha(zone) {
		return raw, nil
	}

	offset, ok := rfc822Zones[strings.ToUpper(zone)]
	if !ok {
		return "", errors.Wrapf(ErrDateParse, "unknown zone %q", zone)
	}
	return raw[:idx+1] + offset, nil
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// ParseDateEpoch is [ParseDate] expressed as seconds since the Unix epoch.
func ParseDateEpoch(raw string) (int64, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// ParseDateEpochIn reads the wall-clock fields of raw as a time in loc, ignoring the zone
// written in raw, and returns the resulting epoch. This is how mktime(3) based parsers behave
// when the process runs in loc.
func ParseDateEpochIn(raw string, loc *time.Location) (int64, error) {
	t, err := parseDate(raw)
	if err != nil {
		return 0, err
	}

	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	return wall.Unix(), nil
}

// FormatDate renders t as IMF-fixdate, e.g. "Mon, 12 Dec 2011 12:00:00 GMT".
// The output is in GMT whatever location t carries. Sub-second precision is dropped.
func FormatDate(t time.Time) string {
	return t.UTC().Format(imfFixDateFormat)
}

func EpochToTime(epoch int64) time.Time { return time.Unix(epoch, 0).UTC() }

func FormatEpoch(epoch int64) string { return FormatDate(EpochToTime(epoch)) }

type dateKind uint8

const (
	dateKindNone dateKind = iota
	dateKindTime
	dateKindEpoch
	dateKindString
)

// DateInput is the value accepted by date-valued header setters.
// Build it with [DateFromTime], [DateFromEpoch] or [DateFromString]; the zero value is invalid.
type DateInput struct {
	kind  dateKind
	t     time.Time
	epoch int64
	raw   string
}

func DateFromTime(t time.Time) DateInput { return DateInput{kind: dateKindTime, t: t} }

func DateFromEpoch(epoch int64) DateInput { return DateInput{kind: dateKindEpoch, epoch: epoch} }

// DateFromString takes a pre-formatted date. It is parsed and re-rendered before storage.
func DateFromString(raw string) DateInput { return DateInput{kind: dateKindString, raw: raw} }

var ErrInvalidDateInput = errors.New("date input must be a time, an epoch or a date string")

// Format converts the input to its IMF-fixdate form.
func (d DateInput) Format() (string, error) {
	switch d.kind {
	case dateKindTime:
		return FormatDate(d.t), nil
	case dateKindEpoch:
		return FormatEpoch(d.epoch), nil
	case dateKindString:
		t, err := ParseDate(d.raw)
		if err != nil {
			return "", err
		}
		return FormatDate(t), nil
	}
	return "", ErrInvalidDateInput
}
