// Package timeparse converts natural-language date, time, and duration
// phrases into absolute instants. It never guesses: a phrase either parses
// deterministically or fails with a typed error the caller can surface.
package timeparse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDurationMinutes is applied when an utterance carries no duration phrase.
const DefaultDurationMinutes = 60

// DefaultHorizon bounds how far in the future a resolved instant may lie.
const DefaultHorizon = 365 * 24 * time.Hour

// Resolved is the outcome of parsing a date/time phrase. Exactly one of
// Instant and EarliestAvailable is set on success.
type Resolved struct {
	Instant           time.Time
	DurationMinutes   int
	EarliestAvailable bool
	// EarliestFrom is the lower bound for the availability search when
	// EarliestAvailable is set. Concrete slot selection is a separate step.
	EarliestFrom time.Time
	RawPhrase    string
}

// ParseError reports a date/time phrase that could not be interpreted.
type ParseError struct {
	Phrase string
	Reason string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("timeparse: cannot interpret %q", e.Phrase)
	}
	return fmt.Sprintf("timeparse: cannot interpret %q: %s", e.Phrase, e.Reason)
}

// UnreasonableDateError reports a parsed instant outside the allowed window.
type UnreasonableDateError struct {
	Instant time.Time
	Reason  string
}

func (e *UnreasonableDateError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("timeparse: %s is unreasonable: %s", e.Instant.Format(time.RFC3339), e.Reason)
}

// Resolver parses phrases relative to an injected clock and horizon.
type Resolver struct {
	now             func() time.Time
	horizon         time.Duration
	defaultDuration int
}

// NewResolver wires the clock and scheduling horizon for phrase resolution.
func NewResolver(now func() time.Time, horizon time.Duration) *Resolver {
	return NewResolverWithDefault(now, horizon, DefaultDurationMinutes)
}

// NewResolverWithDefault additionally overrides the duration applied when an
// utterance carries no duration phrase.
func NewResolverWithDefault(now func() time.Time, horizon time.Duration, defaultDurationMinutes int) *Resolver {
	if now == nil {
		now = time.Now
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = DefaultDurationMinutes
	}
	return &Resolver{now: now, horizon: horizon, defaultDuration: defaultDurationMinutes}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	timeAtPattern    = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	timeMeridiemPat  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	timeClockPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	durationPattern  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(minutes?|mins?|min|hours?|hrs?|hr)\b`)
)

// Resolve parses a date/time phrase into an absolute instant or an
// earliest-available policy. Duration phrases embedded in the same text are
// honored; absent a duration the resolver's configured default applies.
func (r *Resolver) Resolve(phrase string) (Resolved, error) {
	raw := phrase
	text := normalize(phrase)
	if text == "" {
		return Resolved{}, &ParseError{Phrase: raw, Reason: "empty phrase"}
	}

	resolved := Resolved{RawPhrase: raw, DurationMinutes: r.defaultDuration}
	if minutes, ok := ParseDuration(text); ok {
		resolved.DurationMinutes = minutes
	}

	now := r.now()

	if strings.Contains(text, "earliest") {
		resolved.EarliestAvailable = true
		resolved.EarliestFrom = now
		if hour, minute, ok := timeOfDay(text); ok {
			from := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !from.After(now) {
				from = from.AddDate(0, 0, 1)
			}
			resolved.EarliestFrom = from
		}
		return resolved, nil
	}

	hour, minute, ok := timeOfDay(text)
	if !ok {
		return Resolved{}, &ParseError{Phrase: raw, Reason: "no recognizable time of day"}
	}

	day, err := r.resolveDay(raw, text, now, hour, minute)
	if err != nil {
		return Resolved{}, err
	}

	instant := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if !instant.After(now) {
		return Resolved{}, &UnreasonableDateError{Instant: instant, Reason: "in the past"}
	}
	if instant.After(now.Add(r.horizon)) {
		return Resolved{}, &UnreasonableDateError{Instant: instant, Reason: "beyond the scheduling horizon"}
	}

	resolved.Instant = instant
	return resolved, nil
}

// resolveDay picks the calendar day named by the phrase. Relative weekday
// terms resolve to the next future occurrence; the same day qualifies only
// when the requested time of day has not yet passed.
func (r *Resolver) resolveDay(raw, text string, now time.Time, hour, minute int) (time.Time, error) {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		dom, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || dom < 1 || dom > 31 {
			return time.Time{}, &ParseError{Phrase: raw, Reason: "invalid calendar date"}
		}
		return time.Date(year, time.Month(month), dom, 0, 0, 0, 0, now.Location()), nil
	}

	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		dom, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || dom < 1 || dom > 31 {
			return time.Time{}, &ParseError{Phrase: raw, Reason: "invalid calendar date"}
		}
		return time.Date(now.Year(), time.Month(month), dom, 0, 0, 0, 0, now.Location()), nil
	}

	if strings.Contains(text, "tomorrow") {
		return now.AddDate(0, 0, 1), nil
	}
	if strings.Contains(text, "today") {
		return now, nil
	}

	for _, token := range strings.Fields(text) {
		weekday, ok := weekdays[strings.Trim(token, ",.")]
		if !ok {
			continue
		}
		days := int(weekday-now.Weekday()+7) % 7
		if days == 0 {
			sameDay := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !sameDay.After(now) {
				days = 7
			}
		}
		return now.AddDate(0, 0, days), nil
	}

	// A bare time of day refers to the nearest matching instant: today if
	// still ahead, otherwise tomorrow.
	sameDay := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if sameDay.After(now) {
		return now, nil
	}
	return now.AddDate(0, 0, 1), nil
}

// ParseDuration extracts a duration phrase such as "30 minutes" or "1.5
// hours" and reports the length in minutes. It returns false when the text
// carries no duration.
func ParseDuration(phrase string) (int, bool) {
	text := normalize(phrase)
	if text == "" {
		return 0, false
	}
	if strings.Contains(text, "half an hour") || strings.Contains(text, "half hour") {
		return 30, true
	}
	if strings.Contains(text, "an hour") {
		return 60, true
	}

	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	if strings.HasPrefix(m[2], "h") {
		amount *= 60
	}
	minutes := int(math.Round(amount))
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

func timeOfDay(text string) (int, int, bool) {
	if m := timeAtPattern.FindStringSubmatch(text); m != nil {
		return clockFromMatch(m[1], m[2], m[3])
	}
	if m := timeMeridiemPat.FindStringSubmatch(text); m != nil {
		return clockFromMatch(m[1], m[2], m[3])
	}
	if m := timeClockPattern.FindStringSubmatch(text); m != nil {
		return clockFromMatch(m[1], m[2], "")
	}
	return 0, 0, false
}

func clockFromMatch(hourStr, minuteStr, meridiem string) (int, int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil {
			return 0, 0, false
		}
	}

	switch meridiem {
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	if minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
