// Package command performs the purely syntactic parse of a scheduling
// utterance. It extracts participant phrases, the date/time phrase, the
// duration phrase, and an optional title, without resolving any identifiers.
package command

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotScheduleCommand is returned when an utterance is not shaped like a
// scheduling request. Callers use it as a cheap negative before invoking
// the heavier pipeline.
var ErrNotScheduleCommand = errors.New("command: not a scheduling request")

// ParseError reports a scheduling-shaped utterance that could not be broken
// into its sub-phrases.
type ParseError struct {
	RawText string
	Reason  string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("command: cannot parse %q: %s", e.RawText, e.Reason)
}

// Command is the unvalidated syntactic form of a scheduling utterance.
type Command struct {
	RawText            string
	ParticipantPhrases []string
	// Everyone is set when the participant span named the whole conversation
	// ("everyone", "all") rather than individual people or roles.
	Everyone       bool
	DateTimePhrase string
	DurationPhrase string
	Title          string
}

var schedulingVerbs = []string{"schedule", "set up", "setup", "book"}

// stopWords terminate the participant span. Matching is whole-word only; a
// per-character exclusion would misclassify ordinary names such as "Forrest".
var stopWords = map[string]struct{}{
	"for": {},
	"at":  {},
	"on":  {},
}

// skipWords are filler tokens that never name a participant.
var skipWords = map[string]struct{}{
	"everyone":  {},
	"all":       {},
	"the":       {},
	"this":      {},
	"user":      {},
	"person":    {},
	"earliest":  {},
	"available": {},
}

var collectiveWords = map[string]struct{}{
	"everyone":  {},
	"all":       {},
	"everybody": {},
}

var (
	temporalWordPattern = regexp.MustCompile(`\b(today|tomorrow|tonight|sunday|monday|tuesday|wednesday|thursday|friday|saturday|earliest)\b`)
	temporalTimePattern = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\bat\s+\d{1,2}\b|\b\d{1,2}/\d{1,2}\b|\b\d{4}-\d{2}-\d{2}\b`)
	durationPhrasePat   = regexp.MustCompile(`\b(?:for\s+)?(\d+(?:\.\d+)?\s*(?:minutes?|mins?|min|hours?|hrs?|hr)|an hour|half an hour)\b`)
	quotedTitlePattern  = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	aboutTitlePattern   = regexp.MustCompile(`\babout\s+(.+?)(?:\s+with\b|\s+for\b|\s+at\b|\s+on\b|$)`)
)

// Parse breaks a raw utterance into a Command. Utterances without both a
// scheduling verb and a temporal marker fail fast with ErrNotScheduleCommand.
func Parse(rawText string) (Command, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Command{}, ErrNotScheduleCommand
	}
	lower := strings.ToLower(text)

	if !hasSchedulingVerb(lower) || !hasTemporalMarker(lower) {
		return Command{}, ErrNotScheduleCommand
	}

	cmd := Command{RawText: rawText}

	span, rest := participantSpan(lower)
	phrases, everyone := splitParticipantSpan(span)
	cmd.ParticipantPhrases = phrases
	cmd.Everyone = everyone
	if span != "" && len(phrases) == 0 && !everyone {
		return Command{}, &ParseError{RawText: rawText, Reason: "participant phrases missing after \"with\""}
	}

	if m := durationPhrasePat.FindString(lower); m != "" {
		cmd.DurationPhrase = strings.TrimSpace(strings.TrimPrefix(m, "for "))
	}

	cmd.DateTimePhrase = dateTimePhrase(rest, cmd.DurationPhrase)
	if cmd.DateTimePhrase == "" {
		return Command{}, &ParseError{RawText: rawText, Reason: "no date/time phrase found"}
	}

	cmd.Title = explicitTitle(text)

	return cmd, nil
}

func hasSchedulingVerb(lower string) bool {
	for _, verb := range schedulingVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func hasTemporalMarker(lower string) bool {
	return temporalWordPattern.MatchString(lower) || temporalTimePattern.MatchString(lower)
}

// participantSpan returns the span of tokens following "with" up to the
// first whole-word stop-word, plus the remainder of the utterance after the
// span. The scan works on whole tokens so a stop-word occurring inside a
// name never terminates the span.
func participantSpan(lower string) (span string, rest string) {
	tokens := strings.Fields(lower)
	withIdx := -1
	for i, token := range tokens {
		if trimToken(token) == "with" {
			withIdx = i
			break
		}
	}
	if withIdx == -1 {
		return "", lower
	}

	end := len(tokens)
	for i := withIdx + 1; i < len(tokens); i++ {
		if _, stop := stopWords[trimToken(tokens[i])]; stop {
			end = i
			break
		}
	}

	span = strings.Join(tokens[withIdx+1:end], " ")
	restTokens := append(append([]string{}, tokens[:withIdx]...), tokens[end:]...)
	rest = strings.Join(restTokens, " ")
	return span, rest
}

// splitParticipantSpan tokenizes the captured span on "," and "and" into
// individual phrases, trims them, and filters filler words. When the
// skip-list consumes the whole span the utterance addressed the collective.
func splitParticipantSpan(span string) ([]string, bool) {
	if strings.TrimSpace(span) == "" {
		return nil, false
	}

	separated := strings.ReplaceAll(span, ",", " , ")
	tokens := strings.Fields(separated)

	var phrases []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		phrases = append(phrases, strings.Join(current, " "))
		current = current[:0]
	}
	for _, token := range tokens {
		trimmed := trimToken(token)
		if trimmed == "," || trimmed == "and" {
			flush()
			continue
		}
		if trimmed == "" {
			continue
		}
		current = append(current, trimmed)
	}
	flush()

	everyone := false
	var kept []string
	for _, phrase := range phrases {
		filtered, collective := filterPhrase(phrase)
		if collective {
			everyone = true
		}
		if filtered != "" {
			kept = append(kept, filtered)
		}
	}
	return kept, everyone
}

// filterPhrase drops skip-list tokens from a phrase. It reports whether the
// phrase named the collective and the entire phrase was consumed by fillers.
func filterPhrase(phrase string) (string, bool) {
	tokens := strings.Fields(phrase)
	var kept []string
	collective := false
	for _, token := range tokens {
		if _, ok := collectiveWords[token]; ok {
			collective = true
		}
		if _, ok := skipWords[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) == 0 {
		return "", collective
	}
	return strings.Join(kept, " "), false
}

// dateTimePhrase extracts the temporal tail of the utterance: everything
// from the first "for"/"on" stop-word onward, minus any duration phrase.
func dateTimePhrase(rest, durationPhrase string) string {
	if durationPhrase != "" {
		rest = strings.ReplaceAll(rest, "for "+durationPhrase, " ")
		rest = strings.ReplaceAll(rest, durationPhrase, " ")
	}

	tokens := strings.Fields(rest)
	for i, token := range tokens {
		trimmed := trimToken(token)
		if trimmed == "for" || trimmed == "on" {
			if phrase := strings.Join(tokens[i+1:], " "); strings.TrimSpace(phrase) != "" {
				return strings.TrimSpace(phrase)
			}
			continue
		}
		if trimmed == "at" || temporalWordPattern.MatchString(trimmed) || temporalTimePattern.MatchString(trimmed) {
			return strings.TrimSpace(strings.Join(tokens[i:], " "))
		}
	}
	return ""
}

// explicitTitle extracts a quoted or "about ..." title when present. A
// missing title is derived later from the resolved participants.
func explicitTitle(text string) string {
	if m := quotedTitlePattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}
	if m := aboutTitlePattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func trimToken(token string) string {
	return strings.Trim(token, ",.!?;:")
}
