package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_RejectsNonScheduleText(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"hello there",
		"what time is the standup?",
		"schedule",                      // verb without temporal marker
		"see you tomorrow at 3pm",       // temporal marker without verb
		"let's grab lunch on friday",    // no scheduling verb
	}

	for _, text := range cases {
		if _, err := Parse(text); !errors.Is(err, ErrNotScheduleCommand) {
			t.Fatalf("Parse(%q) = %v, want ErrNotScheduleCommand", text, err)
		}
	}
}

func TestParse_ParticipantExtraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		text         string
		wantPhrases  []string
		wantEveryone bool
	}{
		{
			name:        "two names joined by and",
			text:        "schedule a meeting with Alice and Bob for tomorrow at 3pm",
			wantPhrases: []string{"alice", "bob"},
		},
		{
			name:        "comma separated names",
			text:        "schedule a meeting with Alice, Bob, Carol for tomorrow at 3pm",
			wantPhrases: []string{"alice", "bob", "carol"},
		},
		{
			name: "names containing stop-word letters",
			// "Forrest" starts with "for" and "Aaron" contains "on"; the
			// span must only terminate on whole stop-word tokens.
			text:        "schedule a meeting with Aaron and Forrest for tomorrow at 3pm",
			wantPhrases: []string{"aaron", "forrest"},
		},
		{
			name:         "everyone collective",
			text:         "schedule a meeting with everyone for tomorrow at 3pm",
			wantPhrases:  nil,
			wantEveryone: true,
		},
		{
			name:        "role collective keeps the role word",
			text:        "schedule a meeting with all designers for wednesday at 2pm",
			wantPhrases: []string{"designers"},
		},
		{
			name:        "skip words dropped inside a phrase",
			text:        "schedule a meeting with the designers for wednesday at 2pm",
			wantPhrases: []string{"designers"},
		},
		{
			name:        "display name with filler token",
			text:        "schedule a meeting with User B for Sunday at 3pm",
			wantPhrases: []string{"b"},
		},
		{
			name:        "no with clause",
			text:        "schedule a meeting for tomorrow at 3pm",
			wantPhrases: nil,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.text, err)
			}
			if !reflect.DeepEqual(cmd.ParticipantPhrases, tc.wantPhrases) {
				t.Fatalf("participant phrases = %v, want %v", cmd.ParticipantPhrases, tc.wantPhrases)
			}
			if cmd.Everyone != tc.wantEveryone {
				t.Fatalf("everyone = %v, want %v", cmd.Everyone, tc.wantEveryone)
			}
		})
	}
}

func TestParse_DateTimeAndDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		text         string
		wantDateTime string
		wantDuration string
	}{
		{
			name:         "for marker",
			text:         "schedule a meeting with Alice for tomorrow at 3pm",
			wantDateTime: "tomorrow at 3pm",
		},
		{
			name:         "at marker with weekday",
			text:         "set up a meeting with the designers at 2pm on friday",
			wantDateTime: "at 2pm on friday",
		},
		{
			name:         "explicit duration removed from the datetime phrase",
			text:         "schedule a meeting with Alice for tomorrow at 3pm for 30 minutes",
			wantDateTime: "tomorrow at 3pm",
			wantDuration: "30 minutes",
		},
		{
			name:         "earliest available",
			text:         "book a meeting with Bob for earliest available starting at 9",
			wantDateTime: "earliest available starting at 9",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.text, err)
			}
			if cmd.DateTimePhrase != tc.wantDateTime {
				t.Fatalf("datetime phrase = %q, want %q", cmd.DateTimePhrase, tc.wantDateTime)
			}
			if cmd.DurationPhrase != tc.wantDuration {
				t.Fatalf("duration phrase = %q, want %q", cmd.DurationPhrase, tc.wantDuration)
			}
		})
	}
}

func TestParse_Title(t *testing.T) {
	t.Parallel()

	t.Run("quoted title", func(t *testing.T) {
		t.Parallel()
		cmd, err := Parse(`schedule a meeting "Sprint Review" with Alice for tomorrow at 3pm`)
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if cmd.Title != "Sprint Review" {
			t.Fatalf("title = %q, want %q", cmd.Title, "Sprint Review")
		}
	})

	t.Run("about title", func(t *testing.T) {
		t.Parallel()
		cmd, err := Parse("schedule a meeting about the roadmap with Alice for tomorrow at 3pm")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if cmd.Title != "the roadmap" {
			t.Fatalf("title = %q, want %q", cmd.Title, "the roadmap")
		}
	})

	t.Run("missing title stays empty for later derivation", func(t *testing.T) {
		t.Parallel()
		cmd, err := Parse("schedule a meeting with Alice for tomorrow at 3pm")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if cmd.Title != "" {
			t.Fatalf("title = %q, want empty", cmd.Title)
		}
	})
}
