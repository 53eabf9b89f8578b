package roster

import (
	"errors"
	"reflect"
	"testing"
)

func fixtureMembers() []Member {
	return []Member{
		{ID: "u-alice", DisplayName: "Alice Tanaka", Role: RoleDesign},
		{ID: "u-bob", DisplayName: "User B", Role: RoleSE},
		{ID: "u-carol", DisplayName: "Carol", Role: RoleDesign},
		{ID: "u-dan", DisplayName: "Dan Suzuki", Role: RolePM},
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want Role
		ok   bool
	}{
		{"pm", RolePM, true},
		{"product manager", RolePM, true},
		{"Designers", RoleDesign, true},
		{"design", RoleDesign, true},
		{"engineers", RoleSE, true},
		{"testers", RoleQA, true},
		{"stakeholders", RoleStakeholder, true},
		{"friend", RoleFriend, true},
		{"alice", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		role, ok := ParseRole(tc.text)
		if ok != tc.ok || role != tc.want {
			t.Fatalf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.text, role, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveParticipants(t *testing.T) {
	t.Parallel()

	t.Run("everyone yields the whole roster", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants(nil, true, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-alice", "u-bob", "u-carol", "u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("role phrase yields exactly the role holders", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants([]string{"designers"}, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-alice", "u-carol", "u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("exact display name", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants([]string{"carol"}, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-carol", "u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("prefix match", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants([]string{"alice"}, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-alice", "u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("token subset match survives filler stripping", func(t *testing.T) {
		t.Parallel()
		// "User B" arrives as the phrase "b" after the command parser drops
		// the filler token "user".
		ids, err := ResolveParticipants([]string{"b"}, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-bob", "u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("organizer is deduplicated", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants([]string{"dan suzuki"}, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"u-dan"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	})

	t.Run("ambiguous phrase is an error, never a guess", func(t *testing.T) {
		t.Parallel()
		members := append(fixtureMembers(), Member{ID: "u-alice2", DisplayName: "Alice Watanabe", Role: RoleQA})
		_, err := ResolveParticipants([]string{"alice"}, false, members, "u-dan")
		var resErr *ResolutionError
		if !errors.As(err, &resErr) {
			t.Fatalf("expected ResolutionError, got %v", err)
		}
		if resErr.Phrase != "alice" {
			t.Fatalf("error should name the phrase, got %q", resErr.Phrase)
		}
	})

	t.Run("unknown phrase names the phrase", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveParticipants([]string{"zoe"}, false, fixtureMembers(), "u-dan")
		var resErr *ResolutionError
		if !errors.As(err, &resErr) {
			t.Fatalf("expected ResolutionError, got %v", err)
		}
		if resErr.Phrase != "zoe" {
			t.Fatalf("error should name the phrase, got %q", resErr.Phrase)
		}
	})

	t.Run("organizer alone when nothing is named", func(t *testing.T) {
		t.Parallel()
		ids, err := ResolveParticipants(nil, false, fixtureMembers(), "u-dan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(ids, []string{"u-dan"}) {
			t.Fatalf("ids = %v, want organizer only", ids)
		}
	})
}
