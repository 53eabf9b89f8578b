package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/chat-assistant/internal/persistence"
)

type stubMemberDirectory struct {
	members map[string]persistence.Member
}

func newStubMemberDirectory(members []persistence.Member) *stubMemberDirectory {
	dir := &stubMemberDirectory{members: make(map[string]persistence.Member)}
	for _, member := range members {
		dir.members[member.ConversationID+"|"+member.MemberID] = member
	}
	return dir
}

func (s *stubMemberDirectory) ListMembers(_ context.Context, conversationID string) ([]persistence.Member, error) {
	var members []persistence.Member
	for _, member := range s.members {
		if member.ConversationID == conversationID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (s *stubMemberDirectory) GetMember(_ context.Context, conversationID, memberID string) (persistence.Member, error) {
	member, ok := s.members[conversationID+"|"+memberID]
	if !ok {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return member, nil
}

func (s *stubMemberDirectory) SetMemberRole(_ context.Context, conversationID, memberID, role string) error {
	key := conversationID + "|" + memberID
	member, ok := s.members[key]
	if !ok {
		return persistence.ErrNotFound
	}
	member.Role = &role
	s.members[key] = member
	return nil
}

func TestSetRoleSelfOnly(t *testing.T) {
	t.Parallel()

	dir := newStubMemberDirectory(fixtureRoster())
	invalidated := ""
	service := NewMemberService(dir, func(conversationID string) { invalidated = conversationID }, nil)
	ctx := context.Background()

	if _, err := service.SetRole(ctx, "user-a", "conv-1", "user-b", "QA"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("changing another member's role must be unauthorized, got %v", err)
	}

	updated, err := service.SetRole(ctx, "user-b", "conv-1", "user-b", "qa")
	if err != nil {
		t.Fatalf("self role change: %v", err)
	}
	if updated.Role != "QA" {
		t.Fatalf("expected QA, got %s", updated.Role)
	}
	if invalidated != "conv-1" {
		t.Fatalf("roster cache not invalidated, got %q", invalidated)
	}
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	service := NewMemberService(newStubMemberDirectory(fixtureRoster()), nil, nil)

	_, err := service.SetRole(context.Background(), "user-b", "conv-1", "user-b", "wizard")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestListMembersFillsDegradedEntries(t *testing.T) {
	t.Parallel()

	dir := newStubMemberDirectory([]persistence.Member{
		{ConversationID: "conv-1", MemberID: "user-a", DisplayName: ptr("User A"), Role: ptr("PM")},
		{ConversationID: "conv-1", MemberID: "user-x"},
	})
	service := NewMemberService(dir, nil, nil)

	members, err := service.ListMembers(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, member := range members {
		if member.ID != "user-x" {
			continue
		}
		if member.DisplayName != "user-x" || member.Role != "Friend" {
			t.Fatalf("degraded member not filled: %+v", member)
		}
	}
}
