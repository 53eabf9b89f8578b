package application

import (
	"context"
	"log/slog"

	"github.com/example/chat-assistant/internal/persistence"
	"github.com/example/chat-assistant/internal/roster"
)

// MemberDirectory captures the persistence interactions needed by the service.
type MemberDirectory interface {
	ListMembers(ctx context.Context, conversationID string) ([]persistence.Member, error)
	GetMember(ctx context.Context, conversationID, memberID string) (persistence.Member, error)
	SetMemberRole(ctx context.Context, conversationID, memberID, role string) error
}

// MemberService manages conversation roster entries. Roles are self-assigned:
// a member may change their own role and nobody else's.
type MemberService struct {
	members    MemberDirectory
	invalidate func(conversationID string)
	logger     *slog.Logger
}

// NewMemberService wires roster dependencies. invalidate, when non-nil, is
// called after a role change so cached rosters are refreshed.
func NewMemberService(members MemberDirectory, invalidate func(conversationID string), logger *slog.Logger) *MemberService {
	return &MemberService{
		members:    members,
		invalidate: invalidate,
		logger:     defaultLogger(logger),
	}
}

// SetRole updates the acting member's own role.
func (s *MemberService) SetRole(ctx context.Context, actingUserID, conversationID, memberID, role string) (RosterMember, error) {
	logger := serviceLogger(ctx, s.logger, "member", "set_role",
		"user_id", actingUserID, "conversation_id", conversationID)

	if actingUserID == "" || actingUserID != memberID {
		return RosterMember{}, ErrUnauthorized
	}
	parsed, ok := roster.ValidRole(role)
	if !ok {
		return RosterMember{}, validationFor("role", &roster.ResolutionError{Phrase: role, Reason: "unknown role"})
	}

	if err := s.members.SetMemberRole(ctx, conversationID, memberID, string(parsed)); err != nil {
		return RosterMember{}, mapStoreError(err)
	}
	if s.invalidate != nil {
		s.invalidate(conversationID)
	}

	record, err := s.members.GetMember(ctx, conversationID, memberID)
	if err != nil {
		return RosterMember{}, mapStoreError(err)
	}
	logger.InfoContext(ctx, "member role updated", "member_id", memberID, "role", parsed)
	return memberView(record), nil
}

// ListMembers returns the conversation roster with degraded entries filled.
func (s *MemberService) ListMembers(ctx context.Context, conversationID string) ([]RosterMember, error) {
	records, err := s.members.ListMembers(ctx, conversationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	members := make([]RosterMember, 0, len(records))
	for _, record := range records {
		members = append(members, memberView(record))
	}
	return members, nil
}

// memberView fills the degraded-mode defaults: missing display names fall
// back to the member ID, missing roles to the default role.
func memberView(record persistence.Member) RosterMember {
	view := RosterMember{
		ID:          record.MemberID,
		DisplayName: record.MemberID,
		Role:        string(roster.DefaultRole),
	}
	if record.DisplayName != nil && *record.DisplayName != "" {
		view.DisplayName = *record.DisplayName
	}
	if record.Role != nil {
		if role, ok := roster.ParseRole(*record.Role); ok {
			view.Role = string(role)
		}
	}
	return view
}
