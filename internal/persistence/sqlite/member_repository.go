package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/chat-assistant/internal/persistence"
)

// MemberRepository implements persistence.MemberRepository using SQLite.
type MemberRepository struct {
	pool *ConnectionPool
}

// NewMemberRepository creates a new SQLite member repository.
func NewMemberRepository(pool *ConnectionPool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// UpsertMember inserts or replaces a roster entry.
func (r *MemberRepository) UpsertMember(ctx context.Context, member persistence.Member) error {
	if member.ConversationID == "" || member.MemberID == "" {
		return persistence.ErrConstraintViolation
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO conversation_members (conversation_id, member_id, display_name, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id, member_id)
		DO UPDATE SET display_name = excluded.display_name, role = excluded.role
	`, member.ConversationID, member.MemberID,
		nullString(member.DisplayName), nullString(member.Role),
		member.CreatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// GetMember returns one roster entry.
func (r *MemberRepository) GetMember(ctx context.Context, conversationID, memberID string) (persistence.Member, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT conversation_id, member_id, display_name, role, created_at
		FROM conversation_members WHERE conversation_id = ? AND member_id = ?
	`, conversationID, memberID)
	return scanMember(row)
}

// ListMembers returns the conversation roster ordered by member ID.
func (r *MemberRepository) ListMembers(ctx context.Context, conversationID string) ([]persistence.Member, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT conversation_id, member_id, display_name, role, created_at
		FROM conversation_members WHERE conversation_id = ? ORDER BY member_id
	`, conversationID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []persistence.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}

// SetMemberRole updates the role of an existing roster entry.
func (r *MemberRepository) SetMemberRole(ctx context.Context, conversationID, memberID, role string) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE conversation_members SET role = ? WHERE conversation_id = ? AND member_id = ?
	`, role, conversationID, memberID)
	if err != nil {
		return mapError(err)
	}
	return requireRows(result)
}

func scanMember(row rowScanner) (persistence.Member, error) {
	var member persistence.Member
	var displayName, role sql.NullString
	var createdAt string
	err := row.Scan(&member.ConversationID, &member.MemberID, &displayName, &role, &createdAt)
	if err != nil {
		return persistence.Member{}, mapError(err)
	}
	if displayName.Valid {
		member.DisplayName = &displayName.String
	}
	if role.Valid {
		member.Role = &role.String
	}
	member.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return persistence.Member{}, mapError(err)
	}
	return member, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
