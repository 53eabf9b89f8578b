// Package roster models conversation membership and resolves free-text
// participant references against it.
package roster

import "strings"

// Role is a self-assigned label on a conversation member, used for
// collective participant matching. Only the owning member may change it.
type Role string

const (
	RoleFriend      Role = "Friend"
	RolePM          Role = "PM"
	RoleSE          Role = "SE"
	RoleQA          Role = "QA"
	RoleDesign      Role = "Design"
	RoleStakeholder Role = "Stakeholder"
)

// DefaultRole is synthesized for members observed without an explicit role.
const DefaultRole = RoleFriend

// Member is one participant of a conversation.
type Member struct {
	ID          string
	DisplayName string
	Role        Role
}

// roleAliases is the static natural-language synonym table for each role.
var roleAliases = map[Role][]string{
	RoleFriend:      {"friend", "friends"},
	RolePM:          {"pm", "pms", "product manager", "product managers", "project manager", "project managers"},
	RoleSE:          {"se", "engineer", "engineers", "developer", "developers", "dev", "devs"},
	RoleQA:          {"qa", "tester", "testers", "quality"},
	RoleDesign:      {"design", "designer", "designers"},
	RoleStakeholder: {"stakeholder", "stakeholders"},
}

// ParseRole maps a natural-language role reference to its canonical role.
func ParseRole(text string) (Role, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return "", false
	}
	for role, aliases := range roleAliases {
		if strings.EqualFold(needle, string(role)) {
			return role, true
		}
		for _, alias := range aliases {
			if needle == alias {
				return role, true
			}
		}
	}
	return "", false
}

// ValidRole reports whether text names a canonical role exactly.
func ValidRole(text string) (Role, bool) {
	for _, role := range []Role{RoleFriend, RolePM, RoleSE, RoleQA, RoleDesign, RoleStakeholder} {
		if strings.EqualFold(strings.TrimSpace(text), string(role)) {
			return role, true
		}
	}
	return "", false
}
