package model

// Role identifies the function of a panel member.
type Role int

const (
	RoleSupervisor Role = iota
	RoleExaminer
)

// String returns a human-readable representation of the role.
func (r Role) String() string {
	switch r {
	case RoleSupervisor:
		return "Supervisor"
	case RoleExaminer:
		return "Examiner"
	default:
		return "unknown"
	}
}

// PanelMember binds an examiner code to its role on a panel.
type PanelMember struct {
	Code string
	Role Role
}

// Panel is the full set of supervisors and examiners committed to one
// request or capstone group. Immutable once committed.
type Panel struct {
	Members []PanelMember
}

// Codes returns the codes of all panel members.
func (p Panel) Codes() []string {
	codes := make([]string, len(p.Members))
	for i, m := range p.Members {
		codes[i] = m.Code
	}
	return codes
}

// Examiners returns the codes of members holding the examiner role.
func (p Panel) Examiners() []string {
	var codes []string
	for _, m := range p.Members {
		if m.Role == RoleExaminer {
			codes = append(codes, m.Code)
		}
	}
	return codes
}
