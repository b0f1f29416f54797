package reports

import "strings"

// Report status lifecycle. Reports are created externally as pending and
// move through these values via discrete field updates; cancelled doubles as
// an archival signal (see IsArchived).
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusCancelled  = "cancelled"
	StatusUnresolved = "unresolved"
)

var validStatus = map[string]struct{}{
	StatusPending:    {},
	StatusAssigned:   {},
	StatusInProgress: {},
	StatusResolved:   {},
	StatusCancelled:  {},
	StatusUnresolved: {},
}

func IsValidStatus(s string) bool {
	_, ok := validStatus[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Badge is the display mapping for a status value.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusBadge is total over all inputs; unknown statuses map to a neutral
// badge instead of failing.
func StatusBadge(status string) Badge {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusPending:
		return Badge{Label: "Pending", Color: "amber"}
	case StatusAssigned:
		return Badge{Label: "Assigned", Color: "blue"}
	case StatusInProgress:
		return Badge{Label: "In Progress", Color: "indigo"}
	case StatusResolved:
		return Badge{Label: "Resolved", Color: "green"}
	case StatusCancelled:
		return Badge{Label: "Cancelled", Color: "gray"}
	case StatusUnresolved:
		return Badge{Label: "Unresolved", Color: "red"}
	default:
		return Badge{Label: "Unknown", Color: "slate"}
	}
}
