package views

import (
	"strings"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	teams "tourops-console/internal/teams/domain"
)

// AlertCounters are the header counts on the alert board.
type AlertCounters struct {
	Total      int
	Active     int
	Responding int
	Resolved   int
}

// CountAlerts tallies the alert board counters. Investigating alerts
// count toward the total only; the board has no dedicated bucket for them.
func CountAlerts(items []alerts.Alert) AlertCounters {
	c := AlertCounters{Total: len(items)}
	for _, a := range items {
		switch strings.ToLower(a.Status) {
		case alerts.StatusActive:
			c.Active++
		case alerts.StatusResponding:
			c.Responding++
		case alerts.StatusResolved:
			c.Resolved++
		}
	}
	return c
}

// DeskCounters are the operations desk headline figures.
type DeskCounters struct {
	ActiveEmergencies  int
	TeamCount          int
	AvailableTeams     int
	RespondingTeams    int
	AvgResponseMinutes float64
}

// CountDesk derives the desk counters from the current alert and team
// collections. Average response time is the mean of per-team averages
// over teams that report one.
func CountDesk(alertItems []alerts.Alert, teamItems []teams.Team) DeskCounters {
	c := DeskCounters{TeamCount: len(teamItems)}
	for _, a := range alertItems {
		if !a.Resolved() {
			c.ActiveEmergencies++
		}
	}
	var sum float64
	var n int
	for _, t := range teamItems {
		if t.Available() {
			c.AvailableTeams++
		} else {
			c.RespondingTeams++
		}
		if t.AvgResponseTime > 0 {
			sum += t.AvgResponseTime
			n++
		}
	}
	if n > 0 {
		c.AvgResponseMinutes = sum / float64(n)
	}
	return c
}

// LiveEmergencies returns the unresolved Critical and High priority
// alerts in store order, capped at limit. A limit of zero or less means
// no cap.
func LiveEmergencies(items []alerts.Alert, limit int) []alerts.Alert {
	out := make([]alerts.Alert, 0, limit)
	for _, a := range items {
		if a.Resolved() {
			continue
		}
		switch strings.ToLower(a.Priority) {
		case strings.ToLower(alerts.PriorityCritical), strings.ToLower(alerts.PriorityHigh):
			out = append(out, a)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}

// UnreadCount sums pending notification badges across conversations.
func UnreadCount(items []comms.Conversation) int {
	total := 0
	for _, c := range items {
		total += c.NotificationCount
	}
	return total
}

// FindAssignedTeam resolves an alert's assigned-team label against the
// roster. The label is free text, so matching is a case-insensitive
// containment check in either direction rather than an id lookup.
func FindAssignedTeam(roster []teams.Team, assigned string) (teams.Team, bool) {
	needle := strings.ToLower(strings.TrimSpace(assigned))
	if needle == "" {
		return teams.Team{}, false
	}
	for _, t := range roster {
		name := strings.ToLower(t.Name)
		if name == needle || strings.Contains(name, needle) || strings.Contains(needle, name) {
			return t, true
		}
	}
	return teams.Team{}, false
}
