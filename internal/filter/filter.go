package filter

import (
	"strings"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	teams "tourops-console/internal/teams/domain"
)

// All is the identity value for a criteria dimension.
const All = "all"

// Criteria is the active filter state of one screen. Dimensions compose
// by logical AND; "all" (or empty) disables a dimension.
type Criteria struct {
	Status   string
	Priority string
	Search   string
}

// Identity reports whether the criteria select everything.
func (c Criteria) Identity() bool {
	return identityValue(c.Status) && identityValue(c.Priority) && c.Search == ""
}

func identityValue(value string) bool {
	return value == "" || strings.EqualFold(value, All)
}

// Fields tells Visible how to read one entity kind. Search fields are
// matched by case-insensitive substring containment.
type Fields[T any] struct {
	Status   func(T) string
	Priority func(T) string
	Search   []func(T) string
}

// Visible returns the entities satisfying every active criterion, in the
// same relative order as the input. It is pure and recomputed in full on
// every store change or criteria change; no incremental maintenance.
func Visible[T any](items []T, c Criteria, f Fields[T]) []T {
	if c.Identity() {
		return append([]T(nil), items...)
	}

	search := strings.ToLower(strings.TrimSpace(c.Search))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if !identityValue(c.Status) {
			if f.Status == nil || !strings.EqualFold(f.Status(item), c.Status) {
				continue
			}
		}
		if !identityValue(c.Priority) {
			if f.Priority == nil || !strings.EqualFold(f.Priority(item), c.Priority) {
				continue
			}
		}
		if search != "" && !matchSearch(item, search, f.Search) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func matchSearch[T any](item T, search string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), search) {
			return true
		}
	}
	return false
}

// AlertFields reads alerts: search covers tourist name, location and id.
func AlertFields() Fields[alerts.Alert] {
	return Fields[alerts.Alert]{
		Status:   func(a alerts.Alert) string { return a.Status },
		Priority: func(a alerts.Alert) string { return a.Priority },
		Search: []func(alerts.Alert) string{
			func(a alerts.Alert) string { return a.TouristName },
			func(a alerts.Alert) string { return a.Location },
			func(a alerts.Alert) string { return a.ID },
		},
	}
}

// TeamFields reads teams: search covers name, location and id.
func TeamFields() Fields[teams.Team] {
	return Fields[teams.Team]{
		Status: func(t teams.Team) string { return t.Status },
		Search: []func(teams.Team) string{
			func(t teams.Team) string { return t.Name },
			func(t teams.Team) string { return t.Location },
			func(t teams.Team) string { return t.ID },
		},
	}
}

// ConversationFields reads conversations: search covers name and id.
func ConversationFields() Fields[comms.Conversation] {
	return Fields[comms.Conversation]{
		Status:   func(c comms.Conversation) string { return c.Status },
		Priority: func(c comms.Conversation) string { return c.Priority },
		Search: []func(comms.Conversation) string{
			func(c comms.Conversation) string { return c.Name },
			func(c comms.Conversation) string { return c.ID },
		},
	}
}
