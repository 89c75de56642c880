package teams

import "strings"

const (
	StatusAvailable  = "available"
	StatusResponding = "responding"
)

// Team is a field response unit. Its status is independent of any single
// alert; alerts reference teams by display name only.
type Team struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	Location         string   `json:"location"`
	Members          int      `json:"members"`
	AvgResponseTime  float64  `json:"avgResponseTime"`
	IncidentsHandled int      `json:"incidentsHandled"`
	SuccessRate      float64  `json:"successRate"`
	Specialization   string   `json:"specialization"`
	Equipment        []string `json:"equipment"`
	Phone            string   `json:"phone"`
}

// EntityID implements the store identity contract.
func (t Team) EntityID() string { return t.ID }

// Available reports whether the team can be dispatched.
func (t Team) Available() bool {
	return strings.EqualFold(t.Status, StatusAvailable)
}

// ToggleStatus flips between the two team states: dispatch moves an
// available team to responding, recall moves it back. Like the alert
// machine this is advisory; the push channel confirms the change.
func ToggleStatus(current string) string {
	if strings.EqualFold(current, StatusResponding) {
		return StatusAvailable
	}
	return StatusResponding
}
