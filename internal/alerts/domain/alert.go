package alerts

import (
	"strings"
	"time"
)

const (
	StatusActive        = "active"
	StatusResponding    = "responding"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
)

const (
	TypeSOS              = "SOS"
	TypeMedicalEmergency = "Medical Emergency"
	TypeTheftRobbery     = "Theft/Robbery"
	TypeLostMissing      = "Lost/Missing"
	TypeScamFraud        = "Scam/Fraud"
	TypeWeather          = "Weather"
	TypeOther            = "Other"
)

const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// Alert is a reported safety incident tracked through its response lifecycle.
// It is created server-side and reaches the console via snapshot or push;
// the console never deletes one.
type Alert struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	TouristName  string    `json:"touristName"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	Coords       []float64 `json:"coords,omitempty"`
	AssignedTeam string    `json:"assignedTeam"`
	Summary      string    `json:"summary"`
	Timestamp    time.Time `json:"timestamp"`
}

// EntityID implements the store identity contract.
func (a Alert) EntityID() string { return a.ID }

// Resolved reports whether the alert has reached its terminal state.
func (a Alert) Resolved() bool {
	return strings.EqualFold(a.Status, StatusResolved)
}

// HasCoords reports whether a usable lat/lng pair is present.
func (a Alert) HasCoords() bool {
	return len(a.Coords) == 2
}

// NextStatus computes the status the console should request next: the
// successor in the active → responding → investigating cycle. Resolved is
// terminal and absorbs; anything unrecognized also advances to resolved.
// The result is advisory; the authoritative status is whatever comes back
// on the push channel.
func NextStatus(current string) string {
	switch strings.ToLower(current) {
	case StatusActive:
		return StatusResponding
	case StatusResponding:
		return StatusInvestigating
	case StatusInvestigating:
		return StatusResolved
	default:
		return StatusResolved
	}
}

// Terminal reports whether a status permits no further transitions.
func Terminal(status string) bool {
	return strings.EqualFold(status, StatusResolved)
}

// CanTransition reports whether requesting next from current is meaningful.
// Any non-terminal state may jump straight to resolved.
func CanTransition(current, next string) bool {
	if Terminal(current) {
		return false
	}
	if strings.EqualFold(next, StatusResolved) {
		return true
	}
	return strings.EqualFold(next, NextStatus(current))
}
