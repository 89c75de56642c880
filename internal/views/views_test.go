package views

import (
	"testing"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	teams "tourops-console/internal/teams/domain"
)

func sampleAlerts() []alerts.Alert {
	return []alerts.Alert{
		{ID: "SA-1", Status: "active", Priority: "Critical"},
		{ID: "SA-2", Status: "responding", Priority: "High"},
		{ID: "SA-3", Status: "investigating", Priority: "High"},
		{ID: "SA-4", Status: "resolved", Priority: "Critical"},
		{ID: "SA-5", Status: "active", Priority: "Low"},
	}
}

func TestCountAlerts(t *testing.T) {
	c := CountAlerts(sampleAlerts())
	if c.Total != 5 || c.Active != 2 || c.Responding != 1 || c.Resolved != 1 {
		t.Fatalf("unexpected counters: %+v", c)
	}
}

func TestCountDesk(t *testing.T) {
	roster := []teams.Team{
		{ID: "T-1", Status: "available", AvgResponseTime: 6},
		{ID: "T-2", Status: "responding", AvgResponseTime: 10},
		{ID: "T-3", Status: "available"},
	}
	c := CountDesk(sampleAlerts(), roster)
	if c.ActiveEmergencies != 4 {
		t.Fatalf("resolved alert counted as emergency: %+v", c)
	}
	if c.TeamCount != 3 || c.AvailableTeams != 2 || c.RespondingTeams != 1 {
		t.Fatalf("team counts wrong: %+v", c)
	}
	if c.AvgResponseMinutes != 8 {
		t.Fatalf("teams without a figure should not skew the mean: %v", c.AvgResponseMinutes)
	}
}

func TestLiveEmergencies(t *testing.T) {
	live := LiveEmergencies(sampleAlerts(), 4)
	// Resolved and low-priority entries are excluded, order preserved.
	if len(live) != 3 || live[0].ID != "SA-1" || live[1].ID != "SA-2" || live[2].ID != "SA-3" {
		t.Fatalf("unexpected shortlist: %+v", live)
	}

	capped := LiveEmergencies(sampleAlerts(), 2)
	if len(capped) != 2 || capped[1].ID != "SA-2" {
		t.Fatalf("cap not applied: %+v", capped)
	}

	uncapped := LiveEmergencies(sampleAlerts(), 0)
	if len(uncapped) != 3 {
		t.Fatalf("zero limit should mean no cap: %+v", uncapped)
	}
}

func TestUnreadCount(t *testing.T) {
	total := UnreadCount([]comms.Conversation{
		{ID: "C-1", NotificationCount: 2},
		{ID: "C-2"},
		{ID: "C-3", NotificationCount: 1},
	})
	if total != 3 {
		t.Fatalf("unread total = %d", total)
	}
}

func TestFindAssignedTeam(t *testing.T) {
	roster := []teams.Team{
		{ID: "T-1", Name: "Coastal Response Alpha"},
		{ID: "T-2", Name: "Market Patrol"},
	}

	got, ok := FindAssignedTeam(roster, "coastal response alpha")
	if !ok || got.ID != "T-1" {
		t.Fatalf("exact match failed: %+v", got)
	}

	// The label on the alert is free text, partial matches count.
	got, ok = FindAssignedTeam(roster, "Market")
	if !ok || got.ID != "T-2" {
		t.Fatalf("containment match failed: %+v", got)
	}

	if _, ok := FindAssignedTeam(roster, "Mountain Unit"); ok {
		t.Fatalf("unrelated label matched")
	}
	if _, ok := FindAssignedTeam(roster, "  "); ok {
		t.Fatalf("blank label matched")
	}
}
