package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	directory "tourops-console/internal/directory/domain"
	"tourops-console/internal/reports"
	"tourops-console/internal/store"
	"tourops-console/internal/syncer"
	teams "tourops-console/internal/teams/domain"
)

type recordedMutation struct {
	Kind string
	ID   string
	Arg  string
}

type stubGateway struct {
	mutations []recordedMutation
}

func (g *stubGateway) UpdateAlertStatus(_ context.Context, id, status string) {
	g.mutations = append(g.mutations, recordedMutation{Kind: "alert", ID: id, Arg: status})
}

func (g *stubGateway) UpdateTeamStatus(_ context.Context, id, status string) {
	g.mutations = append(g.mutations, recordedMutation{Kind: "team", ID: id, Arg: status})
}

func (g *stubGateway) SendMessage(_ context.Context, conversationID string, msg comms.Message) {
	g.mutations = append(g.mutations, recordedMutation{Kind: "message", ID: conversationID, Arg: msg.Text})
}

func (g *stubGateway) SendBroadcast(_ context.Context, req comms.BroadcastRequest) {
	g.mutations = append(g.mutations, recordedMutation{Kind: "broadcast", Arg: req.Message})
}

type emptyBackend struct{}

func (emptyBackend) ListAlerts(context.Context) ([]alerts.Alert, error)              { return nil, nil }
func (emptyBackend) ListTeams(context.Context) ([]teams.Team, error)                 { return nil, nil }
func (emptyBackend) ListConversations(context.Context) ([]comms.Conversation, error) { return nil, nil }
func (emptyBackend) ListBroadcasts(context.Context) ([]comms.Broadcast, error)       { return nil, nil }
func (emptyBackend) ListReports(context.Context) ([]reports.Report, error)           { return nil, nil }
func (emptyBackend) ListProtocols(context.Context) ([]directory.Protocol, error)     { return nil, nil }
func (emptyBackend) ListRegions(context.Context) ([]directory.Region, error)         { return nil, nil }
func (emptyBackend) ListContactGroups(context.Context) ([]directory.ContactGroup, error) {
	return nil, nil
}
func (emptyBackend) ListTranslators(context.Context) ([]directory.Translator, error) {
	return nil, nil
}

func newFixture(t *testing.T) (*http.ServeMux, syncer.Stores, *stubGateway) {
	t.Helper()
	stores := syncer.Stores{
		Alerts:        store.New[alerts.Alert]("alerts", nil, nil),
		Teams:         store.New[teams.Team]("teams", nil, nil),
		Conversations: store.New[comms.Conversation]("conversations", nil, nil),
		Broadcasts:    store.New[comms.Broadcast]("broadcasts", nil, nil, store.WithPrependInserts[comms.Broadcast]()),
		Reports:       store.New[reports.Report]("reports", nil, nil, store.WithPrependInserts[reports.Report]()),
		Protocols:     store.New[directory.Protocol]("protocols", nil, nil),
		Regions:       store.New[directory.Region]("regions", nil, nil),
		ContactGroups: store.New[directory.ContactGroup]("contacts", nil, nil),
		Translators:   store.New[directory.Translator]("translators", nil, nil),
	}
	sync, err := syncer.New(emptyBackend{}, stores, nil)
	if err != nil {
		t.Fatalf("new syncer: %v", err)
	}
	gw := &stubGateway{}
	handler, err := NewHandler(stores, sync, gw, nil, 4)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	mux := http.NewServeMux()
	handler.Register(mux)
	return mux, stores, gw
}

func TestListAlertsFiltered(t *testing.T) {
	mux, stores, _ := newFixture(t)
	ctx := context.Background()
	stores.Alerts.Replace(ctx, []alerts.Alert{
		{ID: "SA-1", Status: "active", Priority: "Critical", TouristName: "Arjun"},
		{ID: "SA-2", Status: "resolved", Priority: "High", TouristName: "Elena"},
		{ID: "SA-3", Status: "active", Priority: "Low", TouristName: "Tom"},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?status=active", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got []alerts.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "SA-1" || got[1].ID != "SA-3" {
		t.Fatalf("filter wrong: %+v", got)
	}
}

func TestAdvanceAlert(t *testing.T) {
	mux, stores, gw := newFixture(t)
	ctx := context.Background()
	if _, err := stores.Alerts.Upsert(ctx, alerts.Alert{ID: "SA-1", Status: alerts.StatusActive}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/SA-1/advance", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(gw.mutations) != 1 || gw.mutations[0].Arg != alerts.StatusResponding {
		t.Fatalf("gateway not called with successor: %+v", gw.mutations)
	}

	// The local store stays untouched until the push delta lands.
	got, _ := stores.Alerts.Get("SA-1")
	if got.Status != alerts.StatusActive {
		t.Fatalf("handler patched local state: %+v", got)
	}
}

func TestAdvanceAlertTerminal(t *testing.T) {
	mux, stores, gw := newFixture(t)
	if _, err := stores.Alerts.Upsert(context.Background(), alerts.Alert{ID: "SA-1", Status: alerts.StatusResolved}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/SA-1/advance", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("terminal advance returned %d", rec.Code)
	}
	if len(gw.mutations) != 0 {
		t.Fatalf("terminal advance reached the gateway")
	}
}

func TestAdvanceAlertNotFound(t *testing.T) {
	mux, _, _ := newFixture(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/SA-404/advance", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing alert returned %d", rec.Code)
	}
}

func TestToggleTeam(t *testing.T) {
	mux, stores, gw := newFixture(t)
	if _, err := stores.Teams.Upsert(context.Background(), teams.Team{ID: "T-1", Status: teams.StatusResponding}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/teams/T-1/toggle", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	if len(gw.mutations) != 1 || gw.mutations[0].Arg != teams.StatusAvailable {
		t.Fatalf("recall not requested: %+v", gw.mutations)
	}
}

func TestSendMessageValidation(t *testing.T) {
	mux, stores, gw := newFixture(t)
	if _, err := stores.Conversations.Upsert(context.Background(), comms.Conversation{ID: "C-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/conversations/C-1/messages", strings.NewReader(`{"text":"  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank text returned %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/conversations/C-1/messages", strings.NewReader(`{"text":"on the way"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	if len(gw.mutations) != 1 || gw.mutations[0].Kind != "message" || gw.mutations[0].Arg != "on the way" {
		t.Fatalf("message not forwarded: %+v", gw.mutations)
	}
}

func TestSendBroadcast(t *testing.T) {
	mux, _, gw := newFixture(t)
	body := `{"type":"Weather","message":"high tide","priority":"High","target":"North Goa"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/broadcast", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	if len(gw.mutations) != 1 || gw.mutations[0].Kind != "broadcast" {
		t.Fatalf("broadcast not forwarded: %+v", gw.mutations)
	}
}

func TestOverview(t *testing.T) {
	mux, stores, _ := newFixture(t)
	ctx := context.Background()
	stores.Alerts.Replace(ctx, []alerts.Alert{
		{ID: "SA-1", Status: "active", Priority: "Critical"},
		{ID: "SA-2", Status: "resolved", Priority: "High"},
	})
	stores.Teams.Replace(ctx, []teams.Team{{ID: "T-1", Status: "available"}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Alerts struct {
			Total  int
			Active int
		}
		LiveEmergencies []alerts.Alert `json:"liveEmergencies"`
		LoadStates      map[string]string
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Alerts.Total != 2 || body.Alerts.Active != 1 {
		t.Fatalf("counters wrong: %+v", body.Alerts)
	}
	if len(body.LiveEmergencies) != 1 || body.LiveEmergencies[0].ID != "SA-1" {
		t.Fatalf("live shortlist wrong: %+v", body.LiveEmergencies)
	}
	if body.LoadStates["alerts"] != "pending" {
		t.Fatalf("load state missing: %+v", body.LoadStates)
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	mux, stores, _ := newFixture(t)
	stores.Alerts.Replace(context.Background(), []alerts.Alert{{ID: "SA-1", TouristName: "Arjun"}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/alerts.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "SA-1") {
		t.Fatalf("export missing data: %s", rec.Body.String())
	}
}
