// Command fake_backend is a development stand-in for the safety backend.
// It serves the snapshot endpoints from seed data, applies status and
// message mutations, and pushes the resulting deltas to every connected
// websocket client.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type fakeBackend struct {
	mu            sync.Mutex
	alerts        []map[string]any
	teams         []map[string]any
	conversations []map[string]any
	broadcasts    []map[string]any
	reports       []map[string]any

	broadcastSeq int64

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	addr := getenvDefault("FAKE_BACKEND_ADDR", ":9090")

	srv := &fakeBackend{
		alerts:        seedAlerts(),
		teams:         seedTeams(),
		conversations: seedConversations(),
		broadcasts:    seedBroadcasts(),
		reports:       seedReports(),
		clients:       make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("GET /api/alerts", srv.listCollection(&srv.alerts))
	mux.HandleFunc("GET /api/teams", srv.listCollection(&srv.teams))
	mux.HandleFunc("GET /api/conversations", srv.listCollection(&srv.conversations))
	mux.HandleFunc("GET /api/broadcasts", srv.listCollection(&srv.broadcasts))
	mux.HandleFunc("GET /api/reports", srv.listCollection(&srv.reports))
	mux.HandleFunc("GET /api/protocols", serveStatic(seedProtocols()))
	mux.HandleFunc("GET /api/regions", serveStatic(seedRegions()))
	mux.HandleFunc("GET /api/contacts", serveStatic(seedContacts()))
	mux.HandleFunc("GET /api/translators", serveStatic(seedTranslators()))
	mux.HandleFunc("PUT /api/alerts/{id}/status", srv.handleAlertStatus)
	mux.HandleFunc("PUT /api/teams/{id}/status", srv.handleTeamStatus)
	mux.HandleFunc("POST /api/conversations/{id}/messages", srv.handleMessage)
	mux.HandleFunc("POST /api/broadcast", srv.handleBroadcast)
	mux.HandleFunc("/ws", srv.handleWS)

	log.Printf("fake backend listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *fakeBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *fakeBackend) listCollection(items *[]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := make([]map[string]any, len(*items))
		copy(out, *items)
		s.mu.Unlock()
		writeJSON(w, out)
	}
}

func serveStatic(items []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, items)
	}
}

func (s *fakeBackend) handleAlertStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		http.Error(w, "status required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var updated map[string]any
	for _, a := range s.alerts {
		if a["id"] == id {
			a["status"] = strings.ToLower(body.Status)
			updated = cloneMap(a)
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		http.NotFound(w, r)
		return
	}
	s.push("alert-updated", updated)
	w.WriteHeader(http.StatusOK)
}

func (s *fakeBackend) handleTeamStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		http.Error(w, "status required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var updated map[string]any
	for _, t := range s.teams {
		if t["id"] == id {
			t["status"] = strings.ToLower(body.Status)
			updated = cloneMap(t)
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		http.NotFound(w, r)
		return
	}
	s.push("team-updated", updated)
	w.WriteHeader(http.StatusOK)
}

func (s *fakeBackend) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var msg struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
		Type   string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}
	if msg.Type == "" {
		msg.Type = "outgoing"
	}

	s.mu.Lock()
	found := false
	for _, c := range s.conversations {
		if c["id"] == id {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	s.push("new-message", map[string]any{
		"conversationId": id,
		"message":        msg,
		"preview":        msg.Text,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *fakeBackend) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
		Target   string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}

	// The backend owns broadcast ids; clients never submit one.
	b := map[string]any{
		"id":        fmt.Sprintf("BC-%03d", atomic.AddInt64(&s.broadcastSeq, 1)+100),
		"type":      req.Type,
		"message":   req.Message,
		"priority":  req.Priority,
		"target":    req.Target,
		"status":    "Delivered",
		"reached":   12000,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.broadcasts = append([]map[string]any{b}, s.broadcasts...)
	s.mu.Unlock()

	s.push("new-broadcast", b)
	w.WriteHeader(http.StatusCreated)
}

func (s *fakeBackend) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	total := len(s.clients)
	s.clientsMu.Unlock()
	log.Printf("ws client connected (%d total)", total)

	// Drain reads until the client disconnects.
	go func() {
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *fakeBackend) push(event string, data any) {
	frame, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		log.Printf("push marshal failed: %v", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func seedAlerts() []map[string]any {
	return []map[string]any{
		{
			"id": "SA-1021", "type": "SOS", "status": "active", "priority": "Critical",
			"touristName": "Arjun Mehta", "phone": "+91 98200 11223",
			"location": "Baga Beach, North Goa", "coords": []float64{15.552, 73.751},
			"assignedTeam": "Coastal Response Alpha",
			"summary":      "Panic button pressed, no voice response",
			"timestamp":    time.Now().UTC().Add(-12 * time.Minute).Format(time.RFC3339),
		},
		{
			"id": "SA-1022", "type": "Medical Emergency", "status": "responding", "priority": "High",
			"touristName": "Elena Petrova", "phone": "+7 916 445 8890",
			"location": "Dudhsagar Falls Trail", "coords": []float64{15.314, 74.314},
			"assignedTeam": "Trail Rescue Two",
			"summary":      "Ankle injury on descent, conscious and stable",
			"timestamp":    time.Now().UTC().Add(-34 * time.Minute).Format(time.RFC3339),
		},
		{
			"id": "SA-1023", "type": "Theft/Robbery", "status": "investigating", "priority": "Medium",
			"touristName": "Tom Becker", "phone": "+49 171 555 2301",
			"location": "Anjuna Flea Market",
			"assignedTeam": "Market Patrol",
			"summary":      "Backpack snatched near north entrance",
			"timestamp":    time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339),
		},
		{
			"id": "SA-1019", "type": "Lost/Missing", "status": "resolved", "priority": "High",
			"touristName": "Yuki Tanaka", "phone": "+81 90 1122 3344",
			"location": "Old Goa Basilica",
			"assignedTeam": "Heritage Unit",
			"summary":      "Separated from tour group, reunited",
			"timestamp":    time.Now().UTC().Add(-5 * time.Hour).Format(time.RFC3339),
		},
	}
}

func seedTeams() []map[string]any {
	return []map[string]any{
		{
			"id": "T-01", "name": "Coastal Response Alpha", "status": "responding",
			"location": "Baga Beach", "members": 4, "avgResponseTime": 6.5,
			"incidentsHandled": 132, "successRate": 97.2,
			"specialization": "Water rescue", "equipment": []string{"Jet ski", "Defibrillator", "Drone"},
			"phone": "+91 98200 55001",
		},
		{
			"id": "T-02", "name": "Trail Rescue Two", "status": "responding",
			"location": "Mollem", "members": 6, "avgResponseTime": 14.0,
			"incidentsHandled": 88, "successRate": 95.1,
			"specialization": "Mountain and trail", "equipment": []string{"Stretcher", "Rope kit"},
			"phone": "+91 98200 55002",
		},
		{
			"id": "T-03", "name": "Market Patrol", "status": "available",
			"location": "Anjuna", "members": 3, "avgResponseTime": 4.2,
			"incidentsHandled": 210, "successRate": 91.8,
			"specialization": "Urban patrol", "equipment": []string{"Body cam", "First aid"},
			"phone": "+91 98200 55003",
		},
		{
			"id": "T-04", "name": "Heritage Unit", "status": "available",
			"location": "Old Goa", "members": 2, "avgResponseTime": 8.9,
			"incidentsHandled": 64, "successRate": 98.4,
			"specialization": "Crowd assistance", "equipment": []string{"First aid"},
			"phone": "+91 98200 55004",
		},
	}
}

func seedConversations() []map[string]any {
	return []map[string]any{
		{
			"id": "C-201", "name": "Arjun Mehta", "icon": "sos", "preview": "Please hurry",
			"time": "5 min ago", "status": "active", "priority": "Critical", "notificationCount": 2,
			"messages": []map[string]any{
				{"sender": "Arjun Mehta", "text": "I pressed the SOS button", "type": "incoming"},
				{"sender": "Operator", "text": "Team is on the way, stay where you are", "type": "outgoing"},
				{"sender": "Arjun Mehta", "text": "Please hurry", "type": "incoming"},
			},
		},
		{
			"id": "C-202", "name": "Coastal Response Alpha", "icon": "team", "preview": "ETA 4 minutes",
			"time": "2 min ago", "status": "active", "priority": "High", "notificationCount": 0,
			"messages": []map[string]any{
				{"sender": "Team Lead", "text": "ETA 4 minutes", "type": "incoming"},
			},
		},
	}
}

func seedBroadcasts() []map[string]any {
	return []map[string]any{
		{
			"id": "BC-100", "type": "Weather", "message": "High tide warning for north coast beaches until 18:00",
			"priority": "High", "target": "North Goa", "status": "Delivered", "reached": 18240,
			"timestamp": time.Now().UTC().Add(-90 * time.Minute).Format(time.RFC3339),
		},
	}
}

func seedReports() []map[string]any {
	return []map[string]any{
		{
			"id": "R-330", "title": "Weekly Incident Summary", "type": "incident",
			"period": "last 7 days", "format": "pdf",
			"generatedAt": time.Now().UTC().Add(-26 * time.Hour).Format(time.RFC3339),
			"url":         "/reports/R-330.pdf",
		},
	}
}

func seedProtocols() []map[string]any {
	return []map[string]any{
		{"id": "P-1", "type": "Medical Emergency", "steps": []string{
			"Confirm location and condition", "Dispatch nearest medical team",
			"Notify hospital", "Stay on line until handover",
		}},
		{"id": "P-2", "type": "Lost/Missing", "steps": []string{
			"Collect last known location", "Alert nearby teams",
			"Review camera feeds", "Coordinate with local police",
		}},
	}
}

func seedRegions() []map[string]any {
	return []map[string]any{
		{"id": "RG-1", "name": "North Goa"},
		{"id": "RG-2", "name": "South Goa"},
		{"id": "RG-3", "name": "All Regions"},
	}
}

func seedContacts() []map[string]any {
	return []map[string]any{
		{"id": "CG-1", "group": "Police", "contacts": []map[string]any{
			{"name": "Control Room", "number": "100", "status": "online"},
			{"name": "Coastal Station", "number": "+91 832 2420 100", "status": "online"},
		}},
		{"id": "CG-2", "group": "Medical", "contacts": []map[string]any{
			{"name": "GMC Emergency", "number": "108", "status": "online"},
		}},
	}
}

func seedTranslators() []map[string]any {
	return []map[string]any{
		{"id": "TR-1", "language": "Russian", "name": "Irina V.", "status": "available"},
		{"id": "TR-2", "language": "German", "name": "Max K.", "status": "busy"},
		{"id": "TR-3", "language": "Japanese", "name": "Sato H.", "status": "available"},
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
