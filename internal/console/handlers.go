package console

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	"tourops-console/internal/filter"
	"tourops-console/internal/reports"
	"tourops-console/internal/syncer"
	teams "tourops-console/internal/teams/domain"
	"tourops-console/internal/views"
)

// Gateway is the write half of the backend client. Calls return nothing:
// the request is fired and the authoritative outcome, if any, arrives on
// the push channel.
type Gateway interface {
	UpdateAlertStatus(ctx context.Context, id, status string)
	UpdateTeamStatus(ctx context.Context, id, status string)
	SendMessage(ctx context.Context, conversationID string, msg comms.Message)
	SendBroadcast(ctx context.Context, req comms.BroadcastRequest)
}

// Handler serves the operator-facing JSON API over the local stores.
// Reads come straight from the stores; writes go to the gateway and the
// stores are left untouched until the matching push event lands.
type Handler struct {
	stores  syncer.Stores
	sync    *syncer.Syncer
	gateway Gateway
	logger  *log.Logger
	liveCap int
}

// NewHandler constructs the console API handler.
func NewHandler(stores syncer.Stores, sync *syncer.Syncer, gateway Gateway, logger *log.Logger, liveCap int) (*Handler, error) {
	if sync == nil {
		return nil, errors.New("console: nil syncer")
	}
	if gateway == nil {
		return nil, errors.New("console: nil gateway")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{stores: stores, sync: sync, gateway: gateway, logger: logger, liveCap: liveCap}, nil
}

// Register mounts the console routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/overview", h.overview)
	mux.HandleFunc("GET /api/alerts", h.listAlerts)
	mux.HandleFunc("GET /api/teams", h.listTeams)
	mux.HandleFunc("GET /api/conversations", h.listConversations)
	mux.HandleFunc("GET /api/broadcasts", h.listBroadcasts)
	mux.HandleFunc("GET /api/reports", h.listReports)
	mux.HandleFunc("GET /api/directory", h.directory)
	mux.HandleFunc("POST /api/alerts/{id}/advance", h.advanceAlert)
	mux.HandleFunc("POST /api/teams/{id}/toggle", h.toggleTeam)
	mux.HandleFunc("POST /api/conversations/{id}/messages", h.sendMessage)
	mux.HandleFunc("POST /api/broadcast", h.sendBroadcast)
	mux.HandleFunc("GET /export/alerts.csv", h.exportCSV)
	mux.HandleFunc("GET /export/alerts.xlsx", h.exportXLSX)
	mux.HandleFunc("GET /export/summary.pdf", h.exportPDF)
}

func criteriaFromQuery(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	c := filter.Criteria{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
	}
	if c.Status == "" {
		c.Status = filter.All
	}
	if c.Priority == "" {
		c.Priority = filter.All
	}
	return c
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	alertItems := h.stores.Alerts.All()
	teamItems := h.stores.Teams.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":          views.CountAlerts(alertItems),
		"desk":            views.CountDesk(alertItems, teamItems),
		"liveEmergencies": views.LiveEmergencies(alertItems, h.liveCap),
		"unreadMessages":  views.UnreadCount(h.stores.Conversations.All()),
		"loadStates": map[string]string{
			h.stores.Alerts.Kind():        h.sync.State(h.stores.Alerts.Kind()).String(),
			h.stores.Teams.Kind():         h.sync.State(h.stores.Teams.Kind()).String(),
			h.stores.Conversations.Kind(): h.sync.State(h.stores.Conversations.Kind()).String(),
			h.stores.Broadcasts.Kind():    h.sync.State(h.stores.Broadcasts.Kind()).String(),
			h.stores.Reports.Kind():       h.sync.State(h.stores.Reports.Kind()).String(),
		},
	})
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	items := filter.Visible(h.stores.Alerts.All(), criteriaFromQuery(r), filter.AlertFields())
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	items := filter.Visible(h.stores.Teams.All(), criteriaFromQuery(r), filter.TeamFields())
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	items := filter.Visible(h.stores.Conversations.All(), criteriaFromQuery(r), filter.ConversationFields())
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listBroadcasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stores.Broadcasts.All())
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stores.Reports.All())
}

func (h *Handler) directory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"protocols":   h.stores.Protocols.All(),
		"regions":     h.stores.Regions.All(),
		"contacts":    h.stores.ContactGroups.All(),
		"translators": h.stores.Translators.All(),
	})
}

// advanceAlert requests the next status in the alert cycle. The local
// store is not touched; the updated alert comes back as a push event.
func (h *Handler) advanceAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := h.stores.Alerts.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, alerts.ErrNotFound.Error())
		return
	}
	if alerts.Terminal(a.Status) {
		writeError(w, http.StatusConflict, alerts.ErrTerminalStatus.Error())
		return
	}
	next := alerts.NextStatus(a.Status)
	h.gateway.UpdateAlertStatus(r.Context(), id, next)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "requested": next})
}

// toggleTeam flips a team between available and responding.
func (h *Handler) toggleTeam(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := h.stores.Teams.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "team not found")
		return
	}
	next := teams.ToggleStatus(t.Status)
	h.gateway.UpdateTeamStatus(r.Context(), id, next)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "requested": next})
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.stores.Conversations.Get(id); !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "message text required")
		return
	}
	h.gateway.SendMessage(r.Context(), id, comms.Message{
		Sender:    "Operator",
		Text:      body.Text,
		Direction: comms.DirectionOutgoing,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"conversationId": id})
}

func (h *Handler) sendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req comms.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "broadcast message required")
		return
	}
	h.gateway.SendBroadcast(r.Context(), req)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "requested"})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := reports.BuildAlertsCSV(h.stores.Alerts.All())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.csv"`)
	_, _ = w.Write(data)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := reports.BuildAlertsXLSX(h.stores.Alerts.All())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.xlsx"`)
	_, _ = w.Write(data)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	data, err := reports.BuildIncidentSummaryPDF(h.stores.Alerts.All(), h.stores.Teams.All())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.pdf"`)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
