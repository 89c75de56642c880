package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	directory "tourops-console/internal/directory/domain"
	"tourops-console/internal/observability/metrics"
	"tourops-console/internal/reports"
	"tourops-console/internal/store"
	teams "tourops-console/internal/teams/domain"
)

// LoadState tracks the lifecycle of one collection's initial snapshot.
// A failed load is terminal: the collection stays empty and the console
// shows the failure until restart. There are no automatic retries.
type LoadState int

const (
	LoadPending LoadState = iota
	LoadReady
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Push event names as emitted by the backend.
const (
	EventAlertUpdated   = "alert-updated"
	EventTeamUpdated    = "team-updated"
	EventNewMessage     = "new-message"
	EventNewBroadcast   = "new-broadcast"
	EventNewReportReady = "new-report-ready"
)

// Backend is the read/snapshot surface the syncer needs from the gateway.
type Backend interface {
	ListAlerts(ctx context.Context) ([]alerts.Alert, error)
	ListTeams(ctx context.Context) ([]teams.Team, error)
	ListConversations(ctx context.Context) ([]comms.Conversation, error)
	ListBroadcasts(ctx context.Context) ([]comms.Broadcast, error)
	ListReports(ctx context.Context) ([]reports.Report, error)
	ListProtocols(ctx context.Context) ([]directory.Protocol, error)
	ListRegions(ctx context.Context) ([]directory.Region, error)
	ListContactGroups(ctx context.Context) ([]directory.ContactGroup, error)
	ListTranslators(ctx context.Context) ([]directory.Translator, error)
}

// Stores bundles the typed stores the syncer maintains.
type Stores struct {
	Alerts        *store.Store[alerts.Alert]
	Teams         *store.Store[teams.Team]
	Conversations *store.Store[comms.Conversation]
	Broadcasts    *store.Store[comms.Broadcast]
	Reports       *store.Store[reports.Report]
	Protocols     *store.Store[directory.Protocol]
	Regions       *store.Store[directory.Region]
	ContactGroups *store.Store[directory.ContactGroup]
	Translators   *store.Store[directory.Translator]
}

// Syncer owns the snapshot-then-delta flow: it seeds the stores from bulk
// fetches and applies push deltas in arrival order. Deltas are full-object
// replacements, so re-applying one is a no-op and ordering within a single
// entity never produces merged state.
type Syncer struct {
	backend Backend
	stores  Stores
	logger  *log.Logger

	mu     sync.RWMutex
	states map[string]LoadState
}

// New constructs a Syncer. All stores must be non-nil.
func New(backend Backend, stores Stores, logger *log.Logger) (*Syncer, error) {
	if backend == nil {
		return nil, errors.New("syncer: nil backend")
	}
	if stores.Alerts == nil || stores.Teams == nil || stores.Conversations == nil ||
		stores.Broadcasts == nil || stores.Reports == nil || stores.Protocols == nil ||
		stores.Regions == nil || stores.ContactGroups == nil || stores.Translators == nil {
		return nil, errors.New("syncer: incomplete store set")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Syncer{
		backend: backend,
		stores:  stores,
		logger:  logger,
		states:  make(map[string]LoadState),
	}
	for _, kind := range []string{
		stores.Alerts.Kind(), stores.Teams.Kind(), stores.Conversations.Kind(),
		stores.Broadcasts.Kind(), stores.Reports.Kind(), stores.Protocols.Kind(),
		stores.Regions.Kind(), stores.ContactGroups.Kind(), stores.Translators.Kind(),
	} {
		s.states[kind] = LoadPending
	}
	return s, nil
}

// State reports the load state of one collection by store kind.
func (s *Syncer) State(kind string) LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[kind]
}

func (s *Syncer) setState(kind string, state LoadState) {
	s.mu.Lock()
	s.states[kind] = state
	s.mu.Unlock()
}

// LoadAll seeds every collection. Collections fail independently; a
// joined error reports all failures but never aborts the remaining loads.
func (s *Syncer) LoadAll(ctx context.Context) error {
	return errors.Join(
		s.LoadAlerts(ctx),
		s.LoadTeams(ctx),
		s.LoadConversations(ctx),
		s.LoadBroadcasts(ctx),
		s.LoadReports(ctx),
		s.LoadDirectory(ctx),
	)
}

// loadInto runs one snapshot fetch and seeds its store, recording load
// state and latency. Deltas that arrived before the snapshot are simply
// overwritten by it; the snapshot is the newer truth by definition here,
// and any delta racing behind it lands on top in arrival order.
func loadInto[T store.Entity](ctx context.Context, s *Syncer, st *store.Store[T], fetch func(context.Context) ([]T, error)) error {
	kind := st.Kind()
	start := time.Now()
	items, err := fetch(ctx)
	if err != nil {
		s.setState(kind, LoadFailed)
		metrics.ObserveSnapshotLoad(kind, metrics.ResultError, time.Since(start))
		s.logger.Printf("syncer: %s snapshot failed: %v", kind, err)
		return fmt.Errorf("load %s: %w", kind, err)
	}
	st.Replace(ctx, items)
	s.setState(kind, LoadReady)
	metrics.ObserveSnapshotLoad(kind, metrics.ResultSuccess, time.Since(start))
	s.logger.Printf("syncer: %s snapshot loaded, %d entities", kind, len(items))
	return nil
}

// LoadAlerts seeds the alert store.
func (s *Syncer) LoadAlerts(ctx context.Context) error {
	return loadInto(ctx, s, s.stores.Alerts, s.backend.ListAlerts)
}

// LoadTeams seeds the team store.
func (s *Syncer) LoadTeams(ctx context.Context) error {
	return loadInto(ctx, s, s.stores.Teams, s.backend.ListTeams)
}

// LoadConversations seeds the conversation store.
func (s *Syncer) LoadConversations(ctx context.Context) error {
	return loadInto(ctx, s, s.stores.Conversations, s.backend.ListConversations)
}

// LoadBroadcasts seeds the broadcast feed.
func (s *Syncer) LoadBroadcasts(ctx context.Context) error {
	return loadInto(ctx, s, s.stores.Broadcasts, s.backend.ListBroadcasts)
}

// LoadReports seeds the generated report feed.
func (s *Syncer) LoadReports(ctx context.Context) error {
	return loadInto(ctx, s, s.stores.Reports, s.backend.ListReports)
}

// LoadDirectory seeds the slow-moving reference collections.
func (s *Syncer) LoadDirectory(ctx context.Context) error {
	return errors.Join(
		loadInto(ctx, s, s.stores.Protocols, s.backend.ListProtocols),
		loadInto(ctx, s, s.stores.Regions, s.backend.ListRegions),
		loadInto(ctx, s, s.stores.ContactGroups, s.backend.ListContactGroups),
		loadInto(ctx, s, s.stores.Translators, s.backend.ListTranslators),
	)
}

// newMessagePayload is the wire shape of a new-message push event.
type newMessagePayload struct {
	ConversationID string        `json:"conversationId"`
	Message        comms.Message `json:"message"`
	Preview        string        `json:"preview"`
}

// HandleEvent applies one push delta. Events are dispatched by name; a
// malformed payload or an unknown event name is logged and dropped
// without touching any store.
func (s *Syncer) HandleEvent(ctx context.Context, name string, payload json.RawMessage) error {
	switch name {
	case EventAlertUpdated:
		return applyUpsert(ctx, s, s.stores.Alerts, name, payload)
	case EventTeamUpdated:
		return applyUpsert(ctx, s, s.stores.Teams, name, payload)
	case EventNewBroadcast:
		return applyUpsert(ctx, s, s.stores.Broadcasts, name, payload)
	case EventNewReportReady:
		return applyUpsert(ctx, s, s.stores.Reports, name, payload)
	case EventNewMessage:
		return s.applyNewMessage(ctx, payload)
	default:
		metrics.IncDeltaRejected("unknown_event")
		s.logger.Printf("syncer: dropping unknown push event %q", name)
		return nil
	}
}

func applyUpsert[T store.Entity](ctx context.Context, s *Syncer, st *store.Store[T], event string, payload json.RawMessage) error {
	var entity T
	if err := json.Unmarshal(payload, &entity); err != nil {
		metrics.IncDeltaRejected("malformed_payload")
		s.logger.Printf("syncer: dropping malformed %s payload: %v", event, err)
		return nil
	}
	if _, err := st.Upsert(ctx, entity); err != nil {
		return nil
	}
	metrics.IncDeltaApplied(event)
	return nil
}

func (s *Syncer) applyNewMessage(ctx context.Context, payload json.RawMessage) error {
	var p newMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		metrics.IncDeltaRejected("malformed_payload")
		s.logger.Printf("syncer: dropping malformed %s payload: %v", EventNewMessage, err)
		return nil
	}
	conv, ok := s.stores.Conversations.Get(p.ConversationID)
	if !ok {
		metrics.IncDeltaRejected("unknown_conversation")
		s.logger.Printf("syncer: message for unknown conversation %q dropped", p.ConversationID)
		return nil
	}
	if _, err := s.stores.Conversations.Upsert(ctx, conv.WithMessage(p.Message, p.Preview)); err != nil {
		return nil
	}
	metrics.IncDeltaApplied(EventNewMessage)
	return nil
}
