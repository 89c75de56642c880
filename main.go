package main

import (
	"context"
	"log"
	"net/http"
	"os"

	alerts "tourops-console/internal/alerts/domain"
	comms "tourops-console/internal/comms/domain"
	"tourops-console/internal/config"
	"tourops-console/internal/console"
	directory "tourops-console/internal/directory/domain"
	"tourops-console/internal/eventbus"
	"tourops-console/internal/gateway"
	"tourops-console/internal/observability/metrics"
	"tourops-console/internal/push"
	"tourops-console/internal/reports"
	"tourops-console/internal/session"
	"tourops-console/internal/store"
	"tourops-console/internal/syncer"
	teams "tourops-console/internal/teams/domain"
	"tourops-console/internal/views"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init(logger)

	if cfg.OperatorToken != "" {
		claims, err := session.ParseToken(cfg.OperatorToken, cfg.TokenSecret)
		if err != nil {
			logger.Printf("session: token rejected, continuing unauthenticated: %v", err)
		} else {
			logger.Printf("session: operator %s (%s) region %s", claims.Operator, claims.Role, claims.Region)
		}
	}

	bus := eventbus.NewInMemoryBus()

	alertStore := store.New[alerts.Alert]("alerts", bus, logger)
	teamStore := store.New[teams.Team]("teams", bus, logger)

	stores := syncer.Stores{
		Alerts:        alertStore,
		Teams:         teamStore,
		Conversations: store.New[comms.Conversation]("conversations", bus, logger),
		Broadcasts:    store.New[comms.Broadcast]("broadcasts", bus, logger, store.WithPrependInserts[comms.Broadcast]()),
		Reports:       store.New[reports.Report]("reports", bus, logger, store.WithPrependInserts[reports.Report]()),
		Protocols:     store.New[directory.Protocol]("protocols", bus, logger),
		Regions:       store.New[directory.Region]("regions", bus, logger),
		ContactGroups: store.New[directory.ContactGroup]("contacts", bus, logger),
		Translators:   store.New[directory.Translator]("translators", bus, logger),
	}

	client, err := gateway.NewClient(cfg.APIBaseURL, cfg.OperatorToken, logger, gateway.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		logger.Fatalf("gateway error: %v", err)
	}

	sync, err := syncer.New(client, stores, logger)
	if err != nil {
		logger.Fatalf("syncer error: %v", err)
	}

	ctx := context.Background()
	if err := sync.LoadAll(ctx); err != nil {
		// Failed collections stay empty and marked failed; the console
		// still comes up with whatever loaded.
		logger.Printf("initial load incomplete: %v", err)
	}

	listener, err := push.NewListener(cfg.PushURL, sync, logger, push.WithReconnectDelay(cfg.PushReconnectDelay))
	if err != nil {
		logger.Fatalf("push listener error: %v", err)
	}
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("push listener stopped: %v", err)
		}
	}()

	deskScreen, err := views.NewScreen("operations-desk", bus, logger)
	if err != nil {
		logger.Fatalf("screen error: %v", err)
	}
	deskScreen.On(eventbus.EventTypeOf[store.Changed[alerts.Alert]](), func(ctx context.Context, event any) error {
		change := event.(store.Changed[alerts.Alert])
		counters := views.CountAlerts(alertStore.All())
		logger.Printf("desk: alert %s now %s (%d active, %d responding, %d resolved)",
			change.Entity.ID, change.Entity.Status, counters.Active, counters.Responding, counters.Resolved)
		return nil
	})
	deskScreen.On(eventbus.EventTypeOf[store.Changed[teams.Team]](), func(ctx context.Context, event any) error {
		change := event.(store.Changed[teams.Team])
		logger.Printf("desk: team %s now %s", change.Entity.Name, change.Entity.Status)
		return nil
	})
	defer deskScreen.Close()

	handler, err := console.NewHandler(stores, sync, client, logger, cfg.LiveEmergencyLimit)
	if err != nil {
		logger.Fatalf("console handler error: %v", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	logger.Printf("console listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}
