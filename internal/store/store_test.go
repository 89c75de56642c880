package store

import (
	"context"
	"testing"

	"tourops-console/internal/eventbus"
)

type entity struct {
	ID    string
	Value string
}

func (e entity) EntityID() string { return e.ID }

func TestUpsertInsertAndReplace(t *testing.T) {
	s := New[entity]("test", nil, nil)
	ctx := context.Background()

	inserted, err := s.Upsert(ctx, entity{ID: "a", Value: "one"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected insert")
	}

	inserted, err = s.Upsert(ctx, entity{ID: "a", Value: "two"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if inserted {
		t.Fatalf("expected replacement, got insert")
	}

	got, ok := s.Get("a")
	if !ok {
		t.Fatalf("entity missing after upsert")
	}
	if got.Value != "two" {
		t.Fatalf("expected wholesale replacement, got %q", got.Value)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", s.Len())
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := New[entity]("test", nil, nil)
	ctx := context.Background()

	e := entity{ID: "a", Value: "one"}
	if _, err := s.Upsert(ctx, e); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.Upsert(ctx, e); err != nil {
		t.Fatalf("duplicate upsert: %v", err)
	}

	all := s.All()
	if len(all) != 1 || all[0].Value != "one" {
		t.Fatalf("duplicate delivery changed state: %+v", all)
	}
}

func TestUpsertKeepsPosition(t *testing.T) {
	s := New[entity]("test", nil, nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Upsert(ctx, entity{ID: id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if _, err := s.Upsert(ctx, entity{ID: "b", Value: "updated"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	all := s.All()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("order changed on update: got %v", all)
		}
	}
	if all[1].Value != "updated" {
		t.Fatalf("update not applied in place")
	}
}

func TestUpsertRejectsMissingID(t *testing.T) {
	s := New[entity]("test", nil, nil)

	if _, err := s.Upsert(context.Background(), entity{Value: "ghost"}); err != ErrMissingID {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store changed by rejected upsert")
	}
}

func TestPrependInserts(t *testing.T) {
	s := New[entity]("feed", nil, nil, WithPrependInserts[entity]())
	ctx := context.Background()

	for _, id := range []string{"old", "mid", "new"} {
		if _, err := s.Upsert(ctx, entity{ID: id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	all := s.All()
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("expected newest first %v, got %v", want, all)
		}
	}

	// Updating an existing entry must not move it.
	if _, err := s.Upsert(ctx, entity{ID: "old", Value: "edited"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	all = s.All()
	if all[2].ID != "old" || all[2].Value != "edited" {
		t.Fatalf("update moved entity: %v", all)
	}
	got, ok := s.Get("new")
	if !ok || got.ID != "new" {
		t.Fatalf("index broken after prepend updates")
	}
}

func TestReplaceSeedsWholesale(t *testing.T) {
	s := New[entity]("test", nil, nil)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, entity{ID: "stale", Value: "gone"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Replace(ctx, []entity{
		{ID: "a"},
		{ID: ""},
		{ID: "b"},
		{ID: "a", Value: "dup"},
	})

	all := s.All()
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("unexpected seed result: %v", all)
	}
	if _, ok := s.Get("stale"); ok {
		t.Fatalf("snapshot did not clear previous contents")
	}
	if all[0].Value != "" {
		t.Fatalf("duplicate snapshot entry overwrote first occurrence")
	}
}

func TestUpsertPublishesChanged(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	var events []Changed[entity]
	bus.Subscribe(eventbus.EventTypeOf[Changed[entity]](), func(_ context.Context, event any) error {
		events = append(events, event.(Changed[entity]))
		return nil
	})

	s := New[entity]("test", bus, nil)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, entity{ID: "a"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.Upsert(ctx, entity{ID: "a", Value: "v2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(events))
	}
	if !events[0].Inserted || events[1].Inserted {
		t.Fatalf("insert/update flags wrong: %+v", events)
	}
}

func TestReplacePublishesSeeded(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	seeded := 0
	changed := 0
	bus.Subscribe(eventbus.EventTypeOf[Seeded[entity]](), func(_ context.Context, _ any) error {
		seeded++
		return nil
	})
	bus.Subscribe(eventbus.EventTypeOf[Changed[entity]](), func(_ context.Context, _ any) error {
		changed++
		return nil
	})

	s := New[entity]("test", bus, nil)
	s.Replace(context.Background(), []entity{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if seeded != 1 {
		t.Fatalf("expected one seed notification, got %d", seeded)
	}
	if changed != 0 {
		t.Fatalf("bulk seed leaked per-entity notifications: %d", changed)
	}
}
