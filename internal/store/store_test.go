package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/replicated"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessions_CreateAndEnd(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "sess-1", SiteID: "site-a"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID("sess-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SiteID != "site-a" || got.EndedAt != nil {
		t.Errorf("GetByID() = %+v, want open session for site-a", got)
	}

	if err := repo.End("sess-1"); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	got, err = repo.GetByID("sess-1")
	if err != nil {
		t.Fatalf("GetByID() after End error = %v", err)
	}
	if got.EndedAt == nil {
		t.Error("session not marked ended")
	}

	// Ending twice reports not found since the row is already closed.
	if err := repo.End("sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second End() error = %v, want ErrNotFound", err)
	}
}

func TestSessions_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	repo.Create(&Session{ID: "sess-1", SiteID: "a"})
	repo.Create(&Session{ID: "sess-2", SiteID: "b"})

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("List() returned %d sessions, want 2", len(sessions))
	}
}

func TestSessions_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Sessions().GetByID("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestBrushes_UpsertAndTombstone(t *testing.T) {
	s := newTestStore(t)
	repo := s.Brushes()

	b := &Brush{ID: "brush-1", Viz: "scatter", X: 10, Y: 20, Radius: 25, Kind: "sticky"}
	if err := repo.Upsert(b); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Position update through the same statement.
	b.X = 50
	if err := repo.Upsert(b); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.GetByID("brush-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.X != 50 || got.DeletedAt != nil {
		t.Errorf("GetByID() = %+v, want live brush at x=50", got)
	}

	if err := repo.MarkDeleted("brush-1"); err != nil {
		t.Fatalf("MarkDeleted() error = %v", err)
	}
	live, err := repo.ListActive("scatter")
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(live) != 0 {
		t.Errorf("ListActive() = %v after delete, want empty", live)
	}

	// Upsert revives a tombstoned brush.
	if err := repo.Upsert(b); err != nil {
		t.Fatalf("reviving Upsert() error = %v", err)
	}
	live, _ = repo.ListActive("scatter")
	if len(live) != 1 {
		t.Errorf("ListActive() = %v after revive, want one brush", live)
	}
}

func TestBrushes_ListActive_ScopedToViz(t *testing.T) {
	s := newTestStore(t)
	repo := s.Brushes()

	repo.Upsert(&Brush{ID: "b1", Viz: "scatter", Kind: "sticky"})
	repo.Upsert(&Brush{ID: "b2", Viz: "timeline", Kind: "sticky"})

	live, err := repo.ListActive("scatter")
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(live) != 1 || live[0].ID != "b1" {
		t.Errorf("ListActive(scatter) = %v, want [b1]", live)
	}
}

func TestBrushPersister_MirrorsDocument(t *testing.T) {
	s := newTestStore(t)
	doc := replicated.NewDoc("site-a")
	p := NewBrushPersister(s)
	doc.OnChange(p.Observer())

	record := func(b interact.Brush) string {
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal brush: %v", err)
		}
		return string(data)
	}

	doc.Transact(func(tx *replicated.Tx) {
		tx.ListAppend("scatter/brushes", record(interact.Brush{ID: "brush-1", X: 1, Y: 2, Radius: 30, Kind: "sticky"}))
	})

	live, err := s.Brushes().ListActive("scatter")
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(live) != 1 || live[0].ID != "brush-1" || live[0].Radius != 30 {
		t.Fatalf("persisted brushes = %v, want brush-1", live)
	}

	// A move is remove plus re-append of the updated record.
	doc.Transact(func(tx *replicated.Tx) {
		snap := tx.ListSnapshot("scatter/brushes")
		tx.ListRemoveValue("scatter/brushes", snap[0])
		tx.ListAppend("scatter/brushes", record(interact.Brush{ID: "brush-1", X: 9, Y: 9, Radius: 30, Kind: "sticky"}))
	})

	got, err := s.Brushes().GetByID("brush-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.X != 9 || got.DeletedAt != nil {
		t.Errorf("moved brush = %+v, want live at x=9", got)
	}

	// A plain removal tombstones the row.
	doc.Transact(func(tx *replicated.Tx) {
		snap := tx.ListSnapshot("scatter/brushes")
		tx.ListRemoveValue("scatter/brushes", snap[0])
	})

	live, _ = s.Brushes().ListActive("scatter")
	if len(live) != 0 {
		t.Errorf("brushes = %v after removal, want empty", live)
	}

	// Ops on unrelated collections are ignored.
	doc.Transact(func(tx *replicated.Tx) {
		tx.ListAppend("scatter/hover:left", "bar-1")
	})
}
