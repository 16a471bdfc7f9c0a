package realtime

import "testing"

type row struct {
	ID     string
	UserID string
	Status string
}

func rowID(r row) string { return r.ID }

func newRowProjector(filter func(row) bool) *Projector[row] {
	return NewProjector[row](rowID, filter)
}

func ids(items []row) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func TestProjectorInsertPrepends(t *testing.T) {
	p := newRowProjector(nil)
	p.Reset([]row{{ID: "old"}})

	p.ApplyInsert(row{ID: "new"})

	got := p.Items()
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("expected newest first, got %v", ids(got))
	}
}

func TestProjectorInsertIdempotent(t *testing.T) {
	p := newRowProjector(nil)
	p.ApplyInsert(row{ID: "b-1", Status: "pending"})
	p.ApplyInsert(row{ID: "b-1", Status: "pending"})

	if p.Len() != 1 {
		t.Fatalf("replayed insert must not duplicate, got %d rows", p.Len())
	}
}

func TestProjectorUpdateReplacesInPlace(t *testing.T) {
	p := newRowProjector(nil)
	p.Reset([]row{{ID: "a", Status: "pending"}, {ID: "b", Status: "pending"}})

	p.ApplyUpdate(row{ID: "b", Status: "confirmed"})

	got := p.Items()
	if got[1].Status != "confirmed" {
		t.Errorf("expected b confirmed, got %s", got[1].Status)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("update must preserve order, got %v", ids(got))
	}
}

func TestProjectorUpdateAbsentIsNoop(t *testing.T) {
	p := newRowProjector(nil)
	p.Reset([]row{{ID: "a"}})

	p.ApplyUpdate(row{ID: "ghost", Status: "confirmed"})

	if p.Len() != 1 || p.Items()[0].ID != "a" {
		t.Fatalf("update for absent id must not change view, got %v", ids(p.Items()))
	}
}

func TestProjectorDeleteRemoves(t *testing.T) {
	p := newRowProjector(nil)
	p.Reset([]row{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	p.ApplyDelete("b")

	got := ids(p.Items())
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
}

func TestProjectorDeleteAbsentIsNoop(t *testing.T) {
	p := newRowProjector(nil)
	p.Reset([]row{{ID: "a"}})

	p.ApplyDelete("ghost")

	if p.Len() != 1 {
		t.Fatalf("delete for absent id must be a no-op, got %d rows", p.Len())
	}
}

func TestProjectorFilterAppliedAfterEveryMutation(t *testing.T) {
	mine := func(r row) bool { return r.UserID == "u-1" }
	p := newRowProjector(mine)

	// The feed carries every row in the table; other users' rows must not
	// become visible.
	p.ApplyInsert(row{ID: "mine-1", UserID: "u-1"})
	p.ApplyInsert(row{ID: "theirs-1", UserID: "u-2"})

	got := ids(p.Items())
	if len(got) != 1 || got[0] != "mine-1" {
		t.Fatalf("expected only own rows visible, got %v", got)
	}

	// An update that moves a row out of scope evicts it.
	p.ApplyUpdate(row{ID: "mine-1", UserID: "u-2"})
	if p.Len() != 0 {
		t.Fatalf("row updated out of scope must be evicted, got %v", ids(p.Items()))
	}
}

func TestProjectorResetAppliesFilter(t *testing.T) {
	p := newRowProjector(func(r row) bool { return r.Status != "cancelled" })
	p.Reset([]row{{ID: "a", Status: "pending"}, {ID: "b", Status: "cancelled"}})

	got := ids(p.Items())
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected cancelled rows filtered from snapshot, got %v", got)
	}
}
