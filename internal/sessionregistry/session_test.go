package sessionregistry

import "testing"

func TestCreateGetRemove(t *testing.T) {
	r := New()
	s := r.Create()
	if s.ID == "" {
		t.Fatal("expected a generated id")
	}
	got, ok := r.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID, got, ok)
	}
	r.Remove(s.ID)
	if _, ok := r.Get(s.ID); ok {
		t.Fatal("expected session to be removed")
	}
}

func TestStopSetsCooperativeFlag(t *testing.T) {
	r := New()
	s := r.Create()
	if s.StopRequested() {
		t.Fatal("new session should not be stopped")
	}
	if !r.Stop(s.ID) {
		t.Fatal("expected Stop to find the session")
	}
	if !s.StopRequested() {
		t.Fatal("expected StopRequested to be true after Stop")
	}
	if r.Stop("missing") {
		t.Fatal("expected Stop on unknown id to return false")
	}
}

func TestStopAllCountsAndSignalsEverySession(t *testing.T) {
	r := New()
	a, b := r.Create(), r.Create()
	n := r.StopAll()
	if n != 2 {
		t.Fatalf("StopAll returned %d, want 2", n)
	}
	if !a.StopRequested() || !b.StopRequested() {
		t.Fatal("expected both sessions to be stopped")
	}
}

func TestListActive(t *testing.T) {
	r := New()
	s1 := r.Create()
	s2 := r.Create()
	ids := r.ListActive()
	if len(ids) != 2 {
		t.Fatalf("got %d active ids, want 2", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[s1.ID] || !seen[s2.ID] {
		t.Fatalf("ids = %v, want to contain %s and %s", ids, s1.ID, s2.ID)
	}
}
