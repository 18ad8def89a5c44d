package realtime

import "testing"

func TestRegisterLastJoinWins(t *testing.T) {
	r := NewRegistry()

	r.Register("user-1", "conn-a", "patient")
	r.Register("user-1", "conn-b", "patient")

	connID, ok := r.Lookup("user-1")
	if !ok {
		t.Fatal("expected user-1 to be present")
	}
	if connID != "conn-b" {
		t.Errorf("expected conn-b, got %s", connID)
	}
}

func TestRemoveConnPurgesIdentity(t *testing.T) {
	r := NewRegistry()

	r.Register("user-1", "conn-a", "patient")
	r.Register("taxi-9", "conn-a", "driver")
	r.RemoveConn("conn-a")

	if _, ok := r.Lookup("user-1"); ok {
		t.Error("user-1 still present after disconnect")
	}
	if _, ok := r.Lookup("taxi-9"); ok {
		t.Error("taxi-9 still present after disconnect")
	}
	if n := r.IdentityCount(); n != 0 {
		t.Errorf("expected 0 identities, got %d", n)
	}
}

func TestStaleDisconnectKeepsNewEntry(t *testing.T) {
	r := NewRegistry()

	// Second device takes over the identity, then the first device's socket
	// finally closes. The newer entry must survive.
	r.Register("user-1", "conn-a", "patient")
	r.Register("user-1", "conn-b", "patient")
	r.RemoveConn("conn-a")

	connID, ok := r.Lookup("user-1")
	if !ok {
		t.Fatal("user-1 was purged by the stale disconnect")
	}
	if connID != "conn-b" {
		t.Errorf("expected conn-b, got %s", connID)
	}
}

func TestRemoveUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("user-1", "conn-a", "patient")

	r.RemoveConn("conn-never-identified")

	if _, ok := r.Lookup("user-1"); !ok {
		t.Error("unrelated entry was purged")
	}
}

func TestEntryMetadata(t *testing.T) {
	r := NewRegistry()
	r.Register("taxi-1", "conn-a", "driver")

	entry, ok := r.Entry("taxi-1")
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.Role != "driver" {
		t.Errorf("expected role driver, got %s", entry.Role)
	}
	if entry.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}
}
