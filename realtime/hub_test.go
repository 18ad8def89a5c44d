package realtime

import (
	"encoding/json"
	"testing"
)

// recvEvent pops the next queued frame off a connection's outbox, or nil if
// nothing was delivered. Pushes are synchronous, so no waiting is needed.
func recvEvent(t *testing.T, conn *Connection) *Envelope {
	t.Helper()
	select {
	case frame, ok := <-conn.Outbox():
		if !ok {
			return nil
		}
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return &env
	default:
		return nil
	}
}

func decodeData(t *testing.T, env *Envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("bad event data: %v", err)
	}
}

func TestBroadcastRoomScoping(t *testing.T) {
	hub := NewHub(nil)
	a := NewConnection("1", "patient")
	b := NewConnection("2", "doctor")
	c := NewConnection("3", "patient")
	for _, conn := range []*Connection{a, b, c} {
		hub.Add(conn)
	}
	hub.Rooms().Join(a.ID(), "chat_42")
	hub.Rooms().Join(b.ID(), "chat_42")
	hub.Rooms().Join(c.ID(), "chat_7")

	hub.BroadcastRoom("chat_42", "new_message", map[string]string{"content": "hi"}, "")

	if env := recvEvent(t, a); env == nil || env.Event != "new_message" {
		t.Error("member a did not receive the broadcast")
	}
	if env := recvEvent(t, b); env == nil || env.Event != "new_message" {
		t.Error("member b did not receive the broadcast")
	}
	if env := recvEvent(t, c); env != nil {
		t.Errorf("connection in another room received %s", env.Event)
	}
}

func TestBroadcastRoomExcludesSender(t *testing.T) {
	hub := NewHub(nil)
	a := NewConnection("1", "patient")
	b := NewConnection("2", "doctor")
	hub.Add(a)
	hub.Add(b)
	hub.Rooms().Join(a.ID(), "chat_42")
	hub.Rooms().Join(b.ID(), "chat_42")

	hub.BroadcastRoom("chat_42", "user_typing", TypingEvent{ChatID: "42", UserID: "1"}, a.ID())

	if env := recvEvent(t, a); env != nil {
		t.Error("excluded sender received its own event")
	}
	if env := recvEvent(t, b); env == nil {
		t.Error("other member missed the event")
	}
}

func TestEmitToMissingConnection(t *testing.T) {
	hub := NewHub(nil)
	if hub.EmitTo("nope", "booking_accepted", nil) {
		t.Error("emit to unknown connection reported success")
	}
}

func TestRemovePurgesEverything(t *testing.T) {
	hub := NewHub(nil)
	conn := NewConnection("1", "passenger")
	hub.Add(conn)
	hub.Presence().Register("1", conn.ID(), "passenger")
	hub.Rooms().Join(conn.ID(), "user_1")

	hub.Remove(conn)

	if _, ok := hub.Presence().Lookup("1"); ok {
		t.Error("presence survived disconnect")
	}
	if hub.Rooms().RoomsOf(conn.ID()) != 0 {
		t.Error("room memberships survived disconnect")
	}
	stats := hub.Stats()
	if stats.Connections != 0 || stats.Identities != 0 || stats.Rooms != 0 {
		t.Errorf("unexpected stats after disconnect: %+v", stats)
	}

	// Disconnect may race a completing relay; a second Remove must be safe.
	hub.Remove(conn)
}

func TestBroadcastAll(t *testing.T) {
	hub := NewHub(nil)
	a := NewConnection("1", "driver")
	b := NewConnection("2", "passenger")
	hub.Add(a)
	hub.Add(b)

	hub.BroadcastAll("taxi_location_update", LocationEvent{TaxiID: "T1"}, a.ID())

	if env := recvEvent(t, a); env != nil {
		t.Error("excluded connection received the global broadcast")
	}
	env := recvEvent(t, b)
	if env == nil {
		t.Fatal("connection missed the global broadcast")
	}
	var loc LocationEvent
	decodeData(t, env, &loc)
	if loc.TaxiID != "T1" {
		t.Errorf("expected taxi T1, got %s", loc.TaxiID)
	}
}
