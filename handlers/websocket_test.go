package handlers

import (
	"encoding/json"
	"testing"

	"github.com/amu-telemed/telemed-backend/realtime"
)

func testSocketServer() (*SocketServer, *realtime.Hub) {
	hub := realtime.NewHub(nil)
	chat := realtime.NewChatRelay(nil, hub, nil, nil)
	ride := realtime.NewRideRelay(nil, nil, hub, nil)
	return NewSocketServer(hub, chat, ride, "test-secret", nil), hub
}

func popEvent(t *testing.T, conn *realtime.Connection) *realtime.Envelope {
	t.Helper()
	select {
	case frame := <-conn.Outbox():
		var env realtime.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return &env
	default:
		return nil
	}
}

func TestDispatchUserJoin(t *testing.T) {
	s, hub := testSocketServer()
	conn := realtime.NewConnection("1", "patient")
	hub.Add(conn)

	s.dispatch(conn, []byte(`{"event":"user_join","data":{"userId":"1","role":"patient"}}`))

	if connID, ok := hub.Presence().Lookup("1"); !ok || connID != conn.ID() {
		t.Error("user_join did not register presence")
	}
	if !hub.Rooms().InRoom(conn.ID(), "user_1") {
		t.Error("user_join did not join the user room")
	}
}

func TestDispatchJoinMismatchEmitsError(t *testing.T) {
	s, hub := testSocketServer()
	conn := realtime.NewConnection("1", "patient")
	hub.Add(conn)

	s.dispatch(conn, []byte(`{"event":"user_join","data":{"userId":"2","role":"patient"}}`))

	env := popEvent(t, conn)
	if env == nil || env.Event != realtime.EventMessageError {
		t.Fatal("expected message_error on identity mismatch")
	}
	var e realtime.ErrorEvent
	if err := json.Unmarshal(env.Data, &e); err != nil {
		t.Fatal(err)
	}
	if e.Code != realtime.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %s", e.Code)
	}
	if _, ok := hub.Presence().Lookup("2"); ok {
		t.Error("mismatched join registered presence anyway")
	}
}

func TestDispatchMalformedFrame(t *testing.T) {
	s, hub := testSocketServer()
	conn := realtime.NewConnection("1", "patient")
	hub.Add(conn)

	s.dispatch(conn, []byte(`not json`))

	env := popEvent(t, conn)
	if env == nil || env.Event != realtime.EventMessageError {
		t.Fatal("malformed frame did not come back as message_error")
	}
}

func TestDispatchMalformedData(t *testing.T) {
	s, hub := testSocketServer()
	conn := realtime.NewConnection("1", "patient")
	hub.Add(conn)

	s.dispatch(conn, []byte(`{"event":"send_message","data":"nope"}`))

	env := popEvent(t, conn)
	if env == nil || env.Event != realtime.EventMessageError {
		t.Fatal("malformed data did not come back as message_error")
	}
}

func TestDispatchUnknownEventIsIgnored(t *testing.T) {
	s, hub := testSocketServer()
	conn := realtime.NewConnection("1", "patient")
	hub.Add(conn)

	s.dispatch(conn, []byte(`{"event":"warp_drive","data":{}}`))

	if env := popEvent(t, conn); env != nil {
		t.Errorf("unknown event produced %s", env.Event)
	}
}
