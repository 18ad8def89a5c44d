package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/amu-telemed/telemed-backend/realtime"
	"github.com/amu-telemed/telemed-backend/responses"
	"github.com/amu-telemed/telemed-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketServer upgrades connections and dispatches their events to the
// relays. One read loop per connection keeps a connection's handlers
// serialized while different connections interleave freely.
type SocketServer struct {
	hub       *realtime.Hub
	chat      *realtime.ChatRelay
	ride      *realtime.RideRelay
	jwtSecret string
	log       *zap.Logger
}

func NewSocketServer(hub *realtime.Hub, chat *realtime.ChatRelay, ride *realtime.RideRelay, jwtSecret string, log *zap.Logger) *SocketServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SocketServer{hub: hub, chat: chat, ride: ride, jwtSecret: jwtSecret, log: log}
}

func (s *SocketServer) Handle(w http.ResponseWriter, r *http.Request) {
	tokenStr := mux.Vars(r)["token"]

	claims, err := ValidateToken(tokenStr, s.jwtSecret)
	if err != nil {
		s.log.Warn("handshake token rejected", zap.Error(err))
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	conn := realtime.NewConnection(claims.ID, claims.Role)
	s.hub.Add(conn)

	go s.writePump(ws, conn)
	s.readPump(ws, conn)
}

func (s *SocketServer) readPump(ws *websocket.Conn, conn *realtime.Connection) {
	defer func() {
		s.hub.Remove(conn)
		ws.Close()
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			s.log.Debug("read loop ended",
				zap.String("conn_id", conn.ID()), zap.Error(err))
			return
		}
		s.dispatch(conn, raw)
	}
}

func (s *SocketServer) writePump(ws *websocket.Conn, conn *realtime.Connection) {
	defer ws.Close()

	for frame := range conn.Outbox() {
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.log.Debug("write failed",
				zap.String("conn_id", conn.ID()), zap.Error(err))
			return
		}
	}
}

// dispatch routes one inbound frame. Relay failures never cross into other
// connections; they come back to the sender as message_error or
// booking_error.
func (s *SocketServer) dispatch(conn *realtime.Connection, raw []byte) {
	ctx := context.Background()

	var env realtime.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.sendError(conn, realtime.EventMessageError, realtime.Validation("malformed event frame"))
		return
	}

	var err error
	errEvent := realtime.EventMessageError

	switch env.Event {
	case realtime.EventUserJoin:
		var p realtime.UserJoinPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.UserJoin(conn, p)
		}
	case realtime.EventJoinChat:
		var p realtime.JoinChatPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.JoinChat(ctx, conn, p)
		}
	case realtime.EventSendMessage:
		var p realtime.SendMessagePayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.SendMessage(ctx, conn, p)
		}
	case realtime.EventTyping:
		var p realtime.TypingPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.Typing(ctx, conn, p, false)
		}
	case realtime.EventStopTyping:
		var p realtime.TypingPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.Typing(ctx, conn, p, true)
		}
	case realtime.EventMarkRead:
		var p realtime.MarkReadPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.MarkRead(ctx, conn, p)
		}
	case realtime.EventUpdateAvailability:
		var p realtime.UpdateAvailabilityPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.chat.UpdateAvailability(ctx, conn, p)
		}
	case realtime.EventDriverJoin:
		errEvent = realtime.EventBookingError
		var p realtime.DriverJoinPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.ride.DriverJoin(ctx, conn, p)
		}
	case realtime.EventPassengerJoin:
		errEvent = realtime.EventBookingError
		var p realtime.PassengerJoinPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.ride.PassengerJoin(conn, p)
		}
	case realtime.EventLocationUpdate:
		var p realtime.LocationUpdatePayload
		if err = decode(env.Data, &p); err == nil {
			if err = s.ride.LocationUpdate(ctx, conn, p); err != nil {
				// Location failures are logged only, matching the platform
				// contract; the next tick supersedes this one anyway.
				s.log.Error("location update failed",
					zap.String("taxi_id", p.TaxiID), zap.Error(err))
				return
			}
		}
	case realtime.EventBookingRequest:
		errEvent = realtime.EventBookingError
		var p realtime.BookingRequestPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.ride.BookingRequest(ctx, conn, p)
		}
	case realtime.EventAcceptBooking:
		errEvent = realtime.EventBookingError
		var p realtime.AcceptBookingPayload
		if err = decode(env.Data, &p); err == nil {
			err = s.ride.AcceptBooking(ctx, conn, p)
		}
	default:
		s.log.Warn("unknown event", zap.String("event", env.Event))
		return
	}

	if err != nil {
		s.log.Warn("event failed",
			zap.String("event", env.Event),
			zap.String("conn_id", conn.ID()),
			zap.Error(err))
		s.sendError(conn, errEvent, err)
	}
}

func (s *SocketServer) sendError(conn *realtime.Connection, event string, err error) {
	s.hub.EmitTo(conn.ID(), event, realtime.ErrorEvent{
		Code:    realtime.CodeOf(err),
		Message: err.Error(),
	})
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return realtime.Validation("missing event data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return realtime.Validation("malformed event data")
	}
	return nil
}
