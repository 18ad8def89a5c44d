package realtime

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/amu-telemed/telemed-backend/models"
)

// ChatRelay handles the telemedicine chat events: authorize the sender
// against the durable chat record, persist, then fan out over the chat room.
type ChatRelay struct {
	store ChatStore
	hub   *Hub
	sink  NotificationSink
	log   *zap.Logger
}

func NewChatRelay(store ChatStore, hub *Hub, sink NotificationSink, log *zap.Logger) *ChatRelay {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = NoopSink{Log: log}
	}
	return &ChatRelay{store: store, hub: hub, sink: sink, log: log}
}

// UserJoin registers the user's presence and joins their personal room. The
// join id must match the identity the handshake token authenticated; the
// original design trusted the client here, which is a documented deviation.
func (r *ChatRelay) UserJoin(conn *Connection, p UserJoinPayload) error {
	if p.UserID == "" {
		return Validation("userId is required")
	}
	if conn.UserID() != "" && conn.UserID() != p.UserID {
		return Unauthorized("join id does not match authenticated user")
	}

	r.hub.Presence().Register(p.UserID, conn.ID(), p.Role)
	r.hub.Rooms().Join(conn.ID(), UserRoom(p.UserID))

	r.log.Info("user joined",
		zap.String("user_id", p.UserID), zap.String("role", p.Role))
	return nil
}

// JoinChat adds the connection to the chat's broadcast room after verifying
// the user is a party to the chat.
func (r *ChatRelay) JoinChat(ctx context.Context, conn *Connection, p JoinChatPayload) error {
	if _, err := r.authorize(ctx, p.ChatID, p.UserID); err != nil {
		return err
	}
	r.hub.Rooms().Join(conn.ID(), ChatRoom(p.ChatID))
	return nil
}

// SendMessage persists the message, then broadcasts it to every current
// member of the chat room, sender included so clients converge on the same
// durable state. The insert is the durability point: a failed insert means
// no broadcast.
func (r *ChatRelay) SendMessage(ctx context.Context, conn *Connection, p SendMessagePayload) error {
	counterpart, err := r.authorize(ctx, p.ChatID, p.SenderID)
	if err != nil {
		return err
	}

	msg := &models.Message{
		ChatID:      p.ChatID,
		SenderID:    p.SenderID,
		Content:     p.Content,
		Attachments: p.Attachments,
		MessageType: p.MessageType,
	}
	if msg.MessageType == "" {
		msg.MessageType = "text"
	}

	if err := r.store.InsertMessage(ctx, msg); err != nil {
		return Persistence(err)
	}

	// The watermark orders conversation lists; the message itself is already
	// durable, so a failure here is logged and delivery continues.
	if err := r.store.TouchChat(ctx, p.ChatID); err != nil {
		r.log.Warn("touch chat failed", zap.String("chat_id", p.ChatID), zap.Error(err))
	}

	if first, last, err := r.store.UserName(ctx, p.SenderID); err != nil {
		r.log.Warn("sender enrichment failed", zap.String("sender_id", p.SenderID), zap.Error(err))
	} else {
		msg.SenderFirstName = first
		msg.SenderLastName = last
	}

	r.hub.BroadcastRoom(ChatRoom(p.ChatID), EventNewMessage, msg, "")

	if _, online := r.hub.Presence().Lookup(counterpart); !online {
		n := models.Notification{
			UserID:  counterpart,
			Type:    "chat_message",
			Title:   "New message",
			Message: p.Content,
		}
		if err := r.store.InsertNotification(ctx, n); err != nil {
			r.log.Warn("notification insert failed",
				zap.String("user_id", counterpart), zap.Error(err))
		}
		if err := r.sink.NotifyOffline(ctx, counterpart, msg); err != nil {
			r.log.Warn("offline notify failed",
				zap.String("user_id", counterpart), zap.Error(err))
		}
	}

	return nil
}

// Typing relays a typing indicator to the other chat members. Nothing is
// persisted.
func (r *ChatRelay) Typing(ctx context.Context, conn *Connection, p TypingPayload, stopped bool) error {
	if _, err := r.authorize(ctx, p.ChatID, p.UserID); err != nil {
		return err
	}
	event := EventUserTyping
	if stopped {
		event = EventUserStopTyping
	}
	r.hub.BroadcastRoom(ChatRoom(p.ChatID), event,
		TypingEvent{ChatID: p.ChatID, UserID: p.UserID}, conn.ID())
	return nil
}

// MarkRead flips every unread counterpart message in one statement and
// tells the room.
func (r *ChatRelay) MarkRead(ctx context.Context, conn *Connection, p MarkReadPayload) error {
	if _, err := r.authorize(ctx, p.ChatID, p.UserID); err != nil {
		return err
	}

	count, err := r.store.MarkMessagesRead(ctx, p.ChatID, p.UserID)
	if err != nil {
		return Persistence(err)
	}

	r.hub.BroadcastRoom(ChatRoom(p.ChatID), EventMessagesRead,
		MessagesReadEvent{ChatID: p.ChatID, UserID: p.UserID, Count: count}, "")
	return nil
}

// UpdateAvailability flips the doctor's availability and broadcasts the
// change to every connection.
func (r *ChatRelay) UpdateAvailability(ctx context.Context, conn *Connection, p UpdateAvailabilityPayload) error {
	if p.DoctorID == "" {
		return Validation("doctorId is required")
	}
	if conn.UserID() != "" && conn.UserID() != p.DoctorID {
		return Unauthorized("cannot change another doctor's availability")
	}

	if err := r.store.SetDoctorAvailability(ctx, p.DoctorID, p.IsAvailable); err != nil {
		return Persistence(err)
	}

	r.hub.BroadcastAll(EventDoctorAvailabilityChanged,
		AvailabilityChangedEvent{DoctorID: p.DoctorID, IsAvailable: p.IsAvailable}, "")
	return nil
}

// NotifyUser is the surface the REST collaborators use to reach a user in
// real time (new_notification, appointment_updated). Offline users go to the
// sink.
func (r *ChatRelay) NotifyUser(ctx context.Context, userID, event string, payload any) error {
	if _, online := r.hub.Presence().Lookup(userID); online {
		r.hub.BroadcastRoom(UserRoom(userID), event, payload, "")
		return nil
	}
	return r.sink.NotifyOffline(ctx, userID, payload)
}

// authorize checks the sender is a party to the chat and returns the other
// party.
func (r *ChatRelay) authorize(ctx context.Context, chatID, userID string) (counterpart string, err error) {
	if chatID == "" || userID == "" {
		return "", Validation("chatId and userId are required")
	}

	patientID, doctorID, err := r.store.ChatParties(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NotFound("chat not found")
	}
	if err != nil {
		return "", Persistence(err)
	}

	switch userID {
	case patientID:
		return doctorID, nil
	case doctorID:
		return patientID, nil
	default:
		return "", Unauthorized("user is not a participant of this chat")
	}
}
