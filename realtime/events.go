package realtime

import "encoding/json"

// Inbound event names.
const (
	EventUserJoin           = "user_join"
	EventDriverJoin         = "driver_join"
	EventPassengerJoin      = "passenger_join"
	EventJoinChat           = "join_chat"
	EventSendMessage        = "send_message"
	EventTyping             = "typing"
	EventStopTyping         = "stop_typing"
	EventMarkRead           = "mark_read"
	EventUpdateAvailability = "update_availability"
	EventLocationUpdate     = "location_update"
	EventBookingRequest     = "booking_request"
	EventAcceptBooking      = "accept_booking"
)

// Outbound event names.
const (
	EventNewMessage                  = "new_message"
	EventUserTyping                  = "user_typing"
	EventUserStopTyping              = "user_stop_typing"
	EventMessagesRead                = "messages_read"
	EventMessageError                = "message_error"
	EventTaxiLocationUpdate          = "taxi_location_update"
	EventBookingRequestSent          = "booking_request_sent"
	EventBookingAccepted             = "booking_accepted"
	EventBookingAcceptedConfirmation = "booking_accepted_confirmation"
	EventBookingError                = "booking_error"
	EventNewNotification             = "new_notification"
	EventAppointmentUpdated          = "appointment_updated"
	EventDoctorAvailabilityChanged   = "doctor_availability_changed"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type UserJoinPayload struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type DriverJoinPayload struct {
	TaxiID   string `json:"taxiId"`
	DriverID string `json:"driverId"`
}

type PassengerJoinPayload struct {
	PassengerID string `json:"passengerId"`
}

type JoinChatPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	ChatID      string   `json:"chatId"`
	SenderID    string   `json:"senderId"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
	MessageType string   `json:"messageType,omitempty"`
}

type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MarkReadPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type UpdateAvailabilityPayload struct {
	DoctorID    string `json:"doctorId"`
	IsAvailable bool   `json:"isAvailable"`
}

type LocationUpdatePayload struct {
	TaxiID    string  `json:"taxiId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

type BookingRequestPayload struct {
	PassengerID    string  `json:"passengerId"`
	PickupLat      float64 `json:"pickupLat"`
	PickupLng      float64 `json:"pickupLng"`
	DestinationLat float64 `json:"destinationLat"`
	DestinationLng float64 `json:"destinationLng"`
}

type AcceptBookingPayload struct {
	TaxiID           string  `json:"taxiId"`
	PassengerID      string  `json:"passengerId"`
	EstimatedArrival string  `json:"estimatedArrival"`
	PickupLat        float64 `json:"pickupLat"`
	PickupLng        float64 `json:"pickupLng"`
	DestinationLat   float64 `json:"destinationLat"`
	DestinationLng   float64 `json:"destinationLng"`
}

// Outbound payloads.

type TypingEvent struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MessagesReadEvent struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Count  int64  `json:"count"`
}

type LocationEvent struct {
	TaxiID    string  `json:"taxiId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

// BookingOffer is the scoped offer delivered to one candidate driver.
type BookingOffer struct {
	PassengerID    string  `json:"passengerId"`
	PickupLat      float64 `json:"pickupLat"`
	PickupLng      float64 `json:"pickupLng"`
	DestinationLat float64 `json:"destinationLat"`
	DestinationLng float64 `json:"destinationLng"`
	Distance       float64 `json:"distance"`
}

type BookingRequestSentEvent struct {
	NearbyTaxisCount int `json:"nearbyTaxisCount"`
}

type BookingAcceptedEvent struct {
	BookingID        string `json:"bookingId"`
	TaxiID           string `json:"taxiId"`
	EstimatedArrival string `json:"estimatedArrival"`
}

type BookingConfirmationEvent struct {
	BookingID string `json:"bookingId"`
}

type AvailabilityChangedEvent struct {
	DoctorID    string `json:"doctorId"`
	IsAvailable bool   `json:"isAvailable"`
}

type ErrorEvent struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Room naming. A connection only ever broadcasts into rooms built through
// these helpers.

func ChatRoom(chatID string) string { return "chat_" + chatID }
func UserRoom(userID string) string { return "user_" + userID }
func TaxiRoom(taxiID string) string { return "taxi_" + taxiID }
