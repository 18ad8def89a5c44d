package realtime

import (
	"context"

	"github.com/amu-telemed/telemed-backend/models"
)

// ChatStore is the durable surface the chat relay consumes. The relational
// store is the source of truth for chat membership; the relay never makes an
// authorization decision without consulting it.
type ChatStore interface {
	ChatParties(ctx context.Context, chatID string) (patientID, doctorID string, err error)
	InsertMessage(ctx context.Context, msg *models.Message) error
	TouchChat(ctx context.Context, chatID string) error
	UserName(ctx context.Context, userID string) (firstName, lastName string, err error)
	MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error)
	SetDoctorAvailability(ctx context.Context, doctorID string, isAvailable bool) error
	InsertNotification(ctx context.Context, n models.Notification) error
}

// RideStore is the durable surface the ride relay consumes.
type RideStore interface {
	TaxiDriver(ctx context.Context, taxiID string) (string, error)
	UpdateTaxiLocation(ctx context.Context, loc models.TaxiLocation) error
	NearbyTaxis(ctx context.Context, pickupLat, pickupLng float64) ([]models.NearbyTaxi, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
}

// LocationArchive appends position history ticks.
type LocationArchive interface {
	Append(ctx context.Context, loc models.TaxiLocation) error
}
