package realtime

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/amu-telemed/telemed-backend/models"
)

// RideRelay handles the ride-booking events: driver presence, location
// ticks, geofiltered booking dispatch and acceptance.
type RideRelay struct {
	store   RideStore
	archive LocationArchive
	hub     *Hub
	log     *zap.Logger
}

func NewRideRelay(store RideStore, archive LocationArchive, hub *Hub, log *zap.Logger) *RideRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &RideRelay{store: store, archive: archive, hub: hub, log: log}
}

// DriverJoin registers the taxi's presence after checking the taxi is
// registered to the authenticated driver.
func (r *RideRelay) DriverJoin(ctx context.Context, conn *Connection, p DriverJoinPayload) error {
	if p.TaxiID == "" || p.DriverID == "" {
		return Validation("taxiId and driverId are required")
	}
	if conn.UserID() != "" && conn.UserID() != p.DriverID {
		return Unauthorized("join id does not match authenticated user")
	}

	driverID, err := r.store.TaxiDriver(ctx, p.TaxiID)
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("taxi not found")
	}
	if err != nil {
		return Persistence(err)
	}
	if driverID != p.DriverID {
		return Unauthorized("taxi is not registered to this driver")
	}

	r.hub.Presence().Register(p.TaxiID, conn.ID(), "driver")
	r.hub.Rooms().Join(conn.ID(), TaxiRoom(p.TaxiID))

	r.log.Info("driver joined",
		zap.String("driver_id", p.DriverID), zap.String("taxi_id", p.TaxiID))
	return nil
}

func (r *RideRelay) PassengerJoin(conn *Connection, p PassengerJoinPayload) error {
	if p.PassengerID == "" {
		return Validation("passengerId is required")
	}
	if conn.UserID() != "" && conn.UserID() != p.PassengerID {
		return Unauthorized("join id does not match authenticated user")
	}

	r.hub.Presence().Register(p.PassengerID, conn.ID(), "passenger")
	r.hub.Rooms().Join(conn.ID(), UserRoom(p.PassengerID))

	r.log.Info("passenger joined", zap.String("passenger_id", p.PassengerID))
	return nil
}

// LocationUpdate persists the tick (current position in the relational
// store, history in the archive) and broadcasts it to every other
// connection. The global fan-out mirrors the platform contract; coordinates
// and timestamps are taken as-is.
func (r *RideRelay) LocationUpdate(ctx context.Context, conn *Connection, p LocationUpdatePayload) error {
	loc := models.TaxiLocation{
		TaxiID:    p.TaxiID,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Timestamp: time.UnixMilli(p.Timestamp).UTC(),
	}

	if err := r.store.UpdateTaxiLocation(ctx, loc); err != nil {
		return Persistence(err)
	}
	if err := r.archive.Append(ctx, loc); err != nil {
		return Persistence(err)
	}

	r.hub.BroadcastAll(EventTaxiLocationUpdate, LocationEvent{
		TaxiID:    p.TaxiID,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Timestamp: p.Timestamp,
	}, conn.ID())
	return nil
}

// BookingRequest geofilters available taxis around the pickup point and
// offers the ride to each candidate driver that is currently connected. The
// passenger gets a single ack carrying the candidate count.
func (r *RideRelay) BookingRequest(ctx context.Context, conn *Connection, p BookingRequestPayload) error {
	taxis, err := r.store.NearbyTaxis(ctx, p.PickupLat, p.PickupLng)
	if err != nil {
		return Persistence(err)
	}

	for _, taxi := range taxis {
		connID, ok := r.hub.Presence().Lookup(taxi.TaxiID)
		if !ok {
			continue
		}
		r.hub.EmitTo(connID, EventBookingRequest, BookingOffer{
			PassengerID:    p.PassengerID,
			PickupLat:      p.PickupLat,
			PickupLng:      p.PickupLng,
			DestinationLat: p.DestinationLat,
			DestinationLng: p.DestinationLng,
			Distance:       taxi.Distance,
		})
	}

	r.hub.EmitTo(conn.ID(), EventBookingRequestSent,
		BookingRequestSentEvent{NearbyTaxisCount: len(taxis)})

	r.log.Info("booking request dispatched",
		zap.String("passenger_id", p.PassengerID), zap.Int("candidates", len(taxis)))
	return nil
}

// AcceptBooking creates the booking and flips the taxi unavailable in one
// transaction, then notifies the passenger if reachable. The driver always
// gets a confirmation echo.
func (r *RideRelay) AcceptBooking(ctx context.Context, conn *Connection, p AcceptBookingPayload) error {
	if p.TaxiID == "" || p.PassengerID == "" {
		return Validation("taxiId and passengerId are required")
	}

	booking := &models.Booking{
		PassengerID:      p.PassengerID,
		TaxiID:           p.TaxiID,
		PickupLat:        p.PickupLat,
		PickupLng:        p.PickupLng,
		DestinationLat:   p.DestinationLat,
		DestinationLng:   p.DestinationLng,
		Status:           "accepted",
		EstimatedArrival: p.EstimatedArrival,
	}
	if err := r.store.CreateBooking(ctx, booking); err != nil {
		return Persistence(err)
	}

	if connID, ok := r.hub.Presence().Lookup(p.PassengerID); ok {
		r.hub.EmitTo(connID, EventBookingAccepted, BookingAcceptedEvent{
			BookingID:        booking.ID,
			TaxiID:           p.TaxiID,
			EstimatedArrival: p.EstimatedArrival,
		})
	}

	r.hub.EmitTo(conn.ID(), EventBookingAcceptedConfirmation,
		BookingConfirmationEvent{BookingID: booking.ID})

	r.log.Info("booking accepted",
		zap.String("booking_id", booking.ID),
		zap.String("taxi_id", p.TaxiID),
		zap.String("passenger_id", p.PassengerID))
	return nil
}
